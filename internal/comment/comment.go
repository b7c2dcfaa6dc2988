// Package comment holds the discussion thread under a campaign. Organizers
// can flag their own posts as campaign updates.
package comment

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	errors "github.com/frahmantamala/photo-fundraising/internal"
	commentmodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/comment"
)

var (
	ErrEmptyContent   = errors.NewValidationFieldError("content", "Comment cannot be empty.", errors.ErrCodeMissingField)
	ErrContentTooLong = errors.NewValidationFieldError("content", fmt.Sprintf("Comment cannot exceed %d characters.", MaxContentLength), errors.ErrCodeValidationFailed)
)

type Comment struct {
	ID         string
	CampaignID string
	UserID     string
	AuthorName *string
	Content    string
	IsUpdate   bool
	CreatedAt  time.Time
}

// Validate trims the content in place.
func (r *CreateCommentRequest) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	if r.Content == "" {
		return ErrEmptyContent
	}
	if utf8.RuneCountInString(r.Content) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

func FromDataModel(c *commentmodel.Comment) *Comment {
	return &Comment{
		ID:         c.ID,
		CampaignID: c.CampaignID,
		UserID:     c.UserID,
		AuthorName: c.AuthorName,
		Content:    c.Content,
		IsUpdate:   c.IsUpdate,
		CreatedAt:  c.CreatedAt,
	}
}

func (c *Comment) ToResponse() CommentResponse {
	resp := CommentResponse{
		ID:         c.ID,
		CampaignID: c.CampaignID,
		AuthorID:   c.UserID,
		AuthorName: "Anonymous",
		Content:    c.Content,
		IsUpdate:   c.IsUpdate,
		CreatedAt:  c.CreatedAt,
	}
	if c.AuthorName != nil && *c.AuthorName != "" {
		resp.AuthorName = *c.AuthorName
	}
	return resp
}
