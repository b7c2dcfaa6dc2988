package comment

import "time"

const (
	MaxContentLength = 2000
	maxCampaignPage  = 200
)

type CreateCommentRequest struct {
	Content  string `json:"content"`
	IsUpdate bool   `json:"is_update"`
}

type CommentResponse struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	IsUpdate   bool      `json:"is_update"`
	CreatedAt  time.Time `json:"created_at"`
}

type CommentsResponse struct {
	Comments []CommentResponse `json:"comments"`
}
