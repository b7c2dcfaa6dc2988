package photo

import (
	"io"
	"path"
	"strings"
)

// UploadInput is one photo as received from the organizer.
type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	Width       int
	Height      int
	Tags        []string
	BibNumber   string
}

func (in UploadInput) extension() string {
	ext := strings.ToLower(path.Ext(in.Filename))
	if ext == "" {
		switch in.ContentType {
		case "image/png":
			return ".png"
		case "image/webp":
			return ".webp"
		default:
			return ".jpg"
		}
	}
	return ext
}

type ModerationRequest struct {
	Status string `json:"status"`
}

type PhotosResponse struct {
	Photos []*Photo `json:"photos"`
}

// cleanTags trims, drops empties and de-duplicates.
func cleanTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
