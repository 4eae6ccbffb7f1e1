package models

import "time"

type Album struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AlbumSummary is an album together with its file count and the stored names
// of its newest files, used to build list previews.
type AlbumSummary struct {
	Album
	TotalFiles   int
	PreviewNames []string
}
