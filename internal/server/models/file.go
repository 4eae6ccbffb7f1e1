package models

import "time"

// File is the metadata row for an uploaded object. Name is the stored name
// produced by the ingestion pipeline; the object key is UserID/Name.
type File struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
