// Package albums persists albums and their file memberships.
package albums

import (
	"context"

	"github.com/dmitrijs2005/snapster/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID, name string) (*models.Album, error)

	// ListByUser returns the user's albums, newest first, each with its file
	// count and the stored names of up to previewLimit newest files.
	ListByUser(ctx context.Context, userID string, previewLimit int) ([]*models.AlbumSummary, error)

	// GetByID returns common.ErrorNotFound unless the album belongs to userID.
	GetByID(ctx context.Context, userID, id string) (*models.Album, error)

	Delete(ctx context.Context, userID, id string) error

	// AddFile links a file to an album. Adding an existing link is a no-op.
	AddFile(ctx context.Context, albumID, fileID string) error

	// RemoveFile returns common.ErrorNotFound when the link does not exist.
	RemoveFile(ctx context.Context, albumID, fileID string) error

	// ListFiles returns the album's files, newest first.
	ListFiles(ctx context.Context, albumID string) ([]*models.File, error)
}
