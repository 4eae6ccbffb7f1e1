// Package files persists metadata rows for objects held in object storage.
package files

import (
	"context"

	"github.com/dmitrijs2005/snapster/internal/server/models"
)

type Repository interface {
	// Create records a stored object for userID. Stored names are unique per user.
	Create(ctx context.Context, userID, name string) (*models.File, error)

	// ListByUser returns the user's files, newest first.
	ListByUser(ctx context.Context, userID string) ([]*models.File, error)

	// GetByID returns common.ErrorNotFound unless the file exists and belongs to userID.
	GetByID(ctx context.Context, userID, id string) (*models.File, error)

	// Delete removes the row and returns common.ErrorNotFound when nothing matched.
	Delete(ctx context.Context, userID, id string) error
}
