package users

import (
	"context"

	"github.com/dmitrijs2005/snapster/internal/server/models"
)

type Repository interface {
	// Create inserts the user and fills in ID and timestamps. A taken email
	// yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
