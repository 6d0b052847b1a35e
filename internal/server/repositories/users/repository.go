// Package users persists registered accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

// Repository is the storage contract for accounts. Create returns
// common.ErrorDuplicateEmail when the email is taken; lookups return
// common.ErrorNotFound for unknown accounts.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}
