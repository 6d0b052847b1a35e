package auth

import (
	"context"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

type accountKey struct{}

// WithAccount returns a context carrying the authenticated account.
func WithAccount(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, accountKey{}, u)
}

// AccountFromContext returns the account stored by WithAccount, or nil.
func AccountFromContext(ctx context.Context) *models.User {
	if ctx == nil {
		return nil
	}
	u, _ := ctx.Value(accountKey{}).(*models.User)
	return u
}
