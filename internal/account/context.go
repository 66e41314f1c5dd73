// Package account carries the authenticated agent through request
// contexts and resolves users from the database.
package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/sudmegaphone/backend/internal/models"
)

type contextKey string

const userKey contextKey = "user"

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

func UserIDFromContext(ctx context.Context) *uuid.UUID {
	if u := UserFromContext(ctx); u != nil {
		id := u.ID
		return &id
	}
	return nil
}
