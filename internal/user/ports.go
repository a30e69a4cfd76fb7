package user

import (
	"context"
)

type Repository interface {
	// Create fills in ID and CreatedAt, or returns ErrAlreadyExists.
	Create(ctx context.Context, u *User) error
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
}
