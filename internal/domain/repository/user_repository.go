package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned when a row does not exist or is not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}

// SessionRepository stores the server side of issued tokens.
type SessionRepository interface {
	Save(ctx context.Context, s entity.Session) error
	Get(ctx context.Context, userID string) (*entity.Session, error)
}
