package repository

import (
	"context"
	"errors"

	"github.com/AlfredoZC/DentiAI/internal/domain"
)

var ErrNotFound = errors.New("record not found")
var ErrDuplicateEntry = errors.New("record already exists")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
}

type HistoryRepository interface {
	// Create persists a diagnosis; ID and Timestamp are assigned by the store.
	Create(ctx context.Context, record *domain.HistoryRecord) (*domain.HistoryRecord, error)
	FindByUserID(ctx context.Context, userID int) ([]domain.HistoryRecord, error)
}
