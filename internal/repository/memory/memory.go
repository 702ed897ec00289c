// Package memory provides in-memory repositories used by tests and by the
// desk client, which has no database behind it.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AlfredoZC/DentiAI/internal/domain"
	"github.com/AlfredoZC/DentiAI/internal/repository"
)

type UserRepository struct {
	mu     sync.RWMutex
	nextID int
	users  map[string]*domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{nextID: 1, users: make(map[string]*domain.User)}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; exists {
		return nil, fmt.Errorf("%w: username %q is taken", repository.ErrDuplicateEntry, user.Username)
	}
	stored := *user
	stored.ID = r.nextID
	stored.CreatedAt = time.Now().UTC()
	r.nextID++
	r.users[stored.Username] = &stored

	out := stored
	return &out, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[username]
	if !exists {
		return nil, repository.ErrNotFound
	}
	out := *user
	return &out, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.ID == id {
			out := *user
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

type HistoryRepository struct {
	mu      sync.RWMutex
	nextID  int
	records []domain.HistoryRecord
}

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{nextID: 1}
}

func (r *HistoryRepository) Create(ctx context.Context, record *domain.HistoryRecord) (*domain.HistoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *record
	stored.ID = r.nextID
	stored.Timestamp = time.Now().UTC()
	r.nextID++
	r.records = append(r.records, stored)

	out := stored
	return &out, nil
}

func (r *HistoryRepository) FindByUserID(ctx context.Context, userID int) ([]domain.HistoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.HistoryRecord
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].UserID == userID {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
var _ repository.HistoryRepository = (*HistoryRepository)(nil)
