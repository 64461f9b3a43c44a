package repository

import (
	"context"
	"sync"

	"github.com/anandpskerala/ArticleHubBackend/internal/domain"
)

// MemoryUserRepository implements UserRepository in memory.
// Useful for tests and local development without Postgres.
type MemoryUserRepository struct {
	users   map[string]*domain.User
	byEmail map[string]string // email -> id
	byPhone map[string]string // phone -> id
	mu      sync.RWMutex
}

// NewMemoryUserRepository creates an empty repository
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:   make(map[string]*domain.User),
		byEmail: make(map[string]string),
		byPhone: make(map[string]string),
	}
}

// FindByEmailOrPhone returns the user owning either identifier
func (r *MemoryUserRepository) FindByEmailOrPhone(ctx context.Context, email, phone string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id, ok := r.byEmail[email]; ok && email != "" {
		return cloneUser(r.users[id]), nil
	}
	if id, ok := r.byPhone[phone]; ok && phone != "" {
		return cloneUser(r.users[id]), nil
	}
	return nil, nil
}

// FindByID returns the user with id
func (r *MemoryUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneUser(r.users[id]), nil
}

// FindOne returns the user matching every non-empty filter field
func (r *MemoryUserRepository) FindOne(ctx context.Context, filter domain.UserFilter) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneUser(r.findLocked(filter)), nil
}

// Create stores a copy of user
func (r *MemoryUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; ok {
		return nil, domain.ErrUserAlreadyExists
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return nil, domain.ErrUserAlreadyExists
	}
	if _, ok := r.byPhone[user.Phone]; ok {
		return nil, domain.ErrUserAlreadyExists
	}

	u := cloneUser(user)
	r.users[u.ID] = u
	r.byEmail[u.Email] = u.ID
	r.byPhone[u.Phone] = u.ID
	return cloneUser(u), nil
}

// Update overwrites the profile and credential of the matched user
func (r *MemoryUserRepository) Update(ctx context.Context, filter domain.UserFilter, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.findLocked(filter)
	if existing == nil {
		return domain.ErrUserNotFound
	}
	if owner, ok := r.byPhone[user.Phone]; ok && owner != existing.ID {
		return domain.ErrUserAlreadyExists
	}

	delete(r.byPhone, existing.Phone)
	existing.FirstName = user.FirstName
	existing.LastName = user.LastName
	existing.Phone = user.Phone
	existing.Interests = append([]string(nil), user.Interests...)
	existing.PasswordHash = user.PasswordHash
	existing.UpdatedAt = user.UpdatedAt
	r.byPhone[existing.Phone] = existing.ID
	return nil
}

func (r *MemoryUserRepository) findLocked(filter domain.UserFilter) *domain.User {
	if filter.IsEmpty() {
		return nil
	}
	for _, u := range r.users {
		if filter.ID != "" && u.ID != filter.ID {
			continue
		}
		if filter.Email != "" && u.Email != filter.Email {
			continue
		}
		if filter.Phone != "" && u.Phone != filter.Phone {
			continue
		}
		return u
	}
	return nil
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	c.Interests = append([]string(nil), u.Interests...)
	if u.DOB != nil {
		dob := *u.DOB
		c.DOB = &dob
	}
	return &c
}
