package user

import (
	"sort"
	"sync"

	domain "github.com/example/task-tracker/domain/user"
)

// DemoUsers is the directory seeded at startup.
var DemoUsers = []domain.User{
	{ID: "user-1", Name: "Alice Johnson", Email: "alice@example.com"},
	{ID: "user-2", Name: "Bob Smith", Email: "bob@example.com"},
	{ID: "user-3", Name: "Charlie Brown", Email: "charlie@example.com"},
}

// UserRepository provides in-memory user storage.
type UserRepository struct {
	users map[string]domain.User
	mu    sync.RWMutex
}

// NewUserRepository creates a new user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[string]domain.User),
	}
}

// Seed adds users to the repository.
func (r *UserRepository) Seed(users []domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range users {
		r.users[u.ID] = u
	}
}

// FindByID finds a user by ID.
func (r *UserRepository) FindByID(userID string) (domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, found := r.users[userID]
	return u, found
}

// FindAll returns every user ordered by ID.
func (r *UserRepository) FindAll() []domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}
