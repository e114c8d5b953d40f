package user

import (
	"context"

	domain "github.com/example/task-tracker/domain/user"
)

// UserPort defines the user directory operations used by other modules.
type UserPort interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// GetUserRequest is the request for getting a user.
type GetUserRequest struct {
	UserID string `json:"user_id"`
}

// GetUserResponse is the response for getting a user.
type GetUserResponse struct {
	User  *domain.User `json:"user,omitempty"`
	Found bool         `json:"found"`
}

// ListUsersRequest is the request for listing users.
type ListUsersRequest struct{}

// ListUsersResponse is the response for listing users.
type ListUsersResponse struct {
	Users []domain.User `json:"users"`
}
