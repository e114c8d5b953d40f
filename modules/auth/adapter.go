package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ErrUnauthenticated is returned when a bearer token does not identify a user.
var ErrUnauthenticated = errors.New("unauthenticated")

// ActorResolver turns a bearer token into the ID of the user acting with it.
type ActorResolver interface {
	ResolveActor(ctx context.Context, token string) (string, error)
}

// AuthAdapter resolves actors through the validate-token service.
type AuthAdapter struct {
	container mono.ServiceContainer
}

var _ ActorResolver = (*AuthAdapter)(nil)

// NewAuthAdapter creates an AuthAdapter over the auth module's container.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	return &AuthAdapter{container: container}
}

// ResolveActor returns the user ID carried by token. Every task operation
// downstream is scoped to that ID.
func (a *AuthAdapter) ResolveActor(ctx context.Context, token string) (string, error) {
	var resp ValidateTokenResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"validate-token",
		json.Marshal,
		json.Unmarshal,
		&ValidateTokenRequest{Token: token},
		&resp,
	); err != nil {
		return "", fmt.Errorf("resolve actor: %w", err)
	}

	if !resp.Valid || resp.UserID == "" {
		return "", fmt.Errorf("%w: %s", ErrUnauthenticated, resp.Error)
	}
	return resp.UserID, nil
}
