package services

import (
	"context"

	"medication-tracking-service/internal/domain/dtos"
	"medication-tracking-service/internal/domain/entities"
)

// IdentityServiceContract authenticates staff and resolves session tokens.
type IdentityServiceContract interface {
	Register(ctx context.Context, username, displayName, password, role string) (*entities.Staff, error)
	Login(ctx context.Context, req dtos.LoginRequest) (*dtos.LoginResponse, error)
	// CurrentIdentity returns the staff member behind token, or ErrUnauthenticated.
	CurrentIdentity(ctx context.Context, token string) (*dtos.Identity, error)
	Logout(ctx context.Context, token string) error
}
