package auth

import (
	"context"

	"github.com/resumeforge/resumeforge/internal/config"
	"github.com/resumeforge/resumeforge/internal/domain/auth"
	"github.com/resumeforge/resumeforge/internal/types"
)

// Provider resolves bearer tokens to user identities.
type Provider interface {
	GetProvider() types.AuthProvider
	// GetUser resolves a bearer token to the user it belongs to via the
	// hosted auth backend.
	GetUser(ctx context.Context, token string) (*auth.User, error)
	// ValidateToken inspects the token locally without a network call.
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
}

// NewProvider returns the auth provider configured for this deployment.
func NewProvider(cfg *config.Configuration) Provider {
	switch cfg.Auth.Provider {
	case types.AuthProviderSupabase:
		return NewSupabaseAuth(cfg)
	default:
		return NewSupabaseAuth(cfg)
	}
}
