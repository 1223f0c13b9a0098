package auth

import (
	"context"
	"log"

	"github.com/golang-jwt/jwt/v4"
	supa "github.com/nedpals/supabase-go"

	"github.com/resumeforge/resumeforge/internal/config"
	"github.com/resumeforge/resumeforge/internal/domain/auth"
	ierr "github.com/resumeforge/resumeforge/internal/errors"
	"github.com/resumeforge/resumeforge/internal/logger"
	"github.com/resumeforge/resumeforge/internal/types"
)

type supabaseAuth struct {
	AuthConfig config.AuthConfig
	client     *supa.Client
	logger     *logger.Logger
}

func NewSupabaseAuth(cfg *config.Configuration) Provider {
	client := supa.CreateClient(cfg.Auth.Supabase.BaseURL, cfg.Auth.Supabase.ServiceKey)
	if client == nil {
		log.Fatalf("failed to create Supabase client")
	}

	logger, _ := logger.NewLogger(cfg)

	return &supabaseAuth{
		AuthConfig: cfg.Auth,
		client:     client,
		logger:     logger,
	}
}

func (s *supabaseAuth) GetProvider() types.AuthProvider {
	return types.AuthProviderSupabase
}

// GetUser resolves a bearer token against the Supabase auth endpoint.
func (s *supabaseAuth) GetUser(ctx context.Context, token string) (*auth.User, error) {
	if token == "" {
		return nil, ierr.NewError("token is required").
			Mark(ierr.ErrPermissionDenied)
	}

	user, err := s.client.Auth.User(ctx, token)
	if err != nil {
		return nil, ierr.WithError(err).
			WithMessage("invalid or expired token").
			WithHint("Failed to get user").
			Mark(ierr.ErrPermissionDenied)
	}
	if user == nil || user.ID == "" {
		return nil, ierr.NewError("token did not resolve to a user").
			Mark(ierr.ErrPermissionDenied)
	}

	return &auth.User{
		ID:    user.ID,
		Email: user.Email,
	}, nil
}

// ValidateToken parses and verifies the token locally using the project JWT
// secret. Used where a round trip to the auth backend is not warranted.
func (s *supabaseAuth) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ierr.NewError("unexpected signing method").
				WithReportableDetails(map[string]interface{}{
					"signing_method": token.Method.Alg(),
				}).
				Mark(ierr.ErrPermissionDenied)
		}
		return []byte(s.AuthConfig.Secret), nil
	})

	if err != nil {
		return nil, ierr.WithError(err).
			WithMessage("token parse error").
			WithHint("Token parse error").
			Mark(ierr.ErrPermissionDenied)
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok || !parsedToken.Valid {
		return nil, ierr.NewError("invalid token claims").
			Mark(ierr.ErrPermissionDenied)
	}

	userID, ok := claims["sub"].(string)
	if !ok {
		return nil, ierr.NewError("token missing user ID").
			Mark(ierr.ErrPermissionDenied)
	}

	email, _ := claims["email"].(string)

	return &auth.Claims{
		UserID: userID,
		Email:  email,
	}, nil
}
