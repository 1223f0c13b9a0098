package testutil

import (
	"context"
	"time"

	domainAuth "github.com/resumeforge/resumeforge/internal/domain/auth"
	ierr "github.com/resumeforge/resumeforge/internal/errors"
	"github.com/resumeforge/resumeforge/internal/types"
)

// StubAuthProvider implements auth.Provider against a fixed token table.
type StubAuthProvider struct {
	// Users maps bearer tokens to identities.
	Users map[string]*domainAuth.User

	GetUserCalls int
}

func NewStubAuthProvider() *StubAuthProvider {
	return &StubAuthProvider{
		Users: make(map[string]*domainAuth.User),
	}
}

func (s *StubAuthProvider) GetProvider() types.AuthProvider {
	return types.AuthProviderSupabase
}

func (s *StubAuthProvider) GetUser(ctx context.Context, token string) (*domainAuth.User, error) {
	s.GetUserCalls++
	if user, ok := s.Users[token]; ok {
		return user, nil
	}
	return nil, ierr.NewError("invalid token").
		Mark(ierr.ErrPermissionDenied)
}

func (s *StubAuthProvider) ValidateToken(ctx context.Context, token string) (*domainAuth.Claims, error) {
	user, err := s.GetUser(ctx, token)
	if err != nil {
		return nil, err
	}
	return &domainAuth.Claims{UserID: user.ID, Email: user.Email}, nil
}

// StubEmailSender records cancellation confirmations instead of sending them.
type StubEmailSender struct {
	Err  error
	Sent []StubEmail
}

type StubEmail struct {
	To           string
	EffectiveEnd *time.Time
}

func NewStubEmailSender() *StubEmailSender {
	return &StubEmailSender{}
}

func (s *StubEmailSender) SendCancellationConfirmation(ctx context.Context, toAddress string, effectiveEnd *time.Time) error {
	if s.Err != nil {
		return s.Err
	}
	s.Sent = append(s.Sent, StubEmail{To: toAddress, EffectiveEnd: effectiveEnd})
	return nil
}
