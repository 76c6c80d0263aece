package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Session is the result of a successful login.
type Session struct {
	Identity  Identity  `json:"identity"`
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RegisterInput carries self-service registration data.
type RegisterInput struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Name     string `json:"name"`
	Surname  string `json:"surname,omitempty"`
	Password string `json:"password"`
}

// Service orchestrates the credential verifier and the token codec to
// issue sessions, and handles self-service registration.
type Service struct {
	accounts AccountStore
	codec    *Codec
	now      func() time.Time

	defaultRole Role
	bcryptCost  int
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service) error

// WithDefaultRole sets the role granted on self-service registration.
// The source-of-truth policy is "pending until approved"; deployments
// that skip approval can pass RoleUser here.
func WithDefaultRole(role Role) ServiceOption {
	return func(s *Service) error {
		if !role.Valid() {
			return fmt.Errorf("%w: default role %q", ErrInvalidInput, role)
		}
		s.defaultRole = role
		return nil
	}
}

// WithBcryptCost overrides the hashing cost.
func WithBcryptCost(cost int) ServiceOption {
	return func(s *Service) error {
		if cost > 0 {
			s.bcryptCost = cost
		}
		return nil
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) error {
		if fn != nil {
			s.now = fn
		}
		return nil
	}
}

// NewService constructs Service with optional configuration.
func NewService(accounts AccountStore, codec *Codec, opts ...ServiceOption) (*Service, error) {
	if accounts == nil {
		return nil, errors.New("auth: account store is required")
	}
	if codec == nil {
		return nil, errors.New("auth: token codec is required")
	}
	svc := &Service{
		accounts:    accounts,
		codec:       codec,
		now:         time.Now,
		defaultRole: RolePending,
		bcryptCost:  DefaultBcryptCost,
	}
	for _, opt := range opts {
		if err := opt(svc); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// Login verifies credentials and issues a session token. Unknown email
// and wrong password produce the same ErrInvalidCredentials so the
// response does not confirm whether an address is registered. Pending
// accounts are refused before any token is minted.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return Session{}, ErrInvalidCredentials
	}
	if err := VerifyPassword(account.PasswordHash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	if account.Role == RolePending {
		return Session{}, ErrAccountNotActivated
	}

	identity := Identity{SubjectID: account.ID, Role: account.Role}
	token, expiresAt, err := s.codec.Issue(identity)
	if err != nil {
		return Session{}, err
	}
	return Session{Identity: identity, Token: token, ExpiresAt: expiresAt}, nil
}

// Register creates an account with the configured default role. The
// returned account never carries the password hash.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Account, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	phone := strings.TrimSpace(in.Phone)
	if phone == "" {
		return nil, fmt.Errorf("%w: phone is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Password) == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateAccount
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrCreationFailed, err)
	}

	hash, err := HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreationFailed, err)
	}

	account := &Account{
		Email:        email,
		Phone:        phone,
		Name:         name,
		Surname:      strings.TrimSpace(in.Surname),
		Role:         s.defaultRole,
		PasswordHash: hash,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		// The unique-email constraint may still fire under concurrent
		// registration; surface it as the same duplicate signal.
		if errors.Is(err, ErrDuplicateAccount) {
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("%w: %v", ErrCreationFailed, err)
	}
	return account.Sanitized(), nil
}

// Authenticate verifies a bearer token and confirms the subject still
// exists. Used by the HTTP layer for routes that need an identity but
// declare no role requirement.
func (s *Service) Authenticate(ctx context.Context, token string) (Identity, error) {
	identity, err := s.codec.Verify(token)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	if _, err := s.accounts.FindByID(ctx, identity.SubjectID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Identity{}, ErrInvalidToken
		}
		return Identity{}, err
	}
	return identity, nil
}

// Codec exposes the token codec for guard wiring.
func (s *Service) Codec() *Codec {
	return s.codec
}
