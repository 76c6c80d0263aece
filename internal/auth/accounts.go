package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// CreateAccountInput carries administrator-driven account creation data.
type CreateAccountInput struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Name     string `json:"name"`
	Surname  string `json:"surname,omitempty"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// AccountUpdate lists the mutable account fields; nil means "leave as is".
type AccountUpdate struct {
	Email    *string
	Phone    *string
	Name     *string
	Surname  *string
	Password *string
	Role     *Role
}

// AccountService provides account CRUD on top of the store.
type AccountService struct {
	store      AccountStore
	bcryptCost int
}

// AccountServiceOption configures AccountService.
type AccountServiceOption func(*AccountService)

// WithAccountBcryptCost overrides the hashing cost for password updates.
func WithAccountBcryptCost(cost int) AccountServiceOption {
	return func(s *AccountService) {
		if cost > 0 {
			s.bcryptCost = cost
		}
	}
}

// NewAccountService constructs AccountService.
func NewAccountService(store AccountStore, opts ...AccountServiceOption) (*AccountService, error) {
	if store == nil {
		return nil, errors.New("auth: account store is required")
	}
	svc := &AccountService{store: store, bcryptCost: DefaultBcryptCost}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Create makes an account on behalf of an administrator. Role defaults
// to user when the input leaves it empty.
func (s *AccountService) Create(ctx context.Context, in CreateAccountInput) (*Account, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Password) == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	role := RoleUser
	if strings.TrimSpace(in.Role) != "" {
		parsed, err := ParseRole(in.Role)
		if err != nil {
			return nil, err
		}
		role = parsed
	}

	hash, err := HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreationFailed, err)
	}
	account := &Account{
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		Name:         name,
		Surname:      strings.TrimSpace(in.Surname),
		Role:         role,
		PasswordHash: hash,
	}
	if err := s.store.Create(ctx, account); err != nil {
		if errors.Is(err, ErrDuplicateAccount) {
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("%w: %v", ErrCreationFailed, err)
	}
	return account.Sanitized(), nil
}

// List returns all accounts without password hashes.
func (s *AccountService) List(ctx context.Context) ([]*Account, error) {
	accounts, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Account, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Sanitized())
	}
	return out, nil
}

// ListByRole returns a page of accounts holding the given role along
// with the total count.
func (s *AccountService) ListByRole(ctx context.Context, role Role, limit, offset int) ([]*Account, int, error) {
	if !role.Valid() {
		return nil, 0, fmt.Errorf("%w: role %q", ErrInvalidInput, role)
	}
	accounts, total, err := s.store.ListByRole(ctx, role, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*Account, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Sanitized())
	}
	return out, total, nil
}

// Get returns one account by id.
func (s *AccountService) Get(ctx context.Context, id string) (*Account, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: account id is required", ErrInvalidInput)
	}
	account, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return account.Sanitized(), nil
}

// Update applies the partial update. A user-role actor may touch their
// own profile fields but never a role: only administrators reassign
// roles, so any role change requested by a user is refused.
func (s *AccountService) Update(ctx context.Context, id string, upd AccountUpdate, actor Identity) (*Account, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: account id is required", ErrInvalidInput)
	}
	account, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Role != nil && actor.Role == RoleUser {
		return nil, fmt.Errorf("%w: role changes require an administrator", ErrForbidden)
	}

	if upd.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*upd.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
		}
		account.Email = email
	}
	if upd.Phone != nil {
		account.Phone = strings.TrimSpace(*upd.Phone)
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		account.Name = name
	}
	if upd.Surname != nil {
		account.Surname = strings.TrimSpace(*upd.Surname)
	}
	if upd.Password != nil {
		pw := strings.TrimSpace(*upd.Password)
		if pw == "" {
			return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
		}
		hash, err := HashPassword(pw, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		account.PasswordHash = hash
	}
	if upd.Role != nil {
		if !upd.Role.Valid() {
			return nil, fmt.Errorf("%w: role %q", ErrInvalidInput, *upd.Role)
		}
		account.Role = *upd.Role
	}

	if err := s.store.Update(ctx, account); err != nil {
		if errors.Is(err, ErrDuplicateAccount) || errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrCreationFailed, err)
	}
	return account.Sanitized(), nil
}

// Approve promotes a pending account to the operational user role.
func (s *AccountService) Approve(ctx context.Context, id string) (*Account, error) {
	account, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account.Role != RolePending {
		return nil, fmt.Errorf("%w: account is not pending", ErrInvalidInput)
	}
	account.Role = RoleUser
	if err := s.store.Update(ctx, account); err != nil {
		return nil, err
	}
	return account.Sanitized(), nil
}

// RejectPending deletes a pending account. Accounts in any other state
// are left untouched, so bulk rejection can never remove an operator.
func (s *AccountService) RejectPending(ctx context.Context, id string) error {
	account, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if account.Role != RolePending {
		return fmt.Errorf("%w: account is not pending", ErrInvalidInput)
	}
	return s.store.Delete(ctx, account.ID)
}

// ApproveAll promotes every pending account and reports how many changed.
func (s *AccountService) ApproveAll(ctx context.Context) (int, error) {
	return s.forEachPending(ctx, func(a *Account) error {
		a.Role = RoleUser
		return s.store.Update(ctx, a)
	})
}

// RejectAll deletes every pending account and reports how many were removed.
func (s *AccountService) RejectAll(ctx context.Context) (int, error) {
	return s.forEachPending(ctx, func(a *Account) error {
		return s.store.Delete(ctx, a.ID)
	})
}

func (s *AccountService) forEachPending(ctx context.Context, apply func(*Account) error) (int, error) {
	const batch = 100
	done := 0
	for {
		pending, _, err := s.store.ListByRole(ctx, RolePending, batch, 0)
		if err != nil {
			return done, err
		}
		if len(pending) == 0 {
			return done, nil
		}
		for _, a := range pending {
			if err := apply(a); err != nil {
				return done, err
			}
			done++
		}
		if len(pending) < batch {
			return done, nil
		}
	}
}

// Delete removes an account by id.
func (s *AccountService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: account id is required", ErrInvalidInput)
	}
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}
