package auth

import (
	"context"
	"time"
)

// Account is a credential-bearing identity record.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Sanitized returns a copy safe to hand to callers: the hash never
// leaves the auth layer.
func (a *Account) Sanitized() *Account {
	if a == nil {
		return nil
	}
	out := *a
	out.PasswordHash = ""
	return &out
}

// AccountStore describes persistence operations required by the auth
// subsystem. The store owns consistency (unique-email enforcement); the
// service only reacts to the resulting conflict signal.
type AccountStore interface {
	Create(ctx context.Context, a *Account) error
	FindByID(ctx context.Context, id string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	List(ctx context.Context) ([]*Account, error)
	ListByRole(ctx context.Context, role Role, limit, offset int) ([]*Account, int, error)
	Update(ctx context.Context, a *Account) error
	Delete(ctx context.Context, id string) error
}
