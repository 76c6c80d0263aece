package httpapi

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"lavka.org/internal/auth"
	"lavka.org/internal/product"
)

// memAccounts is an in-memory auth.AccountStore for handler tests.
type memAccounts struct {
	seq      int
	accounts map[string]*auth.Account
}

func newMemAccounts() *memAccounts {
	return &memAccounts{accounts: make(map[string]*auth.Account)}
}

func (m *memAccounts) Create(_ context.Context, a *auth.Account) error {
	for _, existing := range m.accounts {
		if existing.Email == a.Email {
			return auth.ErrDuplicateAccount
		}
	}
	m.seq++
	if a.ID == "" {
		a.ID = fmt.Sprintf("acct-%d", m.seq)
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	clone := *a
	m.accounts[a.ID] = &clone
	return nil
}

func (m *memAccounts) FindByID(_ context.Context, id string) (*auth.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (m *memAccounts) FindByEmail(_ context.Context, email string) (*auth.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			clone := *a
			return &clone, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (m *memAccounts) List(_ context.Context) ([]*auth.Account, error) {
	out := make([]*auth.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		clone := *a
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memAccounts) ListByRole(_ context.Context, role auth.Role, limit, offset int) ([]*auth.Account, int, error) {
	matched := make([]*auth.Account, 0)
	for _, a := range m.accounts {
		if a.Role == role {
			clone := *a
			matched = append(matched, &clone)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (m *memAccounts) Update(_ context.Context, a *auth.Account) error {
	if _, ok := m.accounts[a.ID]; !ok {
		return auth.ErrNotFound
	}
	for id, existing := range m.accounts {
		if id != a.ID && existing.Email == a.Email {
			return auth.ErrDuplicateAccount
		}
	}
	a.UpdatedAt = time.Now().UTC()
	clone := *a
	m.accounts[a.ID] = &clone
	return nil
}

func (m *memAccounts) Delete(_ context.Context, id string) error {
	if _, ok := m.accounts[id]; !ok {
		return auth.ErrNotFound
	}
	delete(m.accounts, id)
	return nil
}

// memProducts is an in-memory product.Store.
type memProducts struct {
	seq      int
	products map[string]*product.Product
	failFind bool
}

func newMemProducts() *memProducts {
	return &memProducts{products: make(map[string]*product.Product)}
}

func (m *memProducts) Create(_ context.Context, p *product.Product) error {
	m.seq++
	if p.ID == "" {
		p.ID = fmt.Sprintf("prod-%d", m.seq)
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	clone := *p
	m.products[p.ID] = &clone
	return nil
}

func (m *memProducts) FindByID(_ context.Context, id string) (*product.Product, error) {
	if m.failFind {
		return nil, fmt.Errorf("store offline")
	}
	p, ok := m.products[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *memProducts) List(_ context.Context) ([]*product.Product, error) {
	out := make([]*product.Product, 0, len(m.products))
	for _, p := range m.products {
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memProducts) Update(_ context.Context, p *product.Product) error {
	if _, ok := m.products[p.ID]; !ok {
		return auth.ErrNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	clone := *p
	m.products[p.ID] = &clone
	return nil
}

func (m *memProducts) Delete(_ context.Context, id string) error {
	if _, ok := m.products[id]; !ok {
		return auth.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

type testEnv struct {
	api      *API
	accounts *memAccounts
	products *memProducts
	codec    *auth.Codec
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	codec, err := auth.NewCodec(auth.TokenConfig{
		Secret: []byte("test-secret"),
		Issuer: "lavka-test",
		TTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	accountStore := newMemAccounts()
	productStore := newMemProducts()

	sessions, err := auth.NewService(accountStore, codec, auth.WithBcryptCost(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	accounts, err := auth.NewAccountService(accountStore, auth.WithAccountBcryptCost(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("NewAccountService: %v", err)
	}
	products, err := product.NewService(productStore)
	if err != nil {
		t.Fatalf("product.NewService: %v", err)
	}

	api := New(Options{
		Version:  "test",
		Sessions: sessions,
		Accounts: accounts,
		Products: products,
	})
	return &testEnv{api: api, accounts: accountStore, products: productStore, codec: codec}
}

// seed creates an account with the given role and password "password".
func (e *testEnv) seed(t *testing.T, email string, role auth.Role) *auth.Account {
	t.Helper()
	hash, err := auth.HashPassword("password", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	account := &auth.Account{
		Email:        email,
		Phone:        "+700000000",
		Name:         "Test",
		Role:         role,
		PasswordHash: hash,
	}
	if err := e.accounts.Create(context.Background(), account); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return account
}

// token issues a bearer token for the account.
func (e *testEnv) token(t *testing.T, account *auth.Account) string {
	t.Helper()
	token, _, err := e.codec.Issue(auth.Identity{SubjectID: account.ID, Role: account.Role})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}
