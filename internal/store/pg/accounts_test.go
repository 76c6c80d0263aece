package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"lavka.org/internal/auth"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db), mock
}

func accountRows(a *auth.Account) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "phone", "name", "surname", "role", "password_hash", "created_at", "updated_at",
	}).AddRow(a.ID, a.Email, a.Phone, a.Name, a.Surname, string(a.Role), a.PasswordHash, a.CreatedAt, a.UpdatedAt)
}

func TestAccountCreateAssignsIDAndTimestamps(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("insert into accounts").
		WithArgs(sqlmock.AnyArg(), "a@example.com", "+700", "A", sqlmock.AnyArg(), "user", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	account := &auth.Account{
		Email:        "a@example.com",
		Phone:        "+700",
		Name:         "A",
		Role:         auth.RoleUser,
		PasswordHash: "hash",
	}
	if err := store.Accounts().Create(context.Background(), account); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if account.ID == "" {
		t.Fatal("expected generated id")
	}
	if !account.CreatedAt.Equal(now) {
		t.Fatalf("unexpected created_at: %v", account.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountCreateUniqueViolation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("insert into accounts").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"})

	err := store.Accounts().Create(context.Background(), &auth.Account{
		Email:        "dup@example.com",
		Name:         "Dup",
		Role:         auth.RoleUser,
		PasswordHash: "hash",
	})
	if !errors.Is(err, auth.ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount, got %v", err)
	}
}

func TestAccountFindByEmail(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	seeded := &auth.Account{
		ID: "acct-1", Email: "a@example.com", Phone: "+700", Name: "A",
		Role: auth.RoleAdmin, PasswordHash: "hash", CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectQuery("select (.+) from accounts where email").
		WithArgs("a@example.com").
		WillReturnRows(accountRows(seeded))

	account, err := store.Accounts().FindByEmail(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if account.ID != "acct-1" || account.Role != auth.RoleAdmin {
		t.Fatalf("unexpected account: %+v", account)
	}
}

func TestAccountFindByIDMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select (.+) from accounts where id").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "phone", "name", "surname", "role", "password_hash", "created_at", "updated_at",
		}))

	_, err := store.Accounts().FindByID(context.Background(), "ghost")
	if !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAccountListByRole(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	seeded := &auth.Account{
		ID: "acct-1", Email: "p@example.com", Name: "P",
		Role: auth.RolePending, PasswordHash: "hash", CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectQuery("select count\\(\\*\\) from accounts where role").
		WithArgs("pending").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("select (.+) from accounts where role").
		WithArgs("pending", 1, 0).
		WillReturnRows(accountRows(seeded))

	accounts, total, err := store.Accounts().ListByRole(context.Background(), auth.RolePending, 1, 0)
	if err != nil {
		t.Fatalf("ListByRole: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	if len(accounts) != 1 || accounts[0].ID != "acct-1" {
		t.Fatalf("unexpected page: %+v", accounts)
	}
}

func TestAccountUpdateMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("update accounts").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

	err := store.Accounts().Update(context.Background(), &auth.Account{
		ID: "ghost", Email: "g@example.com", Name: "G",
		Role: auth.RoleUser, PasswordHash: "hash",
	})
	if !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAccountUpdateUniqueViolation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("update accounts").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := store.Accounts().Update(context.Background(), &auth.Account{
		ID: "acct-1", Email: "dup@example.com", Name: "Dup",
		Role: auth.RoleUser, PasswordHash: "hash",
	})
	if !errors.Is(err, auth.ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount, got %v", err)
	}
}

func TestAccountDelete(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("delete from accounts").
		WithArgs("acct-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := store.Accounts().Delete(context.Background(), "acct-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	mock.ExpectExec("delete from accounts").
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := store.Accounts().Delete(context.Background(), "ghost"); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
