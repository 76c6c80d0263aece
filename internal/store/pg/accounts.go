package pg

import (
	"context"
	"database/sql"
	"errors"

	"lavka.org/internal/auth"
	"lavka.org/internal/ids"
)

var _ auth.AccountStore = (*AccountStore)(nil)

// AccountStore persists accounts.
type AccountStore struct {
	db *sql.DB
}

// Accounts returns the account store view over the shared pool.
func (s *Store) Accounts() *AccountStore { return &AccountStore{db: s.db} }

const accountColumns = `id, email, phone, name, surname, role, password_hash, created_at, updated_at`

func (s *AccountStore) Create(ctx context.Context, a *auth.Account) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	if a.ID == "" {
		a.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx, `
		insert into accounts (id, email, phone, name, surname, role, password_hash)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning created_at, updated_at
	`, a.ID, a.Email, a.Phone, a.Name, nullIfEmpty(a.Surname), string(a.Role), a.PasswordHash)
	if err := row.Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return auth.ErrDuplicateAccount
		}
		return err
	}
	return nil
}

func (s *AccountStore) FindByID(ctx context.Context, id string) (*auth.Account, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	row := s.db.QueryRowContext(ctx,
		`select `+accountColumns+` from accounts where id = $1`, id)
	return scanAccount(row)
}

func (s *AccountStore) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	row := s.db.QueryRowContext(ctx,
		`select `+accountColumns+` from accounts where email = $1`, email)
	return scanAccount(row)
}

func (s *AccountStore) List(ctx context.Context) ([]*auth.Account, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx,
		`select `+accountColumns+` from accounts order by created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*auth.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (s *AccountStore) ListByRole(ctx context.Context, role auth.Role, limit, offset int) ([]*auth.Account, int, error) {
	if s.db == nil {
		return nil, 0, errors.New("database connection unavailable")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`select count(*) from accounts where role = $1`, string(role)).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`select `+accountColumns+` from accounts where role = $1 order by created_at limit $2 offset $3`,
		string(role), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var accounts []*auth.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, a)
	}
	return accounts, total, rows.Err()
}

func (s *AccountStore) Update(ctx context.Context, a *auth.Account) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	row := s.db.QueryRowContext(ctx, `
		update accounts
		set email = $2, phone = $3, name = $4, surname = $5, role = $6,
		    password_hash = $7, updated_at = now()
		where id = $1
		returning updated_at
	`, a.ID, a.Email, a.Phone, a.Name, nullIfEmpty(a.Surname), string(a.Role), a.PasswordHash)
	if err := row.Scan(&a.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.ErrNotFound
		}
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return auth.ErrDuplicateAccount
		}
		return err
	}
	return nil
}

func (s *AccountStore) Delete(ctx context.Context, id string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `delete from accounts where id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return auth.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*auth.Account, error) {
	var (
		a       auth.Account
		surname sql.NullString
		role    string
	)
	err := row.Scan(&a.ID, &a.Email, &a.Phone, &a.Name, &surname, &role, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Surname = surname.String
	a.Role = auth.Role(role)
	return &a, nil
}
