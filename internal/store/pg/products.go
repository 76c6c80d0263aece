package pg

import (
	"context"
	"database/sql"
	"errors"

	"lavka.org/internal/auth"
	"lavka.org/internal/ids"
	"lavka.org/internal/product"
)

var _ product.Store = (*ProductStore)(nil)

// ProductStore persists products.
type ProductStore struct {
	db *sql.DB
}

// Products returns the product store view over the shared pool.
func (s *Store) Products() *ProductStore { return &ProductStore{db: s.db} }

const productColumns = `id, title, description, price, owner_id, created_at, updated_at`

func (s *ProductStore) Create(ctx context.Context, p *product.Product) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	if p.ID == "" {
		p.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx, `
		insert into products (id, title, description, price, owner_id)
		values ($1, $2, $3, $4, $5)
		returning created_at, updated_at
	`, p.ID, p.Title, p.Description, p.Price, p.OwnerID)
	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			// Owner vanished between authentication and insert.
			return auth.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *ProductStore) FindByID(ctx context.Context, id string) (*product.Product, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	row := s.db.QueryRowContext(ctx,
		`select `+productColumns+` from products where id = $1`, id)
	var p product.Product
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProductStore) List(ctx context.Context) ([]*product.Product, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx,
		`select `+productColumns+` from products order by created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*product.Product
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

func (s *ProductStore) Update(ctx context.Context, p *product.Product) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	row := s.db.QueryRowContext(ctx, `
		update products
		set title = $2, description = $3, price = $4, updated_at = now()
		where id = $1
		returning updated_at
	`, p.ID, p.Title, p.Description, p.Price)
	if err := row.Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *ProductStore) Delete(ctx context.Context, id string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `delete from products where id = $1`, id)
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
