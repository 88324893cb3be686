package product

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// SQLiteStore is a SQLite implementation of Store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite product store.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const productColumns = `id, product_id, name, category, unit, active, created_at, updated_at`

// ListAll retrieves the whole catalog grouped by category code.
func (s *SQLiteStore) ListAll(ctx context.Context) (map[string][]*Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE active ORDER BY category, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]*Product, len(Categories))
	for _, c := range Categories {
		result[c] = []*Product{}
	}

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result[p.Category] = append(result[p.Category], p)
	}
	return result, rows.Err()
}

// ListCategory retrieves one category's products.
func (s *SQLiteStore) ListCategory(ctx context.Context, category string) ([]*Product, error) {
	if !ValidCategory(category) {
		return nil, ErrUnknownCategory
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE category = ? AND active ORDER BY id`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func scanProduct(rows *sql.Rows) (*Product, error) {
	var p Product
	err := rows.Scan(&p.ID, &p.ProductID, &p.Name, &p.Category, &p.Unit, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a product.
func (s *SQLiteStore) Create(ctx context.Context, p *Product) error {
	if !ValidCategory(p.Category) {
		return ErrUnknownCategory
	}
	if p.Unit == "" {
		p.Unit = "un"
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Active = true

	result, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO products (product_id, name, category, unit, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ProductID, p.Name, p.Category, p.Unit, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductExists
	}
	if id, err := result.LastInsertId(); err == nil {
		p.ID = id
	}
	return nil
}

// Delete removes a product by its string product ID.
func (s *SQLiteStore) Delete(ctx context.Context, category, productID string) error {
	if !ValidCategory(category) {
		return ErrUnknownCategory
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM products WHERE category = ? AND product_id = ?`, category, productID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Count returns the total number of products.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}

// NewProductID builds the next product identifier for a category, e.g.
// "pt_17" when the category already has 16 entries.
func NewProductID(category string, existing []*Product) string {
	max := 0
	for _, p := range existing {
		if idx := strings.LastIndexByte(p.ProductID, '_'); idx >= 0 {
			n := 0
			for _, ch := range p.ProductID[idx+1:] {
				if ch < '0' || ch > '9' {
					n = 0
					break
				}
				n = n*10 + int(ch-'0')
			}
			if n > max {
				max = n
			}
		}
	}
	return categoryProductID(category, max+1)
}

var _ Store = (*SQLiteStore)(nil)
