package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// SQLiteStore is a SQLite implementation of Store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite order store.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const orderColumns = `id, order_code, products_data, status, device_id, operator, notes,
	started_at, completed_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var (
		o            Order
		productsData sql.NullString
		deviceID     sql.NullString
		operator     sql.NullString
		notes        sql.NullString
		startedAt    sql.NullTime
		completedAt  sql.NullTime
	)
	err := row.Scan(&o.ID, &o.OrderCode, &productsData, &o.Status, &deviceID, &operator,
		&notes, &startedAt, &completedAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	o.DeviceID = deviceID.String
	o.Operator = operator.String
	o.Notes = notes.String
	if startedAt.Valid {
		t := startedAt.Time
		o.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		o.CompletedAt = &t
	}
	if productsData.Valid && productsData.String != "" {
		if err := json.Unmarshal([]byte(productsData.String), &o.Items); err != nil {
			return nil, err
		}
	}
	return &o, nil
}

// Find retrieves an order by its order code.
func (s *SQLiteStore) Find(ctx context.Context, orderCode string) (*Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_code = ?`, orderCode)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

// List retrieves orders newest-first, optionally filtered by status.
func (s *SQLiteStore) List(ctx context.Context, status string) ([]*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// Create inserts a new order.
func (s *SQLiteStore) Create(ctx context.Context, o *Order) error {
	if o.Status == "" {
		o.Status = StatusPending
	}
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.StartedAt == nil {
		o.StartedAt = &now
	}

	productsData, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO orders (order_code, products_data, status, device_id, operator,
			notes, started_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.OrderCode, string(productsData), o.Status, o.DeviceID, o.Operator,
		o.Notes, o.StartedAt, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderExists
	}
	if id, err := result.LastInsertId(); err == nil {
		o.ID = id
	}
	return nil
}

// Complete marks a pending order as completed.
func (s *SQLiteStore) Complete(ctx context.Context, orderCode string) (*Order, error) {
	now := time.Now()
	result, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, completed_at = ?, updated_at = ? WHERE order_code = ?`,
		StatusCompleted, now, now, orderCode,
	)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrOrderNotFound
	}
	return s.Find(ctx, orderCode)
}

// Delete removes an order by its order code.
func (s *SQLiteStore) Delete(ctx context.Context, orderCode string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE order_code = ?`, orderCode)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

var _ Store = (*SQLiteStore)(nil)
