package device

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLiteStore is a SQLite implementation of Store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite device store.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const deviceColumns = `id, device_id, name, type, status, operator, ip, user_agent, created_at, updated_at, last_activity`

// Find retrieves a device by its string identifier.
func (s *SQLiteStore) Find(ctx context.Context, deviceID string) (*Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE device_id = ?`
	return s.scanDevice(s.db.QueryRowContext(ctx, query, deviceID))
}

// FindAny retrieves a device by string identifier or numeric surrogate key.
func (s *SQLiteStore) FindAny(ctx context.Context, key string) (*Device, error) {
	if id, ok := numericKey(key); ok {
		query := `SELECT ` + deviceColumns + ` FROM devices WHERE id = ?`
		return s.scanDevice(s.db.QueryRowContext(ctx, query, id))
	}
	return s.Find(ctx, key)
}

func (s *SQLiteStore) scanDevice(row *sql.Row) (*Device, error) {
	var (
		d            Device
		operator     sql.NullString
		ip           sql.NullString
		userAgent    sql.NullString
		lastActivity sql.NullTime
	)

	err := row.Scan(
		&d.ID,
		&d.DeviceID,
		&d.Name,
		&d.Type,
		&d.Status,
		&operator,
		&ip,
		&userAgent,
		&d.CreatedAt,
		&d.UpdatedAt,
		&lastActivity,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}

	d.Operator = operator.String
	d.IP = ip.String
	d.UserAgent = userAgent.String
	if lastActivity.Valid {
		t := lastActivity.Time
		d.LastActivity = &t
	}
	return &d, nil
}

// List retrieves all devices, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]*Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []*Device
	for rows.Next() {
		var (
			d            Device
			operator     sql.NullString
			ip           sql.NullString
			userAgent    sql.NullString
			lastActivity sql.NullTime
		)
		err := rows.Scan(
			&d.ID,
			&d.DeviceID,
			&d.Name,
			&d.Type,
			&d.Status,
			&operator,
			&ip,
			&userAgent,
			&d.CreatedAt,
			&d.UpdatedAt,
			&lastActivity,
		)
		if err != nil {
			return nil, err
		}
		d.Operator = operator.String
		d.IP = ip.String
		d.UserAgent = userAgent.String
		if lastActivity.Valid {
			t := lastActivity.Time
			d.LastActivity = &t
		}
		devices = append(devices, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return devices, nil
}

// Create inserts a new device with insert-or-ignore semantics. Two
// concurrent requests from the same unregistered device both reach this
// insert; the unique constraint on device_id makes the race harmless.
func (s *SQLiteStore) Create(ctx context.Context, d *Device) (bool, error) {
	if d.Status == "" {
		d.Status = StatusPending
	}
	now := time.Now()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	query := `
		INSERT OR IGNORE INTO devices (device_id, name, type, status, operator, ip, user_agent, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		d.DeviceID,
		d.Name,
		d.Type,
		d.Status,
		d.Operator,
		d.IP,
		d.UserAgent,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	if id, err := result.LastInsertId(); err == nil {
		d.ID = id
	}
	return true, nil
}

// SetStatus transitions a device to the given status.
func (s *SQLiteStore) SetStatus(ctx context.Context, key string, status Status) error {
	var (
		result sql.Result
		err    error
	)

	query := `UPDATE devices SET status = ?, updated_at = ? WHERE device_id = ?`
	if id, ok := numericKey(key); ok {
		query = `UPDATE devices SET status = ?, updated_at = ? WHERE id = ?`
		result, err = s.db.ExecContext(ctx, query, status, time.Now(), id)
	} else {
		result, err = s.db.ExecContext(ctx, query, status, time.Now(), key)
	}
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// Delete removes a device entirely.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	var (
		result sql.Result
		err    error
	)

	if id, ok := numericKey(key); ok {
		result, err = s.db.ExecContext(ctx, `DELETE FROM devices WHERE id = ?`, id)
	} else {
		result, err = s.db.ExecContext(ctx, `DELETE FROM devices WHERE device_id = ?`, key)
	}
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// DeleteAll removes every device and returns the count.
func (s *SQLiteStore) DeleteAll(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM devices`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// TouchActivity refreshes last_activity without altering status.
func (s *SQLiteStore) TouchActivity(ctx context.Context, deviceID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE devices SET last_activity = ? WHERE device_id = ?`,
		time.Now(), deviceID,
	)
	return err
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
