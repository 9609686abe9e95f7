// Package sqlite is a single-file store backed by modernc.org/sqlite. Dates are kept as
// YYYY-MM-DD text so that string comparison orders them; amounts are integer cents.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"shopledger-backend/internal/domain"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS shops (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL COLLATE NOCASE UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'SHOP',
	timer_of_day  TEXT,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS daily_records (
	id                           TEXT PRIMARY KEY,
	shop_id                      TEXT NOT NULL REFERENCES shops(id) ON DELETE CASCADE,
	record_date                  TEXT NOT NULL,
	revenue_main_with_margin     INTEGER NOT NULL,
	revenue_main_without_margin  INTEGER NOT NULL,
	revenue_order_with_margin    INTEGER NOT NULL,
	revenue_order_without_margin INTEGER NOT NULL,
	main_stock_value             INTEGER NOT NULL,
	order_stock_value            INTEGER NOT NULL,
	created_at                   TEXT NOT NULL,
	updated_at                   TEXT NOT NULL,
	UNIQUE (shop_id, record_date)
);

CREATE INDEX IF NOT EXISTS idx_daily_records_date ON daily_records(record_date);
`

const recordColumns = `id, shop_id, record_date,
	revenue_main_with_margin, revenue_main_without_margin,
	revenue_order_with_margin, revenue_order_without_margin,
	main_stock_value, order_stock_value, created_at, updated_at`

const shopColumns = `id, name, email, password_hash, role, timer_of_day, created_at, updated_at`

type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() {
	_ = s.db.Close()
}

func (s *Store) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isUnique(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE")
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseStamp(v string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, v)
	return t
}

type scanner interface {
	Scan(dest ...any) error
}

// Shops

func scanShop(row scanner) (*domain.Shop, error) {
	var (
		sh               domain.Shop
		role             string
		timer            sql.NullString
		created, updated string
	)
	if err := row.Scan(&sh.ID, &sh.Name, &sh.Email, &sh.PasswordHash, &role, &timer, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	sh.Role = domain.Role(role)
	if timer.Valid {
		v := timer.String
		sh.TimerOfDay = &v
	}
	sh.CreatedAt = parseStamp(created)
	sh.UpdatedAt = parseStamp(updated)
	return &sh, nil
}

func (s *Store) GetShop(ctx context.Context, id string) (*domain.Shop, error) {
	sh, err := scanShop(s.db.QueryRowContext(ctx, `SELECT `+shopColumns+` FROM shops WHERE id = ?`, id))
	return sh, domain.WrapStorage("get shop", err)
}

func (s *Store) GetShopByEmail(ctx context.Context, email string) (*domain.Shop, error) {
	sh, err := scanShop(s.db.QueryRowContext(ctx, `SELECT `+shopColumns+` FROM shops WHERE email = ?`, email))
	return sh, domain.WrapStorage("get shop by email", err)
}

func (s *Store) GetShopByName(ctx context.Context, name string) (*domain.Shop, error) {
	sh, err := scanShop(s.db.QueryRowContext(ctx,
		`SELECT `+shopColumns+` FROM shops WHERE name = ? ORDER BY created_at LIMIT 1`, name))
	return sh, domain.WrapStorage("get shop by name", err)
}

func (s *Store) ListShops(ctx context.Context) ([]domain.Shop, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+shopColumns+` FROM shops ORDER BY created_at, id`)
	if err != nil {
		return nil, domain.WrapStorage("list shops", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]domain.Shop, 0)
	for rows.Next() {
		sh, err := scanShop(rows)
		if err != nil {
			return nil, domain.WrapStorage("list shops", err)
		}
		out = append(out, *sh)
	}
	return out, domain.WrapStorage("list shops", rows.Err())
}

func (s *Store) CreateShop(ctx context.Context, sh *domain.Shop) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO shops (`+shopColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sh.ID, sh.Name, sh.Email, sh.PasswordHash, string(sh.Role), sh.TimerOfDay,
		stamp(sh.CreatedAt), stamp(sh.UpdatedAt))
	if isUnique(err) {
		return domain.ErrDuplicateEmail
	}
	return domain.WrapStorage("create shop", err)
}

func (s *Store) SaveShop(ctx context.Context, sh *domain.Shop) error {
	res, err := s.db.ExecContext(ctx, `UPDATE shops SET name = ?, email = ?, password_hash = ?, role = ?,
		timer_of_day = ?, updated_at = ? WHERE id = ?`,
		sh.Name, sh.Email, sh.PasswordHash, string(sh.Role), sh.TimerOfDay, stamp(sh.UpdatedAt), sh.ID)
	if isUnique(err) {
		return domain.ErrDuplicateEmail
	}
	if err != nil {
		return domain.WrapStorage("save shop", err)
	}
	return affected(res, "save shop")
}

func (s *Store) DeleteShop(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM shops WHERE id = ?`, id)
	if err != nil {
		return domain.WrapStorage("delete shop", err)
	}
	return affected(res, "delete shop")
}

func affected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return domain.WrapStorage(op, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Records

func scanRecord(row scanner) (*domain.DailyRecord, error) {
	var (
		r                domain.DailyRecord
		date             string
		created, updated string
	)
	err := row.Scan(&r.ID, &r.ShopID, &date,
		&r.RevenueMainWithMargin, &r.RevenueMainWithoutMargin,
		&r.RevenueOrderWithMargin, &r.RevenueOrderWithoutMargin,
		&r.MainStockValue, &r.OrderStockValue, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	r.RecordDate = domain.Date(date)
	r.CreatedAt = parseStamp(created)
	r.UpdatedAt = parseStamp(updated)
	return &r, nil
}

func (s *Store) FindRecord(ctx context.Context, id string) (*domain.DailyRecord, error) {
	r, err := scanRecord(s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM daily_records WHERE id = ?`, id))
	return r, domain.WrapStorage("find record", err)
}

func (s *Store) FindRecordBySlot(ctx context.Context, shopID string, date domain.Date) (*domain.DailyRecord, error) {
	r, err := scanRecord(s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM daily_records WHERE shop_id = ? AND record_date = ?`, shopID, string(date)))
	return r, domain.WrapStorage("find record by slot", err)
}

func (s *Store) ListRecords(ctx context.Context, f domain.RecordFilter) ([]domain.DailyRecord, error) {
	var (
		where []string
		args  []any
	)
	if f.ShopID != "" {
		where = append(where, "shop_id = ?")
		args = append(args, f.ShopID)
	}
	if f.From != "" {
		where = append(where, "record_date >= ?")
		args = append(args, string(f.From))
	}
	if f.To != "" {
		where = append(where, "record_date <= ?")
		args = append(args, string(f.To))
	}

	q := `SELECT ` + recordColumns + ` FROM daily_records`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	if f.Order == domain.OrderByDate {
		q += " ORDER BY record_date, rowid"
	} else {
		q += " ORDER BY rowid"
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, domain.WrapStorage("list records", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]domain.DailyRecord, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, domain.WrapStorage("list records", err)
		}
		out = append(out, *r)
	}
	return out, domain.WrapStorage("list records", rows.Err())
}

func (s *Store) InsertRecord(ctx context.Context, r *domain.DailyRecord) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO daily_records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ShopID, string(r.RecordDate),
		r.RevenueMainWithMargin, r.RevenueMainWithoutMargin,
		r.RevenueOrderWithMargin, r.RevenueOrderWithoutMargin,
		r.MainStockValue, r.OrderStockValue, stamp(r.CreatedAt), stamp(r.UpdatedAt))
	if isUnique(err) {
		return domain.ErrDuplicateRecord
	}
	return domain.WrapStorage("insert record", err)
}

func (s *Store) SaveRecord(ctx context.Context, r *domain.DailyRecord) error {
	res, err := s.db.ExecContext(ctx, `UPDATE daily_records SET record_date = ?,
		revenue_main_with_margin = ?, revenue_main_without_margin = ?,
		revenue_order_with_margin = ?, revenue_order_without_margin = ?,
		main_stock_value = ?, order_stock_value = ?, updated_at = ?
		WHERE id = ?`,
		string(r.RecordDate),
		r.RevenueMainWithMargin, r.RevenueMainWithoutMargin,
		r.RevenueOrderWithMargin, r.RevenueOrderWithoutMargin,
		r.MainStockValue, r.OrderStockValue, stamp(r.UpdatedAt), r.ID)
	if isUnique(err) {
		return domain.ErrDuplicateRecord
	}
	if err != nil {
		return domain.WrapStorage("save record", err)
	}
	return affected(res, "save record")
}

func (s *Store) DeleteRecord(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM daily_records WHERE id = ?`, id)
	if err != nil {
		return domain.WrapStorage("delete record", err)
	}
	return affected(res, "delete record")
}
