package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"shopledger-backend/internal/db"
	"shopledger-backend/internal/domain"
)

type DailyRecordRepository struct {
	DB *db.Postgres
}

const recordColumns = `
	id, shop_id, to_char(record_date, 'YYYY-MM-DD'),
	revenue_main_with_margin, revenue_main_without_margin,
	revenue_order_with_margin, revenue_order_without_margin,
	main_stock_value, order_stock_value, created_at, updated_at`

func (r DailyRecordRepository) FindRecord(ctx context.Context, id string) (*domain.DailyRecord, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM daily_records WHERE id=$1`, id)
	return r.one("find record", row)
}

func (r DailyRecordRepository) FindRecordBySlot(ctx context.Context, shopID string, date domain.Date) (*domain.DailyRecord, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM daily_records
		WHERE shop_id=$1 AND record_date=$2::date
	`, shopID, string(date))
	return r.one("find record by slot", row)
}

func (r DailyRecordRepository) ListRecords(ctx context.Context, f domain.RecordFilter) ([]domain.DailyRecord, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.ShopID != "" {
		add("shop_id=$%d", f.ShopID)
	}
	if f.From != "" {
		add("record_date >= $%d::date", string(f.From))
	}
	if f.To != "" {
		add("record_date <= $%d::date", string(f.To))
	}

	query := `SELECT ` + recordColumns + ` FROM daily_records`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if f.Order == domain.OrderByDate {
		query += " ORDER BY record_date, seq"
	} else {
		query += " ORDER BY seq"
	}

	rows, err := r.DB.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapStorage("list records", err)
	}
	defer rows.Close()

	out := make([]domain.DailyRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, domain.WrapStorage("list records", err)
		}
		out = append(out, *rec)
	}
	return out, domain.WrapStorage("list records", rows.Err())
}

// InsertRecord relies on the (shop_id, record_date) unique constraint to reject a second record
// for the same day, so concurrent creates cannot both succeed.
func (r DailyRecordRepository) InsertRecord(ctx context.Context, rec *domain.DailyRecord) error {
	_, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO daily_records (
			id, shop_id, record_date,
			revenue_main_with_margin, revenue_main_without_margin,
			revenue_order_with_margin, revenue_order_without_margin,
			main_stock_value, order_stock_value, created_at, updated_at
		) VALUES ($1,$2,$3::date,$4,$5,$6,$7,$8,$9,$10,$11)
	`, rec.ID, rec.ShopID, string(rec.RecordDate),
		rec.RevenueMainWithMargin, rec.RevenueMainWithoutMargin,
		rec.RevenueOrderWithMargin, rec.RevenueOrderWithoutMargin,
		rec.MainStockValue, rec.OrderStockValue, rec.CreatedAt, rec.UpdatedAt)
	if IsDuplicate(err) {
		return domain.ErrDuplicateRecord
	}
	return domain.WrapStorage("insert record", err)
}

func (r DailyRecordRepository) SaveRecord(ctx context.Context, rec *domain.DailyRecord) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE daily_records
		SET record_date=$2::date,
			revenue_main_with_margin=$3, revenue_main_without_margin=$4,
			revenue_order_with_margin=$5, revenue_order_without_margin=$6,
			main_stock_value=$7, order_stock_value=$8, updated_at=$9
		WHERE id=$1
	`, rec.ID, string(rec.RecordDate),
		rec.RevenueMainWithMargin, rec.RevenueMainWithoutMargin,
		rec.RevenueOrderWithMargin, rec.RevenueOrderWithoutMargin,
		rec.MainStockValue, rec.OrderStockValue, rec.UpdatedAt)
	if IsDuplicate(err) {
		return domain.ErrDuplicateRecord
	}
	if err != nil {
		return domain.WrapStorage("save record", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r DailyRecordRepository) DeleteRecord(ctx context.Context, id string) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM daily_records WHERE id=$1`, id)
	if err != nil {
		return domain.WrapStorage("delete record", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r DailyRecordRepository) one(op string, row pgx.Row) (*domain.DailyRecord, error) {
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, domain.WrapStorage(op, err)
	}
	return rec, nil
}

func scanRecord(row interface {
	Scan(dest ...any) error
}) (*domain.DailyRecord, error) {
	var (
		rec  domain.DailyRecord
		date string
	)
	if err := row.Scan(
		&rec.ID,
		&rec.ShopID,
		&date,
		&rec.RevenueMainWithMargin,
		&rec.RevenueMainWithoutMargin,
		&rec.RevenueOrderWithMargin,
		&rec.RevenueOrderWithoutMargin,
		&rec.MainStockValue,
		&rec.OrderStockValue,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rec.RecordDate = domain.Date(date)
	return &rec, nil
}
