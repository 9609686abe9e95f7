package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"shopledger-backend/internal/db"
	"shopledger-backend/internal/domain"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = domain.ErrNotFound

// IsDuplicate detects unique constraint violation.
func IsDuplicate(err error) bool {
	return db.IsUniqueViolation(err)
}

type ShopRepository struct {
	DB *db.Postgres
}

const shopColumns = `id, name, email, password_hash, role, timer_of_day, created_at, updated_at`

func (r ShopRepository) GetShop(ctx context.Context, id string) (*domain.Shop, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+shopColumns+` FROM shops WHERE id=$1`, id)
	return r.one("get shop", row)
}

func (r ShopRepository) GetShopByEmail(ctx context.Context, email string) (*domain.Shop, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+shopColumns+` FROM shops WHERE lower(email)=lower($1)`, email)
	return r.one("get shop by email", row)
}

func (r ShopRepository) GetShopByName(ctx context.Context, name string) (*domain.Shop, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+shopColumns+`
		FROM shops
		WHERE name=$1
		ORDER BY created_at
		LIMIT 1
	`, name)
	return r.one("get shop by name", row)
}

func (r ShopRepository) ListShops(ctx context.Context) ([]domain.Shop, error) {
	rows, err := r.DB.Pool.Query(ctx, `SELECT `+shopColumns+` FROM shops ORDER BY created_at, id`)
	if err != nil {
		return nil, domain.WrapStorage("list shops", err)
	}
	defer rows.Close()

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

func (r ShopRepository) CreateShop(ctx context.Context, sh *domain.Shop) error {
	_, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO shops (`+shopColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, sh.ID, sh.Name, sh.Email, sh.PasswordHash, string(sh.Role), sh.TimerOfDay, sh.CreatedAt, sh.UpdatedAt)
	if IsDuplicate(err) {
		return domain.ErrDuplicateEmail
	}
	return domain.WrapStorage("create shop", err)
}

func (r ShopRepository) SaveShop(ctx context.Context, sh *domain.Shop) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE shops
		SET name=$2, email=$3, password_hash=$4, role=$5, timer_of_day=$6, updated_at=$7
		WHERE id=$1
	`, sh.ID, sh.Name, sh.Email, sh.PasswordHash, string(sh.Role), sh.TimerOfDay, sh.UpdatedAt)
	if IsDuplicate(err) {
		return domain.ErrDuplicateEmail
	}
	if err != nil {
		return domain.WrapStorage("save shop", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteShop removes the shop; its daily records go with it through ON DELETE CASCADE.
func (r ShopRepository) DeleteShop(ctx context.Context, id string) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM shops WHERE id=$1`, id)
	if err != nil {
		return domain.WrapStorage("delete shop", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r ShopRepository) one(op string, row pgx.Row) (*domain.Shop, error) {
	sh, err := scanShop(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, domain.WrapStorage(op, err)
	}
	return sh, nil
}

func scanShop(row interface {
	Scan(dest ...any) error
}) (*domain.Shop, error) {
	var (
		s    domain.Shop
		role string
	)
	if err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Email,
		&s.PasswordHash,
		&role,
		&s.TimerOfDay,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.Role = domain.Role(role)
	return &s, nil
}
