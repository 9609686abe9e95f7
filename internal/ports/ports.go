package ports

import (
	"context"

	"shopledger-backend/internal/domain"
)

// HealthChecker is used to probe dependencies.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// ShopReader resolves shops by id. Missing shops yield domain.ErrNotFound.
type ShopReader interface {
	GetShop(ctx context.Context, id string) (*domain.Shop, error)
}

// ShopStore persists shop accounts. Email is unique; a clash yields domain.ErrDuplicateEmail.
type ShopStore interface {
	ShopReader
	GetShopByEmail(ctx context.Context, email string) (*domain.Shop, error)
	GetShopByName(ctx context.Context, name string) (*domain.Shop, error)
	ListShops(ctx context.Context) ([]domain.Shop, error)
	CreateShop(ctx context.Context, s *domain.Shop) error
	SaveShop(ctx context.Context, s *domain.Shop) error
	// DeleteShop removes the shop and all of its daily records.
	DeleteShop(ctx context.Context, id string) error
}

// RecordStore persists daily records. The (ShopID, RecordDate) pair is unique at the store level;
// InsertRecord and SaveRecord report a clash as domain.ErrDuplicateRecord.
type RecordStore interface {
	FindRecord(ctx context.Context, id string) (*domain.DailyRecord, error)
	FindRecordBySlot(ctx context.Context, shopID string, date domain.Date) (*domain.DailyRecord, error)
	ListRecords(ctx context.Context, f domain.RecordFilter) ([]domain.DailyRecord, error)
	InsertRecord(ctx context.Context, r *domain.DailyRecord) error
	SaveRecord(ctx context.Context, r *domain.DailyRecord) error
	DeleteRecord(ctx context.Context, id string) error
}

// Store is a backend that serves both shops and records.
type Store interface {
	ShopStore
	RecordStore
	HealthChecker
	Close()
}
