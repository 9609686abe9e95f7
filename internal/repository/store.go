package repository

import (
	"shopledger-backend/internal/db"
)

// Store serves shops and daily records from one Postgres pool.
type Store struct {
	*db.Postgres
	ShopRepository
	DailyRecordRepository
}

func NewStore(pg *db.Postgres) *Store {
	return &Store{
		Postgres:              pg,
		ShopRepository:        ShopRepository{DB: pg},
		DailyRecordRepository: DailyRecordRepository{DB: pg},
	}
}
