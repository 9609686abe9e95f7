// Package ledger owns the daily-record lifecycle: validation, one-record-per-shop-per-day,
// date and money normalization, and CRUD against the authorization policy and the record store.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"shopledger-backend/internal/authz"
	"shopledger-backend/internal/domain"
	"shopledger-backend/internal/metrics"
	"shopledger-backend/internal/money"
	"shopledger-backend/internal/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service struct {
	Shops   ports.ShopReader
	Records ports.RecordStore
	Logger  *slog.Logger
	Now     func() time.Time
}

// Amounts are the six monetary fields as decimals. In a Patch, only amounts marked Set apply.
type Amounts struct {
	RevenueMainWithMargin     money.Amount
	RevenueMainWithoutMargin  money.Amount
	RevenueOrderWithMargin    money.Amount
	RevenueOrderWithoutMargin money.Amount
	MainStockValue            money.Amount
	OrderStockValue           money.Amount
}

type CreateInput struct {
	ShopID     string
	RecordDate string
	Amounts
}

type Patch struct {
	RecordDate *string
	Amounts
}

// RecordView is a daily record as it leaves the ledger: decimal amounts, day-first date.
type RecordView struct {
	ID                        string
	ShopID                    string
	RecordDate                string
	RevenueMainWithMargin     decimal.Decimal
	RevenueMainWithoutMargin  decimal.Decimal
	RevenueOrderWithMargin    decimal.Decimal
	RevenueOrderWithoutMargin decimal.Decimal
	MainStockValue            decimal.Decimal
	OrderStockValue           decimal.Decimal
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// View converts a stored record for display.
func View(r domain.DailyRecord) RecordView {
	return RecordView{
		ID:                        r.ID,
		ShopID:                    r.ShopID,
		RecordDate:                FormatDate(r.RecordDate),
		RevenueMainWithMargin:     money.FromMinor(r.RevenueMainWithMargin),
		RevenueMainWithoutMargin:  money.FromMinor(r.RevenueMainWithoutMargin),
		RevenueOrderWithMargin:    money.FromMinor(r.RevenueOrderWithMargin),
		RevenueOrderWithoutMargin: money.FromMinor(r.RevenueOrderWithoutMargin),
		MainStockValue:            money.FromMinor(r.MainStockValue),
		OrderStockValue:           money.FromMinor(r.OrderStockValue),
		CreatedAt:                 r.CreatedAt,
		UpdatedAt:                 r.UpdatedAt,
	}
}

func views(records []domain.DailyRecord) []RecordView {
	out := make([]RecordView, 0, len(records))
	for _, r := range records {
		out = append(out, View(r))
	}
	return out
}

func (s Service) Create(ctx context.Context, p domain.Principal, in CreateInput) (view RecordView, err error) {
	defer func() { metrics.ObserveLedger("create", err) }()

	shopID, err := authz.CreateTarget(p, strings.TrimSpace(in.ShopID))
	if err != nil {
		return RecordView{}, err
	}
	if err := s.ensureShop(ctx, shopID); err != nil {
		return RecordView{}, err
	}
	date, err := ParseDate(in.RecordDate)
	if err != nil {
		return RecordView{}, err
	}
	if _, err := s.Records.FindRecordBySlot(ctx, shopID, date); err == nil {
		return RecordView{}, fmt.Errorf("%w: shop %s on %s", domain.ErrDuplicateRecord, shopID, FormatDate(date))
	} else if !errors.Is(err, domain.ErrNotFound) {
		return RecordView{}, domain.WrapStorage("find record by slot", err)
	}

	now := s.now()
	rec := domain.DailyRecord{
		ID:         uuid.NewString(),
		ShopID:     shopID,
		RecordDate: date,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := in.Amounts.apply(&rec, false); err != nil {
		return RecordView{}, err
	}
	if err := s.Records.InsertRecord(ctx, &rec); err != nil {
		if errors.Is(err, domain.ErrDuplicateRecord) {
			return RecordView{}, fmt.Errorf("%w: shop %s on %s", domain.ErrDuplicateRecord, shopID, FormatDate(date))
		}
		s.log().Error("insert daily record failed", "shop_id", shopID, "date", date, "err", err)
		return RecordView{}, domain.WrapStorage("insert record", err)
	}
	s.log().Info("daily record created", "id", rec.ID, "shop_id", shopID, "date", date, "by", p.ID)
	return View(rec), nil
}

func (s Service) GetByID(ctx context.Context, p domain.Principal, id string) (view RecordView, err error) {
	defer func() { metrics.ObserveLedger("get", err) }()

	rec, err := s.load(ctx, p, authz.ActionReadOne, id)
	if err != nil {
		return RecordView{}, err
	}
	return View(*rec), nil
}

// RangeRecords returns the records with a date in [from, to], oldest first, in cents.
// Shops only ever see their own records; a CEO may narrow to one shop or see all.
func (s Service) RangeRecords(ctx context.Context, p domain.Principal, from, to, shopID string) ([]domain.DailyRecord, error) {
	if !p.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return nil, fmt.Errorf("%w: fromDate and toDate are required", domain.ErrInvalidRange)
	}
	filter, err := authz.ListFilter(p, strings.TrimSpace(shopID))
	if err != nil {
		return nil, err
	}
	if filter != "" {
		if err := s.ensureShop(ctx, filter); err != nil {
			return nil, err
		}
	}
	fromDate, err := ParseDate(from)
	if err != nil {
		return nil, err
	}
	toDate, err := ParseDate(to)
	if err != nil {
		return nil, err
	}
	if fromDate > toDate {
		return nil, fmt.Errorf("%w: %s is after %s", domain.ErrInvalidRange, from, to)
	}

	records, err := s.Records.ListRecords(ctx, domain.RecordFilter{
		ShopID: filter,
		From:   fromDate,
		To:     toDate,
		Order:  domain.OrderByDate,
	})
	if err != nil {
		return nil, domain.WrapStorage("list records", err)
	}
	if err := ensureVisible(p, filter, records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s Service) ListByDateRange(ctx context.Context, p domain.Principal, from, to, shopID string) (out []RecordView, err error) {
	defer func() { metrics.ObserveLedger("list_range", err) }()

	records, err := s.RangeRecords(ctx, p, from, to, shopID)
	if err != nil {
		return nil, err
	}
	return views(records), nil
}

// ListAll returns every record a CEO asks for in creation order, or one shop's records by date.
func (s Service) ListAll(ctx context.Context, p domain.Principal, shopID string) (out []RecordView, err error) {
	defer func() { metrics.ObserveLedger("list_all", err) }()

	filter, err := authz.ListFilter(p, strings.TrimSpace(shopID))
	if err != nil {
		return nil, err
	}
	f := domain.RecordFilter{Order: domain.OrderByCreated}
	if filter != "" {
		if err := s.ensureShop(ctx, filter); err != nil {
			return nil, err
		}
		f = domain.RecordFilter{ShopID: filter, Order: domain.OrderByDate}
	}
	records, err := s.Records.ListRecords(ctx, f)
	if err != nil {
		return nil, domain.WrapStorage("list records", err)
	}
	if err := ensureVisible(p, filter, records); err != nil {
		return nil, err
	}
	return views(records), nil
}

func (s Service) UpdateByID(ctx context.Context, p domain.Principal, id string, patch Patch) (view RecordView, err error) {
	defer func() { metrics.ObserveLedger("update", err) }()

	rec, err := s.load(ctx, p, authz.ActionUpdate, id)
	if err != nil {
		return RecordView{}, err
	}
	if err := patch.Amounts.apply(rec, true); err != nil {
		return RecordView{}, err
	}
	if patch.RecordDate != nil {
		date, err := ParseDate(*patch.RecordDate)
		if err != nil {
			return RecordView{}, err
		}
		if date != rec.RecordDate {
			other, err := s.Records.FindRecordBySlot(ctx, rec.ShopID, date)
			switch {
			case err == nil && other.ID != rec.ID:
				return RecordView{}, fmt.Errorf("%w: shop %s on %s", domain.ErrDuplicateRecord, rec.ShopID, FormatDate(date))
			case err != nil && !errors.Is(err, domain.ErrNotFound):
				return RecordView{}, domain.WrapStorage("find record by slot", err)
			}
			rec.RecordDate = date
		}
	}
	rec.UpdatedAt = s.now()

	if err := s.Records.SaveRecord(ctx, rec); err != nil {
		if errors.Is(err, domain.ErrDuplicateRecord) || errors.Is(err, domain.ErrNotFound) {
			return RecordView{}, err
		}
		s.log().Error("save daily record failed", "id", id, "err", err)
		return RecordView{}, domain.WrapStorage("save record", err)
	}
	s.log().Info("daily record updated", "id", rec.ID, "shop_id", rec.ShopID, "by", p.ID)
	return View(*rec), nil
}

func (s Service) DeleteByID(ctx context.Context, p domain.Principal, id string) (err error) {
	defer func() { metrics.ObserveLedger("delete", err) }()

	rec, err := s.load(ctx, p, authz.ActionDelete, id)
	if err != nil {
		return err
	}
	if err := s.Records.DeleteRecord(ctx, rec.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		s.log().Error("delete daily record failed", "id", id, "err", err)
		return domain.WrapStorage("delete record", err)
	}
	s.log().Info("daily record deleted", "id", rec.ID, "shop_id", rec.ShopID, "by", p.ID)
	return nil
}

// load fetches a record by id and checks action against the shop that owns the loaded row.
func (s Service) load(ctx context.Context, p domain.Principal, action authz.Action, id string) (*domain.DailyRecord, error) {
	if !p.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	rec, err := s.Records.FindRecord(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("daily record %s: %w", id, domain.ErrNotFound)
		}
		return nil, domain.WrapStorage("find record", err)
	}
	if err := authz.Authorize(p, action, rec.ShopID); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s Service) ensureShop(ctx context.Context, shopID string) error {
	if _, err := s.Shops.GetShop(ctx, shopID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("shop %s: %w", shopID, domain.ErrNotFound)
		}
		return domain.WrapStorage("get shop", err)
	}
	return nil
}

// ensureVisible re-checks every loaded row against the filter and the read policy, since the
// store query and the ownership rule are evaluated independently.
func ensureVisible(p domain.Principal, filter string, records []domain.DailyRecord) error {
	for _, r := range records {
		if filter != "" && r.ShopID != filter {
			return fmt.Errorf("%w: record %s outside requested shop", domain.ErrForbidden, r.ID)
		}
		if err := authz.Authorize(p, authz.ActionReadOne, r.ShopID); err != nil {
			return err
		}
	}
	return nil
}

func (a Amounts) apply(r *domain.DailyRecord, partial bool) error {
	fields := []struct {
		name string
		in   money.Amount
		dst  *int64
	}{
		{"revenueMainWithMargin", a.RevenueMainWithMargin, &r.RevenueMainWithMargin},
		{"revenueMainWithoutMargin", a.RevenueMainWithoutMargin, &r.RevenueMainWithoutMargin},
		{"revenueOrderWithMargin", a.RevenueOrderWithMargin, &r.RevenueOrderWithMargin},
		{"revenueOrderWithoutMargin", a.RevenueOrderWithoutMargin, &r.RevenueOrderWithoutMargin},
		{"mainStockValue", a.MainStockValue, &r.MainStockValue},
		{"orderStockValue", a.OrderStockValue, &r.OrderStockValue},
	}
	// convert everything first so a bad field leaves r untouched
	cents := make([]int64, len(fields))
	for i, f := range fields {
		if partial && !f.in.Set {
			continue
		}
		c, err := f.in.Minor()
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		cents[i] = c
	}
	for i, f := range fields {
		if partial && !f.in.Set {
			continue
		}
		*f.dst = cents[i]
	}
	return nil
}

func (s Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s Service) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}
