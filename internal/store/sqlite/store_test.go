package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"shopledger-backend/internal/domain"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func seedShop(t *testing.T, s *Store, id, email string) {
	t.Helper()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	err := s.CreateShop(context.Background(), &domain.Shop{
		ID: id, Name: id, Email: email, PasswordHash: "x", Role: domain.RoleShop,
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateShop(%s): %v", id, err)
	}
}

func record(id, shopID string, date domain.Date, revenue int64) *domain.DailyRecord {
	return &domain.DailyRecord{
		ID: id, ShopID: shopID, RecordDate: date,
		RevenueMainWithMargin: revenue, MainStockValue: 100,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
}

func TestShopRoundTripAndUniqueEmail(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	seedShop(t, s, "a", "a@example.com")

	got, err := s.GetShopByEmail(ctx, "A@Example.com")
	if err != nil {
		t.Fatalf("GetShopByEmail: %v", err)
	}
	if got.ID != "a" || got.Role != domain.RoleShop || got.TimerOfDay != nil {
		t.Fatalf("shop = %+v", got)
	}

	err = s.CreateShop(ctx, &domain.Shop{ID: "b", Name: "b", Email: "a@EXAMPLE.com", PasswordHash: "x", Role: domain.RoleShop})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("duplicate email err = %v", err)
	}

	timer := "21:30"
	got.TimerOfDay = &timer
	if err := s.SaveShop(ctx, got); err != nil {
		t.Fatalf("SaveShop: %v", err)
	}
	got, _ = s.GetShop(ctx, "a")
	if got.TimerOfDay == nil || *got.TimerOfDay != "21:30" {
		t.Fatalf("timer = %v", got.TimerOfDay)
	}

	if _, err := s.GetShop(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing shop err = %v", err)
	}
}

func TestRecordSlotIsUnique(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	seedShop(t, s, "a", "a@example.com")

	if err := s.InsertRecord(ctx, record("r1", "a", "2025-09-26", 100)); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	if err := s.InsertRecord(ctx, record("r2", "a", "2025-09-26", 200)); !errors.Is(err, domain.ErrDuplicateRecord) {
		t.Fatalf("duplicate slot err = %v", err)
	}

	if err := s.InsertRecord(ctx, record("r3", "a", "2025-09-27", 300)); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	moved := record("r3", "a", "2025-09-26", 300)
	if err := s.SaveRecord(ctx, moved); !errors.Is(err, domain.ErrDuplicateRecord) {
		t.Fatalf("save into occupied slot err = %v", err)
	}

	got, err := s.FindRecordBySlot(ctx, "a", "2025-09-26")
	if err != nil || got.ID != "r1" || got.RevenueMainWithMargin != 100 {
		t.Fatalf("slot holds %+v, err %v", got, err)
	}
}

func TestListRecordsFiltersAndOrders(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	seedShop(t, s, "a", "a@example.com")
	seedShop(t, s, "b", "b@example.com")

	for _, r := range []*domain.DailyRecord{
		record("r1", "a", "2025-03-03", 1),
		record("r2", "b", "2025-03-01", 2),
		record("r3", "a", "2025-03-01", 3),
		record("r4", "a", "2025-04-01", 4),
	} {
		if err := s.InsertRecord(ctx, r); err != nil {
			t.Fatalf("InsertRecord(%s): %v", r.ID, err)
		}
	}

	tests := []struct {
		name   string
		filter domain.RecordFilter
		want   []string
	}{
		{"shop by date", domain.RecordFilter{ShopID: "a", Order: domain.OrderByDate}, []string{"r3", "r1", "r4"}},
		{"range", domain.RecordFilter{From: "2025-03-01", To: "2025-03-31", Order: domain.OrderByDate}, []string{"r2", "r3", "r1"}},
		{"inserted order", domain.RecordFilter{Order: domain.OrderByCreated}, []string{"r1", "r2", "r3", "r4"}},
		{"empty range", domain.RecordFilter{From: "2026-01-01", To: "2026-01-31"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListRecords(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListRecords: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d records, want %d", len(got), len(tt.want))
			}
			for i, r := range got {
				if r.ID != tt.want[i] {
					t.Fatalf("position %d = %s, want %s", i, r.ID, tt.want[i])
				}
			}
		})
	}
}

func TestDeleteShopCascades(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	seedShop(t, s, "a", "a@example.com")
	if err := s.InsertRecord(ctx, record("r1", "a", "2025-03-03", 1)); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}

	if err := s.DeleteShop(ctx, "a"); err != nil {
		t.Fatalf("DeleteShop: %v", err)
	}
	if _, err := s.FindRecord(ctx, "r1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("record after cascade err = %v", err)
	}
	if err := s.DeleteRecord(ctx, "r1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}
