package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"shopledger-backend/internal/domain"
)

func TestInsertRecordEnforcesSlotUnderConcurrency(t *testing.T) {
	s := New()
	ctx := context.Background()

	const workers = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.InsertRecord(ctx, &domain.DailyRecord{
				ID:         fmt.Sprintf("rec-%d", i),
				ShopID:     "shop-a",
				RecordDate: "2025-09-26",
			})
			if err == nil {
				mu.Lock()
				inserted++
				mu.Unlock()
				return
			}
			if !errors.Is(err, domain.ErrDuplicateRecord) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if inserted != 1 {
		t.Fatalf("inserted %d records for one slot, want 1", inserted)
	}
}

func TestSaveRecordMovesSlot(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := domain.DailyRecord{ID: "a", ShopID: "shop", RecordDate: "2025-01-01"}
	b := domain.DailyRecord{ID: "b", ShopID: "shop", RecordDate: "2025-01-02"}
	for _, r := range []*domain.DailyRecord{&a, &b} {
		if err := s.InsertRecord(ctx, r); err != nil {
			t.Fatalf("insert %s: %v", r.ID, err)
		}
	}

	moved := a
	moved.RecordDate = "2025-01-02"
	if err := s.SaveRecord(ctx, &moved); !errors.Is(err, domain.ErrDuplicateRecord) {
		t.Fatalf("expected ErrDuplicateRecord, got %v", err)
	}

	moved.RecordDate = "2025-01-03"
	if err := s.SaveRecord(ctx, &moved); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := s.FindRecordBySlot(ctx, "shop", "2025-01-01"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("old slot should be free, got %v", err)
	}
	if got, err := s.FindRecordBySlot(ctx, "shop", "2025-01-03"); err != nil || got.ID != "a" {
		t.Fatalf("new slot = %v, %v", got, err)
	}
}

func TestListRecordsOrdering(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, r := range []domain.DailyRecord{
		{ID: "1", ShopID: "x", RecordDate: "2025-03-02"},
		{ID: "2", ShopID: "y", RecordDate: "2025-03-01"},
		{ID: "3", ShopID: "x", RecordDate: "2025-02-28"},
	} {
		r := r
		if err := s.InsertRecord(ctx, &r); err != nil {
			t.Fatal(err)
		}
	}

	byDate, _ := s.ListRecords(ctx, domain.RecordFilter{Order: domain.OrderByDate})
	if ids := idsOf(byDate); ids != "3,2,1" {
		t.Fatalf("by date = %s", ids)
	}
	byCreated, _ := s.ListRecords(ctx, domain.RecordFilter{Order: domain.OrderByCreated})
	if ids := idsOf(byCreated); ids != "1,2,3" {
		t.Fatalf("by created = %s", ids)
	}
	ranged, _ := s.ListRecords(ctx, domain.RecordFilter{ShopID: "x", From: "2025-03-01", To: "2025-03-31"})
	if ids := idsOf(ranged); ids != "1" {
		t.Fatalf("ranged = %s", ids)
	}
}

func TestDeleteShopCascades(t *testing.T) {
	s := New()
	ctx := context.Background()
	if err := s.CreateShop(ctx, &domain.Shop{ID: "x", Email: "x@example.com", Role: domain.RoleShop}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateShop(ctx, &domain.Shop{ID: "y", Email: "X@example.com", Role: domain.RoleShop}); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if err := s.InsertRecord(ctx, &domain.DailyRecord{ID: "r", ShopID: "x", RecordDate: "2025-01-01"}); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteShop(ctx, "x"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.FindRecord(ctx, "r"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("record should be gone, got %v", err)
	}
}

func idsOf(records []domain.DailyRecord) string {
	out := ""
	for i, r := range records {
		if i > 0 {
			out += ","
		}
		out += r.ID
	}
	return out
}
