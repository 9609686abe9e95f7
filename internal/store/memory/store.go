// Package memory is an in-process store for development and tests. Uniqueness of shop email and
// of the (shop, date) slot is enforced under the same lock as the write.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"shopledger-backend/internal/domain"
)

type Store struct {
	mu sync.RWMutex

	shops   map[string]domain.Shop
	records map[string]domain.DailyRecord
	slots   map[string]string // shopID|date -> record id
	seq     map[string]int64  // record id -> insertion order
	next    int64
}

func New() *Store {
	return &Store{
		shops:   make(map[string]domain.Shop),
		records: make(map[string]domain.DailyRecord),
		slots:   make(map[string]string),
		seq:     make(map[string]int64),
	}
}

func slotKey(shopID string, date domain.Date) string {
	return shopID + "|" + string(date)
}

func (s *Store) Health(context.Context) error { return nil }

func (s *Store) Close() {}

// Shop methods

func (s *Store) GetShop(_ context.Context, id string) (*domain.Shop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shops[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &sh, nil
}

func (s *Store) GetShopByEmail(_ context.Context, email string) (*domain.Shop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sh := range s.shops {
		if strings.EqualFold(sh.Email, email) {
			return &sh, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) GetShopByName(_ context.Context, name string) (*domain.Shop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sh := range s.shops {
		if sh.Name == name {
			return &sh, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) ListShops(context.Context) ([]domain.Shop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Shop, 0, len(s.shops))
	for _, sh := range s.shops {
		out = append(out, sh)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) CreateShop(_ context.Context, sh *domain.Shop) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shops[sh.ID]; ok {
		return fmt.Errorf("shop %s already exists", sh.ID)
	}
	if s.emailTaken(sh.Email, "") {
		return domain.ErrDuplicateEmail
	}
	s.shops[sh.ID] = *sh
	return nil
}

func (s *Store) SaveShop(_ context.Context, sh *domain.Shop) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shops[sh.ID]; !ok {
		return domain.ErrNotFound
	}
	if s.emailTaken(sh.Email, sh.ID) {
		return domain.ErrDuplicateEmail
	}
	s.shops[sh.ID] = *sh
	return nil
}

func (s *Store) DeleteShop(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shops[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.shops, id)
	for rid, r := range s.records {
		if r.ShopID == id {
			s.dropRecord(rid)
		}
	}
	return nil
}

func (s *Store) emailTaken(email, exceptID string) bool {
	for id, sh := range s.shops {
		if id != exceptID && strings.EqualFold(sh.Email, email) {
			return true
		}
	}
	return false
}

// Record methods

func (s *Store) FindRecord(_ context.Context, id string) (*domain.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (s *Store) FindRecordBySlot(_ context.Context, shopID string, date domain.Date) (*domain.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.slots[slotKey(shopID, date)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	r := s.records[id]
	return &r, nil
}

func (s *Store) ListRecords(_ context.Context, f domain.RecordFilter) ([]domain.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.DailyRecord, 0)
	for _, r := range s.records {
		if f.ShopID != "" && r.ShopID != f.ShopID {
			continue
		}
		if f.From != "" && r.RecordDate < f.From {
			continue
		}
		if f.To != "" && r.RecordDate > f.To {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if f.Order == domain.OrderByDate && a.RecordDate != b.RecordDate {
			return a.RecordDate < b.RecordDate
		}
		return s.seq[a.ID] < s.seq[b.ID]
	})
	return out, nil
}

func (s *Store) InsertRecord(_ context.Context, r *domain.DailyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := slotKey(r.ShopID, r.RecordDate)
	if _, ok := s.slots[key]; ok {
		return domain.ErrDuplicateRecord
	}
	if _, ok := s.records[r.ID]; ok {
		return domain.ErrDuplicateRecord
	}
	s.next++
	s.records[r.ID] = *r
	s.slots[key] = r.ID
	s.seq[r.ID] = s.next
	return nil
}

func (s *Store) SaveRecord(_ context.Context, r *domain.DailyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.records[r.ID]
	if !ok {
		return domain.ErrNotFound
	}
	key := slotKey(r.ShopID, r.RecordDate)
	if id, taken := s.slots[key]; taken && id != r.ID {
		return domain.ErrDuplicateRecord
	}
	delete(s.slots, slotKey(old.ShopID, old.RecordDate))
	s.records[r.ID] = *r
	s.slots[key] = r.ID
	return nil
}

func (s *Store) DeleteRecord(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return domain.ErrNotFound
	}
	s.dropRecord(id)
	return nil
}

func (s *Store) dropRecord(id string) {
	r := s.records[id]
	delete(s.slots, slotKey(r.ShopID, r.RecordDate))
	delete(s.records, id)
	delete(s.seq, id)
}
