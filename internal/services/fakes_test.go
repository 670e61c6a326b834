package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/testify-backend/internal/domain"
)

var errBoom = errors.New("boom")

var (
	txDBOnce sync.Once
	txDB     *gorm.DB
)

// testTxDB returns an empty in-memory SQLite handle. The in-memory repos
// ignore it; services only need it to open transactions.
func testTxDB() *gorm.DB {
	txDBOnce.Do(func() {
		db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			panic(err)
		}
		txDB = db
	})
	return txDB
}

// memStore is an in-memory implementation of the repository contracts used
// by the services. Operation counters let tests assert that no store call
// was issued.
type memStore struct {
	mu       sync.Mutex
	rows     map[string]domain.Testimonial
	accounts map[string]domain.Account
	idem     map[string]domain.Idempotency

	creates, gets, updates, deletes, lists int

	failCreate, failGet, failUpdate, failDelete, failList, failStats, failAccounts error
}

func newMemStore() *memStore {
	return &memStore{
		rows:     map[string]domain.Testimonial{},
		accounts: map[string]domain.Account{},
		idem:     map[string]domain.Idempotency{},
	}
}

func (m *memStore) CreateTestimonial(_ context.Context, _ *gorm.DB, t *domain.Testimonial) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.failCreate != nil {
		return m.failCreate
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		// Strictly increasing so ordering is deterministic.
		t.CreatedAt = now.Add(time.Duration(len(m.rows)) * time.Millisecond)
	}
	t.UpdatedAt = t.CreatedAt
	m.rows[t.ID] = *t
	return nil
}

func (m *memStore) GetTestimonial(_ context.Context, _ *gorm.DB, id string) (*domain.Testimonial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.failGet != nil {
		return nil, m.failGet
	}
	t, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (m *memStore) filter(keep func(domain.Testimonial) bool) []domain.Testimonial {
	out := []domain.Testimonial{}
	for _, t := range m.rows {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (m *memStore) ListTestimonialsByOwner(_ context.Context, _ *gorm.DB, ownerID string) ([]domain.Testimonial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	if m.failList != nil {
		return nil, m.failList
	}
	return m.filter(func(t domain.Testimonial) bool { return t.OwnerID == ownerID }), nil
}

func (m *memStore) CountTestimonialsByOwner(ctx context.Context, db *gorm.DB, ownerID string) (int64, error) {
	items, err := m.ListTestimonialsByOwner(ctx, db, ownerID)
	return int64(len(items)), err
}

func (m *memStore) ListTestimonialsByOwnerPage(ctx context.Context, db *gorm.DB, ownerID string, offset, limit int) ([]domain.Testimonial, error) {
	items, err := m.ListTestimonialsByOwner(ctx, db, ownerID)
	if err != nil {
		return nil, err
	}
	if offset >= len(items) {
		return []domain.Testimonial{}, nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end], nil
}

func (m *memStore) ListApprovedByOwner(_ context.Context, _ *gorm.DB, ownerID string) ([]domain.Testimonial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	if m.failList != nil {
		return nil, m.failList
	}
	return m.filter(func(t domain.Testimonial) bool {
		return t.OwnerID == ownerID && t.Status == domain.StatusApproved
	}), nil
}

func (m *memStore) UpdateTestimonialStatus(_ context.Context, _ *gorm.DB, id, ownerID string, status domain.Status) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	if m.failUpdate != nil {
		return time.Time{}, m.failUpdate
	}
	t, ok := m.rows[id]
	if !ok || t.OwnerID != ownerID {
		return time.Time{}, gorm.ErrRecordNotFound
	}
	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	m.rows[id] = t
	return t.UpdatedAt, nil
}

func (m *memStore) DeleteTestimonial(_ context.Context, _ *gorm.DB, id, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if m.failDelete != nil {
		return m.failDelete
	}
	t, ok := m.rows[id]
	if !ok || t.OwnerID != ownerID {
		return gorm.ErrRecordNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memStore) stats(keep func(domain.Testimonial) bool, ownerID string) (n, total int64, latest *time.Time, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failStats != nil {
		return 0, 0, nil, m.failStats
	}
	for _, t := range m.rows {
		if t.OwnerID != ownerID {
			continue
		}
		total++
		if keep(t) {
			n++
		}
		if latest == nil || t.UpdatedAt.After(*latest) {
			u := t.UpdatedAt
			latest = &u
		}
	}
	return n, total, latest, nil
}

func (m *memStore) OwnerStats(_ context.Context, _ *gorm.DB, ownerID string) (int64, *time.Time, error) {
	_, total, latest, err := m.stats(func(domain.Testimonial) bool { return true }, ownerID)
	return total, latest, err
}

func (m *memStore) FeedStats(_ context.Context, _ *gorm.DB, ownerID string) (int64, int64, *time.Time, error) {
	return m.stats(domain.Testimonial.IsPublic, ownerID)
}

func (m *memStore) UpsertAccount(_ context.Context, _ *gorm.DB, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAccounts != nil {
		return m.failAccounts
	}
	if prev, ok := m.accounts[a.ID]; ok {
		a.CreatedAt = prev.CreatedAt
	}
	m.accounts[a.ID] = *a
	return nil
}

func (m *memStore) GetAccount(_ context.Context, _ *gorm.DB, id string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAccounts != nil {
		return nil, m.failAccounts
	}
	a, ok := m.accounts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (m *memStore) AccountExists(_ context.Context, _ *gorm.DB, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAccounts != nil {
		return false, m.failAccounts
	}
	_, ok := m.accounts[id]
	return ok, nil
}

func (m *memStore) GetIdempotency(_ context.Context, _ *gorm.DB, ownerID, key string, now time.Time) (*domain.Idempotency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.idem[ownerID+"|"+key]
	if !ok || !rec.ExpiresAt.After(now) {
		return nil, gorm.ErrRecordNotFound
	}
	return &rec, nil
}

func (m *memStore) CreateIdempotency(_ context.Context, _ *gorm.DB, ownerID, key, testimonialID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if prev, ok := m.idem[ownerID+"|"+key]; ok && prev.ExpiresAt.After(now) {
		return nil, gorm.ErrDuplicatedKey
	}
	rec := domain.Idempotency{
		ID: uuid.NewString(), OwnerID: ownerID, Key: key, TestimonialID: testimonialID,
		Status: status, CreatedAt: now, ExpiresAt: now.Add(ttl),
	}
	m.idem[ownerID+"|"+key] = rec
	return &rec, nil
}

func (m *memStore) count(ownerID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.rows {
		if t.OwnerID == ownerID {
			n++
		}
	}
	return n
}

// memCache is an in-memory FeedCache.
type memCache struct {
	items            map[string][]domain.Testimonial
	gets, sets       int
	failGet, failSet error
}

func newMemCache() *memCache { return &memCache{items: map[string][]domain.Testimonial{}} }

func (c *memCache) GetFeed(_ context.Context, key string) ([]domain.Testimonial, bool, error) {
	c.gets++
	if c.failGet != nil {
		return nil, false, c.failGet
	}
	v, ok := c.items[key]
	return v, ok, nil
}

func (c *memCache) SetFeed(_ context.Context, key string, items []domain.Testimonial) error {
	c.sets++
	if c.failSet != nil {
		return c.failSet
	}
	c.items[key] = items
	return nil
}

func ptrF(f float64) *float64 { return &f }
