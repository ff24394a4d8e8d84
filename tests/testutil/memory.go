package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/pricing-service/internal/app/price/contracts"
	"github.com/light-bringer/pricing-service/internal/app/price/domain"
	"github.com/light-bringer/pricing-service/internal/app/price/repo"
	"github.com/light-bringer/pricing-service/internal/pkg/clock"
	"github.com/light-bringer/pricing-service/internal/pkg/committer"
)

// MemoryStore is an in-memory stand-in for the Spanner tables the price use
// cases touch. Mutation builders record the write they describe and the
// Runner applies the recorded writes only when the transaction body
// succeeds, so use cases can be tested without an emulator.
type MemoryStore struct {
	mu        sync.Mutex
	clock     clock.Clock
	intervals map[string][]*domain.PriceInterval
	versions  map[string]int64
	products  map[string]*domain.ProductInfo
	logs      []domain.ChangeLogEntry
	events    []*contracts.OutboxEvent
	pending   []func()

	// Commits counts successful read-write transactions that wrote something.
	Commits int
	// FailCommit, when set, is returned by the next read-write transaction
	// after its body ran.
	FailCommit error
}

// NewMemoryStore creates an empty store whose commit timestamps come from clk.
func NewMemoryStore(clk clock.Clock) *MemoryStore {
	return &MemoryStore{
		clock:     clk,
		intervals: make(map[string][]*domain.PriceInterval),
		versions:  make(map[string]int64),
		products:  make(map[string]*domain.ProductInfo),
	}
}

func scopeKey(scope domain.Scope) string {
	return scope.ProductID() + "|" + scope.Key()
}

// PutProduct stores or replaces a product.
func (s *MemoryStore) PutProduct(id string, status domain.ProductStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[id] = &domain.ProductInfo{ProductID: id, Name: "Product " + id, Status: status}
}

// PutIntervals replaces the stored timeline of scope.
func (s *MemoryStore) PutIntervals(scope domain.Scope, intervals ...*domain.PriceInterval) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*domain.PriceInterval, 0, len(intervals))
	for _, iv := range intervals {
		list = append(list, iv.Copy())
	}
	s.intervals[scopeKey(scope)] = list
}

// Timeline returns the committed timeline of scope.
func (s *MemoryStore) Timeline(scope domain.Scope) *domain.Timeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.NewTimeline(scope, s.intervals[scopeKey(scope)])
}

// Version returns the committed version of scope.
func (s *MemoryStore) Version(scope domain.Scope) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versions[scopeKey(scope)]
}

// ChangeLogs returns every committed audit row in insertion order.
func (s *MemoryStore) ChangeLogs() []domain.ChangeLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ChangeLogEntry(nil), s.logs...)
}

// Events returns every committed outbox event in insertion order.
func (s *MemoryStore) Events() []*contracts.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*contracts.OutboxEvent(nil), s.events...)
}

func (s *MemoryStore) record(op func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, op)
}

// Intervals returns the store as a PriceIntervalRepository.
func (s *MemoryStore) Intervals() contracts.PriceIntervalRepository {
	return &memIntervals{s: s, mut: repo.NewPriceIntervalRepo()}
}

// Changes returns the store as a ChangeLogRepository.
func (s *MemoryStore) Changes() contracts.ChangeLogRepository {
	return &memChanges{s: s, mut: repo.NewChangeLogRepo()}
}

// Scopes returns the store as a ScopeLockRepository.
func (s *MemoryStore) Scopes() contracts.ScopeLockRepository {
	return &memScopes{s: s, mut: repo.NewScopeLockRepo()}
}

// Products returns the store as a ProductLookup.
func (s *MemoryStore) Products() contracts.ProductLookup {
	return &memProducts{s: s}
}

// Outbox returns the store as an OutboxRepository.
func (s *MemoryStore) Outbox() contracts.OutboxRepository {
	return &memOutbox{s: s, mut: repo.NewOutboxRepo()}
}

// ReadModel returns the store as a ReadModel.
func (s *MemoryStore) ReadModel() contracts.ReadModel {
	return &memReadModel{s: s}
}

// Runner returns the store as a TxRunner.
func (s *MemoryStore) Runner() contracts.TxRunner {
	return &memRunner{s: s}
}

type memRunner struct {
	s *MemoryStore
}

func (r *memRunner) RunReadWrite(ctx context.Context, fn committer.TxnFunc) (time.Time, error) {
	r.s.mu.Lock()
	r.s.pending = nil
	r.s.mu.Unlock()

	plan, err := fn(ctx, nil)

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ops := r.s.pending
	r.s.pending = nil
	if err == nil && r.s.FailCommit != nil {
		err, r.s.FailCommit = r.s.FailCommit, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("transaction failed: %w", err)
	}
	if plan.IsEmpty() {
		return r.s.clock.Now(), nil
	}
	for _, op := range ops {
		op()
	}
	r.s.Commits++
	return r.s.clock.Now(), nil
}

func (r *memRunner) RunReadOnly(ctx context.Context, fn committer.ReadFunc) error {
	return fn(ctx, nil)
}

type memIntervals struct {
	s   *MemoryStore
	mut contracts.PriceIntervalRepository
}

func (m *memIntervals) LoadTimeline(_ context.Context, _ contracts.Reader, scope domain.Scope, _ bool) (*domain.Timeline, error) {
	return m.s.Timeline(scope), nil
}

func (m *memIntervals) EffectiveAt(_ context.Context, _ contracts.Reader, scope domain.Scope, at time.Time) (*domain.PriceInterval, error) {
	if iv := m.s.Timeline(scope).EffectiveAt(at); iv != nil {
		return iv, nil
	}
	return nil, domain.ErrPriceNotFound
}

func (m *memIntervals) InsertMut(interval *domain.PriceInterval) (*spanner.Mutation, error) {
	mut, err := m.mut.InsertMut(interval)
	if err != nil {
		return nil, err
	}
	cp := interval.Copy()
	key := scopeKey(interval.Scope)
	m.s.record(func() { m.s.intervals[key] = append(m.s.intervals[key], cp) })
	return mut, nil
}

func (m *memIntervals) SetEffectiveToMut(scope domain.Scope, priceID string, effectiveTo *time.Time) *spanner.Mutation {
	key := scopeKey(scope)
	var to *time.Time
	if effectiveTo != nil {
		v := *effectiveTo
		to = &v
	}
	m.s.record(func() {
		for _, iv := range m.s.intervals[key] {
			if iv.ID == priceID {
				iv.EffectiveTo = to
			}
		}
	})
	return m.mut.SetEffectiveToMut(scope, priceID, effectiveTo)
}

func (m *memIntervals) DeleteMut(scope domain.Scope, priceID string) *spanner.Mutation {
	key := scopeKey(scope)
	m.s.record(func() {
		kept := m.s.intervals[key][:0]
		for _, iv := range m.s.intervals[key] {
			if iv.ID != priceID {
				kept = append(kept, iv)
			}
		}
		m.s.intervals[key] = kept
	})
	return m.mut.DeleteMut(scope, priceID)
}

type memChanges struct {
	s   *MemoryStore
	mut contracts.ChangeLogRepository
}

func (m *memChanges) InsertMut(entry *domain.ChangeLogEntry) (*spanner.Mutation, error) {
	mut, err := m.mut.InsertMut(entry)
	if err != nil {
		return nil, err
	}
	cp := *entry
	m.s.record(func() { m.s.logs = append(m.s.logs, cp) })
	return mut, nil
}

func (m *memChanges) ListByProduct(_ context.Context, _ contracts.Reader, productID string, limit int) ([]domain.ChangeLogEntry, error) {
	var out []domain.ChangeLogEntry
	for _, e := range m.s.ChangeLogs() {
		if e.Scope.ProductID() == productID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ChangedAt.Equal(out[j].ChangedAt) {
			return out[i].ChangedAt.After(out[j].ChangedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memScopes struct {
	s   *MemoryStore
	mut contracts.ScopeLockRepository
}

func (m *memScopes) Version(_ context.Context, _ contracts.Reader, scope domain.Scope) (int64, error) {
	return m.s.Version(scope), nil
}

func (m *memScopes) BumpMut(scope domain.Scope, current int64) *spanner.Mutation {
	key := scopeKey(scope)
	m.s.record(func() { m.s.versions[key] = current + 1 })
	return m.mut.BumpMut(scope, current)
}

type memProducts struct {
	s *MemoryStore
}

func (m *memProducts) GetProduct(_ context.Context, _ contracts.Reader, productID string) (*domain.ProductInfo, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[productID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

type memOutbox struct {
	s   *MemoryStore
	mut contracts.OutboxRepository
}

func (m *memOutbox) InsertMut(event *contracts.OutboxEvent) *spanner.Mutation {
	cp := *event
	m.s.record(func() { m.s.events = append(m.s.events, &cp) })
	return m.mut.InsertMut(event)
}

func (m *memOutbox) EnrichEvent(event domain.DomainEvent, payload string) *contracts.OutboxEvent {
	return m.mut.EnrichEvent(event, payload)
}

type memReadModel struct {
	s *MemoryStore
}

func (m *memReadModel) EffectivePrice(ctx context.Context, scope domain.Scope, at time.Time) (*domain.PriceInterval, error) {
	return (&memIntervals{s: m.s}).EffectiveAt(ctx, nil, scope, at)
}

func (m *memReadModel) Timeline(_ context.Context, scope domain.Scope) (*domain.Timeline, error) {
	return m.s.Timeline(scope), nil
}

func (m *memReadModel) ChangeLog(ctx context.Context, productID string, limit int) ([]domain.ChangeLogEntry, error) {
	return (&memChanges{s: m.s}).ListByProduct(ctx, nil, productID, limit)
}
