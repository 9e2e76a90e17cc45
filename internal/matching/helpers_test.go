package matching

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fadilmartias/talent-match/internal/apperror"
	"github.com/google/uuid"
)

type testEntity struct {
	key       Key
	fields    []string
	createdAt time.Time
}

func (e *testEntity) MatchKey() Key             { return e.key }
func (e *testEntity) MatchFields() []string     { return e.fields }
func (e *testEntity) MatchCreatedAt() time.Time { return e.createdAt }

func newEntity(kind EntityKind, fields ...string) *testEntity {
	return &testEntity{
		key:       Key{ID: uuid.New(), Kind: kind},
		fields:    fields,
		createdAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// stubProvider derives a deterministic vector from the text so equal texts
// embed equally. fail, when set, is returned for texts containing failOn.
type stubProvider struct {
	calls  atomic.Int64
	delay  time.Duration
	failOn string
	fail   error
}

func (p *stubProvider) Model() string { return "stub" }

func (p *stubProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.calls.Add(1)
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.fail != nil && (p.failOn == "" || strings.Contains(text, p.failOn)) {
		return nil, p.fail
	}
	return textVector(text), nil
}

func textVector(text string) []float32 {
	vec := make([]float32, 8)
	for _, w := range strings.Fields(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.ToLower(w)))
		vec[h.Sum32()%8] += 1
	}
	return vec
}

type memRepo struct {
	mu      sync.Mutex
	records map[Key]Record
	findErr error
	upserts int
}

func newMemRepo() *memRepo {
	return &memRepo{records: make(map[Key]Record)}
}

func (r *memRepo) Find(_ context.Context, key Key) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	rec, ok := r.records[key]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *memRepo) Upsert(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.Key] = rec
	r.upserts++
	return nil
}

func (r *memRepo) Delete(_ context.Context, key Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, key)
	return nil
}

func (r *memRepo) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

var errTransient = apperror.New(apperror.KindProvider, "embedding provider unavailable")
