package matching

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fadilmartias/talent-match/internal/apperror"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Provider turns normalized text into a fixed-length vector.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// Record is the stored embedding of one entity.
type Record struct {
	Key         Key
	Fingerprint string
	Model       string
	Vector      []float32
	ComputedAt  time.Time
}

// RecordRepository persists at most one Record per Key. Find returns nil, nil
// when no record exists. Upsert must replace the record atomically.
type RecordRepository interface {
	Find(ctx context.Context, key Key) (*Record, error)
	Upsert(ctx context.Context, rec Record) error
	Delete(ctx context.Context, key Key) error
}

type StoreStats struct {
	Hits          int64 `json:"hits"`
	Refreshes     int64 `json:"refreshes"`
	ProviderCalls int64 `json:"provider_calls"`
	Failures      int64 `json:"failures"`
	StaleServed   int64 `json:"stale_served"`
}

// Store keeps embeddings current with respect to entity fingerprints.
type Store struct {
	repo     RecordRepository
	provider Provider
	logger   *zap.Logger

	group          singleflight.Group
	refreshTimeout time.Duration
	now            func() time.Time

	hits          atomic.Int64
	refreshes     atomic.Int64
	providerCalls atomic.Int64
	failures      atomic.Int64
	staleServed   atomic.Int64
}

type StoreOption func(*Store)

// WithRefreshTimeout bounds a single provider call plus the write that follows it.
func WithRefreshTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.refreshTimeout = d
		}
	}
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(repo RecordRepository, provider Provider, logger *zap.Logger, opts ...StoreOption) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		repo:           repo,
		provider:       provider,
		logger:         logger.Named("embedding_store"),
		refreshTimeout: 30 * time.Second,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrRefresh returns the entity's current embedding, calling the provider
// only when the stored fingerprint is missing or stale.
//
// Concurrent refreshes of the same content share one provider call. The
// refresh itself is detached from ctx: if the caller goes away the write still
// lands and benefits the next request.
func (s *Store) GetOrRefresh(ctx context.Context, e Entity) ([]float32, error) {
	key := e.MatchKey()
	text := Normalize(e)
	if text == "" {
		return nil, apperror.Newf(apperror.KindInvalidArgument, "%s has no matchable text", key)
	}
	fp := fingerprintText(text)

	rec, err := s.repo.Find(ctx, key)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindMatchingUnavailable, err, "load embedding "+key.String())
	}
	if s.current(rec, fp) {
		s.hits.Add(1)
		return rec.Vector, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key.String()+"/"+s.provider.Model()+"/"+fp, func() (any, error) {
		return s.refresh(detached, key, text, fp)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]float32), nil
	case <-ctx.Done():
		return nil, apperror.Wrap(apperror.KindMatchingUnavailable, ctx.Err(), "embedding "+key.String()+" abandoned")
	}
}

func (s *Store) refresh(ctx context.Context, key Key, text, fp string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, s.refreshTimeout)
	defer cancel()

	// Another flight for the same content may have finished between our
	// lookup and this one starting.
	if rec, err := s.repo.Find(ctx, key); err == nil && s.current(rec, fp) {
		s.hits.Add(1)
		return rec.Vector, nil
	}

	s.providerCalls.Add(1)
	vec, err := s.provider.Embed(ctx, text)
	if err != nil {
		s.failures.Add(1)
		if apperror.Is(err, apperror.KindProviderAuth) {
			return nil, err
		}
		return nil, apperror.Wrap(apperror.KindMatchingUnavailable, err, fmt.Sprintf("embed %s", key))
	}

	rec := Record{
		Key:         key,
		Fingerprint: fp,
		Model:       s.provider.Model(),
		Vector:      vec,
		ComputedAt:  s.now().UTC(),
	}
	if err := s.repo.Upsert(ctx, rec); err != nil {
		// The vector is still correct for this request; the next one retries the write.
		s.logger.Warn("persisting embedding failed", zap.String("entity", key.String()), zap.Error(err))
		return vec, nil
	}
	s.refreshes.Add(1)
	s.logger.Debug("embedding refreshed", zap.String("entity", key.String()), zap.String("fingerprint", fp[:12]))
	return vec, nil
}

// current reports whether rec was computed from the same content by the
// provider's current model.
func (s *Store) current(rec *Record, fp string) bool {
	return rec != nil && rec.Fingerprint == fp && rec.Model == s.provider.Model() && len(rec.Vector) > 0
}

// Resolve behaves like GetOrRefresh, except that when the refresh fails as
// MatchingUnavailable and an older embedding exists, that embedding is
// returned with stale set. Embeddings from another model are never served.
func (s *Store) Resolve(ctx context.Context, e Entity) (vec []float32, stale bool, err error) {
	vec, err = s.GetOrRefresh(ctx, e)
	if err == nil || !apperror.Is(err, apperror.KindMatchingUnavailable) {
		return vec, false, err
	}
	rec, ferr := s.repo.Find(context.WithoutCancel(ctx), e.MatchKey())
	if ferr != nil || rec == nil || len(rec.Vector) == 0 || rec.Model != s.provider.Model() {
		return nil, false, err
	}
	s.staleServed.Add(1)
	s.logger.Warn("serving stale embedding", zap.String("entity", e.MatchKey().String()), zap.Error(err))
	return rec.Vector, true, nil
}

// Invalidate drops the stored embedding, used when the entity is deleted.
func (s *Store) Invalidate(ctx context.Context, key Key) error {
	return s.repo.Delete(ctx, key)
}

func (s *Store) Stats() StoreStats {
	return StoreStats{
		Hits:          s.hits.Load(),
		Refreshes:     s.refreshes.Load(),
		ProviderCalls: s.providerCalls.Load(),
		Failures:      s.failures.Load(),
		StaleServed:   s.staleServed.Load(),
	}
}
