package matching

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/fadilmartias/talent-match/internal/apperror"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ClampLimit maps a caller supplied limit into [1, MaxLimit]; non-positive
// values select DefaultLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// Resolver yields an entity's vector. stale reports a vector computed for
// older content.
type Resolver interface {
	Resolve(ctx context.Context, e Entity) (vec []float32, stale bool, err error)
}

type Ranker struct {
	resolver    Resolver
	logger      *zap.Logger
	concurrency int
	now         func() time.Time
}

func NewRanker(resolver Resolver, logger *zap.Logger, concurrency int) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Ranker{
		resolver:    resolver,
		logger:      logger.Named("ranker"),
		concurrency: concurrency,
		now:         time.Now,
	}
}

type scoredEntity struct {
	entity Entity
	score  int
	stale  bool
}

// Rank scores every pool member against the anchor and returns the best
// limit of them. The pool is expected to hold only eligible entities of the
// opposite kind.
//
// Pool members whose embedding cannot be resolved are left out. A missing
// anchor embedding fails the whole call with MatchingUnavailable.
func (r *Ranker) Rank(ctx context.Context, anchor Entity, pool []Entity, limit int) ([]MatchResult, error) {
	limit = ClampLimit(limit)
	anchorKey := anchor.MatchKey()

	anchorVec, anchorStale, err := r.resolver.Resolve(ctx, anchor)
	if err != nil {
		if apperror.Is(err, apperror.KindProviderAuth) {
			return nil, err
		}
		return nil, apperror.Wrap(apperror.KindMatchingUnavailable, err, "resolve anchor "+anchorKey.String())
	}

	scored := make([]*scoredEntity, len(pool))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, candidate := range pool {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			vec, stale, err := r.resolver.Resolve(gctx, candidate)
			if err != nil {
				if apperror.Is(err, apperror.KindProviderAuth) {
					return err
				}
				r.logger.Warn("excluding unresolved candidate",
					zap.String("anchor", anchorKey.String()),
					zap.String("candidate", candidate.MatchKey().String()),
					zap.Error(err))
				return nil
			}
			scored[i] = &scoredEntity{entity: candidate, score: Score(anchorVec, vec), stale: stale}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, apperror.Wrap(apperror.KindMatchingUnavailable, err, "ranking abandoned")
	}

	ranked := make([]*scoredEntity, 0, len(scored))
	for _, s := range scored {
		if s != nil {
			ranked = append(ranked, s)
		}
	}
	slices.SortFunc(ranked, compareScored)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	now := r.now().UTC()
	out := make([]MatchResult, len(ranked))
	for i, s := range ranked {
		key := s.entity.MatchKey()
		out[i] = MatchResult{
			AnchorID:   anchorKey.ID,
			TargetID:   key.ID,
			TargetKind: key.Kind,
			Score:      s.score,
			Stale:      anchorStale || s.stale,
			ComputedAt: now,
		}
	}
	return out, nil
}

// compareScored orders by score desc, then newer entities first, then id asc.
func compareScored(a, b *scoredEntity) int {
	if c := cmp.Compare(b.score, a.score); c != 0 {
		return c
	}
	if c := b.entity.MatchCreatedAt().Compare(a.entity.MatchCreatedAt()); c != 0 {
		return c
	}
	return cmp.Compare(a.entity.MatchKey().ID.String(), b.entity.MatchKey().ID.String())
}
