package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/fadilmartias/talent-match/internal/apperror"
	"github.com/fadilmartias/talent-match/internal/matching"
	"github.com/fadilmartias/talent-match/internal/model"
	"github.com/fadilmartias/talent-match/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AnchorKind is what recommendations are computed for: a candidate gets jobs,
// a job gets candidates.
type AnchorKind string

const (
	AnchorCandidate AnchorKind = "candidate"
	AnchorJob       AnchorKind = "job"
)

func ParseAnchorKind(s string) (AnchorKind, error) {
	switch k := AnchorKind(s); k {
	case AnchorCandidate, AnchorJob:
		return k, nil
	}
	return "", apperror.Newf(apperror.KindInvalidArgument, "unknown anchor kind %q", s)
}

type RecommendationUsecase struct {
	profileRepo *repository.ProfileRepository
	jobRepo     *repository.JobRepository
	store       *matching.Store
	ranker      *matching.Ranker
	cache       *matching.Cache
	poolSize    int
	logger      *zap.Logger
}

func NewRecommendationUsecase(
	profileRepo *repository.ProfileRepository,
	jobRepo *repository.JobRepository,
	store *matching.Store,
	ranker *matching.Ranker,
	cache *matching.Cache,
	poolSize int,
	logger *zap.Logger,
) *RecommendationUsecase {
	if poolSize <= 0 {
		poolSize = 1000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecommendationUsecase{
		profileRepo: profileRepo,
		jobRepo:     jobRepo,
		store:       store,
		ranker:      ranker,
		cache:       cache,
		poolSize:    poolSize,
		logger:      logger.Named("recommendations"),
	}
}

// GetRecommendations ranks the opposite side of the marketplace for the
// anchor. Closed jobs may still be anchors; only active jobs are recommended.
func (uc *RecommendationUsecase) GetRecommendations(ctx context.Context, kind AnchorKind, anchorID uuid.UUID, limit int) ([]matching.MatchResult, error) {
	anchor, pool, err := uc.loadAnchor(ctx, kind, anchorID)
	if err != nil {
		return nil, err
	}
	return uc.rank(ctx, kind, anchor, pool, limit)
}

func (uc *RecommendationUsecase) rank(ctx context.Context, kind AnchorKind, anchor matching.Entity, pool []matching.Entity, limit int) ([]matching.MatchResult, error) {
	limit = matching.ClampLimit(limit)
	key := matching.CacheKey(string(kind), anchor.MatchKey().ID.String(), matching.Fingerprint(anchor), strconv.Itoa(limit))
	if cached, ok := uc.cache.Get(ctx, key); ok {
		return cached, nil
	}

	results, err := uc.ranker.Rank(ctx, anchor, pool, limit)
	if err != nil {
		return nil, err
	}

	stale := false
	for _, r := range results {
		stale = stale || r.Stale
	}
	if !stale {
		uc.cache.Set(ctx, key, results)
	}
	return results, nil
}

type RecommendationItem struct {
	TargetID   uuid.UUID           `json:"target_id"`
	TargetKind matching.EntityKind `json:"target_kind"`
	Title      string              `json:"title"`
	Score      *int                `json:"score,omitempty"`
	Stale      bool                `json:"stale,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

type RecommendationPage struct {
	AnchorID   uuid.UUID            `json:"anchor_id"`
	AnchorKind AnchorKind           `json:"anchor_kind"`
	Items      []RecommendationItem `json:"items"`
	Degraded   bool                 `json:"degraded"`
}

// Recommend is GetRecommendations for pages that must always render: when
// matching is unavailable it falls back to the newest entries of the pool,
// without scores.
func (uc *RecommendationUsecase) Recommend(ctx context.Context, kind AnchorKind, anchorID uuid.UUID, limit int) (*RecommendationPage, error) {
	anchor, pool, err := uc.loadAnchor(ctx, kind, anchorID)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]matching.Entity, len(pool))
	for _, e := range pool {
		byID[e.MatchKey().ID] = e
	}

	page := &RecommendationPage{AnchorID: anchorID, AnchorKind: kind, Items: []RecommendationItem{}}

	results, err := uc.rank(ctx, kind, anchor, pool, limit)
	if err != nil {
		if !apperror.Is(err, apperror.KindMatchingUnavailable) {
			return nil, err
		}
		uc.logger.Warn("matching unavailable, serving recent listing",
			zap.String("anchor", anchor.MatchKey().String()),
			zap.Error(err))

		page.Degraded = true
		limit = matching.ClampLimit(limit)
		for _, e := range pool[:min(limit, len(pool))] {
			page.Items = append(page.Items, itemFor(e))
		}
		return page, nil
	}

	for _, r := range results {
		e, ok := byID[r.TargetID]
		if !ok {
			continue
		}
		item := itemFor(e)
		item.Score = &r.Score
		item.Stale = r.Stale
		page.Items = append(page.Items, item)
	}
	return page, nil
}

func itemFor(e matching.Entity) RecommendationItem {
	key := e.MatchKey()
	item := RecommendationItem{TargetID: key.ID, TargetKind: key.Kind, CreatedAt: e.MatchCreatedAt()}
	switch v := e.(type) {
	case *model.Job:
		item.Title = v.Title
	case *model.Profile:
		item.Title = v.Name
	}
	return item
}

// loadAnchor returns the anchor and its candidate pool, newest first.
func (uc *RecommendationUsecase) loadAnchor(ctx context.Context, kind AnchorKind, id uuid.UUID) (matching.Entity, []matching.Entity, error) {
	switch kind {
	case AnchorCandidate:
		profile, err := uc.profileRepo.FindProfileByID(ctx, id)
		if err != nil {
			return nil, nil, lookupError(err, "profile", id)
		}
		if !profile.IsCandidate() {
			return nil, nil, apperror.Newf(apperror.KindInvalidArgument, "profile %s is not a candidate", id)
		}
		jobs, err := uc.jobRepo.ListActiveJobs(ctx, uc.poolSize)
		if err != nil {
			return nil, nil, apperror.Wrap(apperror.KindInternal, err, "listing jobs")
		}
		pool := make([]matching.Entity, len(jobs))
		for i := range jobs {
			pool[i] = &jobs[i]
		}
		return profile, pool, nil

	case AnchorJob:
		job, err := uc.jobRepo.FindJobByID(ctx, id)
		if err != nil {
			return nil, nil, lookupError(err, "job", id)
		}
		candidates, err := uc.profileRepo.ListCandidates(ctx, uc.poolSize)
		if err != nil {
			return nil, nil, apperror.Wrap(apperror.KindInternal, err, "listing candidates")
		}
		pool := make([]matching.Entity, len(candidates))
		for i := range candidates {
			pool[i] = &candidates[i]
		}
		return job, pool, nil
	}
	return nil, nil, apperror.Newf(apperror.KindInvalidArgument, "unknown anchor kind %q", kind)
}

type ReembedReport struct {
	Refreshed int `json:"refreshed"`
	Failed    int `json:"failed"`
}

// Reembed walks every profile or job and brings its embedding up to date.
// Per-entity failures are counted; a credential failure stops the walk.
func (uc *RecommendationUsecase) Reembed(ctx context.Context, kind matching.EntityKind, batchSize int) (ReembedReport, error) {
	var report ReembedReport
	if batchSize <= 0 {
		batchSize = 100
	}

	refresh := func(e matching.Entity) error {
		if _, err := uc.store.GetOrRefresh(ctx, e); err != nil {
			if apperror.Is(err, apperror.KindProviderAuth) || ctx.Err() != nil {
				return err
			}
			report.Failed++
			uc.logger.Warn("reembed failed", zap.String("entity", e.MatchKey().String()), zap.Error(err))
			return nil
		}
		report.Refreshed++
		return nil
	}

	var err error
	switch kind {
	case matching.KindProfile:
		err = uc.profileRepo.EachProfile(ctx, batchSize, func(batch []model.Profile) error {
			for i := range batch {
				if err := refresh(&batch[i]); err != nil {
					return err
				}
			}
			return nil
		})
	case matching.KindJob:
		err = uc.jobRepo.EachJob(ctx, batchSize, func(batch []model.Job) error {
			for i := range batch {
				if err := refresh(&batch[i]); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		return report, apperror.Newf(apperror.KindInvalidArgument, "unknown entity kind %q", kind)
	}
	return report, err
}

type Stats struct {
	Store matching.StoreStats `json:"embedding_store"`
	Cache matching.CacheStats `json:"match_cache"`
}

func (uc *RecommendationUsecase) Stats() Stats {
	return Stats{Store: uc.store.Stats(), Cache: uc.cache.Stats()}
}
