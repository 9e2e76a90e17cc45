package matching

import (
	"context"
	"testing"
	"time"

	"github.com/fadilmartias/talent-match/internal/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vectorResolver struct {
	vectors map[Key][]float32
	stale   map[Key]bool
	errs    map[Key]error
}

func (r *vectorResolver) Resolve(_ context.Context, e Entity) ([]float32, bool, error) {
	if err := r.errs[e.MatchKey()]; err != nil {
		return nil, false, err
	}
	return r.vectors[e.MatchKey()], r.stale[e.MatchKey()], nil
}

func fixedRanker(res Resolver) *Ranker {
	r := NewRanker(res, nil, 3)
	r.now = func() time.Time { return time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC) }
	return r
}

func TestRankOrderingAndTieBreaks(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	anchor := newEntity(KindProfile, "Ada")
	older := &testEntity{key: Key{ID: uuid.New(), Kind: KindJob}, createdAt: base}
	newer := &testEntity{key: Key{ID: uuid.New(), Kind: KindJob}, createdAt: base.Add(time.Hour)}
	tieLow := &testEntity{key: Key{ID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), Kind: KindJob}, createdAt: base}
	tieHigh := &testEntity{key: Key{ID: uuid.MustParse("00000000-0000-0000-0000-000000000002"), Kind: KindJob}, createdAt: base}
	broken := newEntity(KindJob, "broken")

	res := &vectorResolver{
		vectors: map[Key][]float32{
			anchor.key:  {1, 0},
			older.key:   {1, 0},
			newer.key:   {1, 0},
			tieLow.key:  {0, 1},
			tieHigh.key: {0, 1},
		},
		errs: map[Key]error{
			broken.key: apperror.Wrap(apperror.KindMatchingUnavailable, errTransient, "embed"),
		},
	}
	pool := []Entity{tieHigh, broken, older, tieLow, newer}
	ranker := fixedRanker(res)

	got, err := ranker.Rank(context.Background(), anchor, pool, 10)
	require.NoError(t, err)

	ids := make([]uuid.UUID, len(got))
	for i, r := range got {
		ids[i] = r.TargetID
		assert.Equal(t, anchor.key.ID, r.AnchorID)
		assert.Equal(t, KindJob, r.TargetKind)
	}
	assert.Equal(t, []uuid.UUID{newer.key.ID, older.key.ID, tieLow.key.ID, tieHigh.key.ID}, ids)
	assert.Equal(t, []int{100, 100, 50, 50}, []int{got[0].Score, got[1].Score, got[2].Score, got[3].Score})

	again, err := ranker.Rank(context.Background(), anchor, pool, 10)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestRankLimit(t *testing.T) {
	anchor := newEntity(KindJob, "Engineer")
	res := &vectorResolver{vectors: map[Key][]float32{anchor.key: {1, 1}}}
	var pool []Entity
	for i := 0; i < 150; i++ {
		e := newEntity(KindProfile, "candidate")
		res.vectors[e.key] = []float32{1, float32(i)}
		pool = append(pool, e)
	}
	ranker := fixedRanker(res)

	got, err := ranker.Rank(context.Background(), anchor, pool, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = ranker.Rank(context.Background(), anchor, pool, 0)
	require.NoError(t, err)
	assert.Len(t, got, DefaultLimit)

	got, err = ranker.Rank(context.Background(), anchor, pool, 1000)
	require.NoError(t, err)
	assert.Len(t, got, MaxLimit)
}

func TestRankAnchorUnavailable(t *testing.T) {
	anchor := newEntity(KindProfile, "Ada")
	res := &vectorResolver{errs: map[Key]error{anchor.key: errTransient}}

	_, err := fixedRanker(res).Rank(context.Background(), anchor, nil, 10)
	require.Error(t, err)
	assert.Equal(t, apperror.KindMatchingUnavailable, apperror.KindOf(err))
}

func TestRankAuthErrorAborts(t *testing.T) {
	anchor := newEntity(KindProfile, "Ada")
	job := newEntity(KindJob, "Engineer")
	res := &vectorResolver{
		vectors: map[Key][]float32{anchor.key: {1}},
		errs:    map[Key]error{job.key: apperror.New(apperror.KindProviderAuth, "bad key")},
	}

	_, err := fixedRanker(res).Rank(context.Background(), anchor, []Entity{job}, 10)
	assert.Equal(t, apperror.KindProviderAuth, apperror.KindOf(err))
}

func TestRankMarksStale(t *testing.T) {
	anchor := newEntity(KindProfile, "Ada")
	fresh := newEntity(KindJob, "fresh")
	old := newEntity(KindJob, "old")
	res := &vectorResolver{
		vectors: map[Key][]float32{anchor.key: {1, 0}, fresh.key: {1, 0}, old.key: {0, 1}},
		stale:   map[Key]bool{old.key: true},
	}

	got, err := fixedRanker(res).Rank(context.Background(), anchor, []Entity{fresh, old}, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.False(t, got[0].Stale)
	assert.True(t, got[1].Stale)
}

func TestRankWithStoreProviderFailingForAnchor(t *testing.T) {
	provider := &stubProvider{failOn: "unembeddable", fail: errTransient}
	store := NewStore(newMemRepo(), provider, nil)
	anchor := newEntity(KindProfile, "unembeddable candidate")
	pool := []Entity{newEntity(KindJob, "Go engineer"), newEntity(KindJob, "Rust engineer")}

	_, err := NewRanker(store, nil, 2).Rank(context.Background(), anchor, pool, 10)
	require.Error(t, err)
	assert.Equal(t, apperror.KindMatchingUnavailable, apperror.KindOf(err))
}

func TestRankWithStoreExcludesFailingCandidates(t *testing.T) {
	provider := &stubProvider{failOn: "flaky", fail: errTransient}
	store := NewStore(newMemRepo(), provider, nil)
	anchor := newEntity(KindProfile, "Go engineer", "", "", "go")
	good := newEntity(KindJob, "Go engineer", "", "", "go")
	flaky := newEntity(KindJob, "flaky posting")

	got, err := NewRanker(store, nil, 2).Rank(context.Background(), anchor, []Entity{good, flaky}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, good.key.ID, got[0].TargetID)
	assert.Equal(t, 100, got[0].Score)
}
