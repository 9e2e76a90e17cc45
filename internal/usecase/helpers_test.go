package usecase

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fadilmartias/talent-match/internal/apperror"
	"github.com/fadilmartias/talent-match/internal/matching"
	"github.com/fadilmartias/talent-match/internal/model"
	"github.com/fadilmartias/talent-match/internal/repository"
	"github.com/fadilmartias/talent-match/internal/service"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Profile{}, &model.Job{}, &model.EmbeddingRecord{},
		&model.Application{}, &model.Notification{},
	))
	return db
}

var vocabulary = []string{"go", "backend", "postgres", "kubernetes", "chef", "pastry", "figma", "design"}

// wordProvider embeds text as word counts over a fixed vocabulary. Texts
// containing any of the fail substrings return a provider error.
type wordProvider struct {
	calls atomic.Int64

	mu   sync.Mutex
	fail []string
}

func (p *wordProvider) Model() string { return "words-v1" }

func (p *wordProvider) failOn(substr string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail = append(p.fail, substr)
}

func (p *wordProvider) Embed(_ context.Context, text string) ([]float32, error) {
	p.calls.Add(1)
	p.mu.Lock()
	for _, f := range p.fail {
		if strings.Contains(text, f) {
			p.mu.Unlock()
			return nil, apperror.New(apperror.KindProvider, "provider down")
		}
	}
	p.mu.Unlock()

	vec := make([]float32, len(vocabulary))
	for _, w := range strings.Fields(strings.ToLower(text)) {
		for i, v := range vocabulary {
			if w == v {
				vec[i]++
			}
		}
	}
	// keep texts without vocabulary words comparable
	vec = append(vec, 0.1)
	return vec, nil
}

type fixture struct {
	db            *gorm.DB
	profiles      *repository.ProfileRepository
	jobs          *repository.JobRepository
	applications  *repository.ApplicationRepository
	notifications *repository.NotificationRepository
	provider      *wordProvider
	store         *matching.Store
	cache         *matching.Cache

	recommendations *RecommendationUsecase
	admission       *ApplicationUsecase
	profileUC       *ProfileUsecase

	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{
		db:            db,
		profiles:      repository.NewProfileRepository(db),
		jobs:          repository.NewJobRepository(db),
		applications:  repository.NewApplicationRepository(db),
		notifications: repository.NewNotificationRepository(db),
		provider:      &wordProvider{},
		clock:         time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
	}
	f.store = matching.NewStore(repository.NewEmbeddingRepository(db), f.provider, nil)
	f.cache = matching.NewCache(nil, time.Minute, 100, nil)
	ranker := matching.NewRanker(f.store, nil, 4)

	f.recommendations = NewRecommendationUsecase(f.profiles, f.jobs, f.store, ranker, f.cache, 100, nil)
	f.admission = NewApplicationUsecase(f.applications, f.jobs, f.profiles, f.notifications,
		service.NewMemoryRateCounter(), 50, 24*time.Hour, nil)
	f.profileUC = NewProfileUsecase(f.profiles, nil)
	return f
}

// tick returns successive creation times so that ordering by created_at is
// deterministic.
func (f *fixture) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fixture) candidate(t *testing.T, name, bio string, skills ...string) *model.Profile {
	t.Helper()
	p := &model.Profile{
		ProfileType: model.ProfileTypeCandidate,
		Name:        name,
		Bio:         bio,
		Skills:      datatypes.JSONSlice[string](skills),
		CreatedAt:   f.tick(),
	}
	require.NoError(t, f.profiles.CreateProfile(context.Background(), p))
	return p
}

func (f *fixture) company(t *testing.T, name string) *model.Profile {
	t.Helper()
	p := &model.Profile{ProfileType: model.ProfileTypeCompany, Name: name, CreatedAt: f.tick()}
	require.NoError(t, f.profiles.CreateProfile(context.Background(), p))
	return p
}

func (f *fixture) job(t *testing.T, company *model.Profile, title, description string) *model.Job {
	t.Helper()
	j := &model.Job{
		CompanyID:   company.ID,
		Title:       title,
		Description: description,
		Status:      model.JobStatusActive,
		CreatedAt:   f.tick(),
	}
	require.NoError(t, f.jobs.CreateJob(context.Background(), j))
	return j
}
