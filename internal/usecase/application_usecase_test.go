package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/fadilmartias/talent-match/internal/apperror"
	"github.com/fadilmartias/talent-match/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		role     actorRole
		from, to model.ApplicationStatus
		want     bool
	}{
		{roleCompany, model.ApplicationStatusSubmitted, model.ApplicationStatusReviewed, true},
		{roleCompany, model.ApplicationStatusSubmitted, model.ApplicationStatusRejected, true},
		{roleCompany, model.ApplicationStatusSubmitted, model.ApplicationStatusInterviewing, false},
		{roleCompany, model.ApplicationStatusReviewed, model.ApplicationStatusInterviewing, true},
		{roleCompany, model.ApplicationStatusInterviewing, model.ApplicationStatusOffered, true},
		{roleCompany, model.ApplicationStatusOffered, model.ApplicationStatusRejected, false},
		{roleCompany, model.ApplicationStatusReviewed, model.ApplicationStatusSubmitted, false},
		{roleCompany, model.ApplicationStatusSubmitted, model.ApplicationStatusWithdrawn, false},
		{roleCandidate, model.ApplicationStatusSubmitted, model.ApplicationStatusWithdrawn, true},
		{roleCandidate, model.ApplicationStatusInterviewing, model.ApplicationStatusWithdrawn, true},
		{roleCandidate, model.ApplicationStatusOffered, model.ApplicationStatusWithdrawn, false},
		{roleCandidate, model.ApplicationStatusSubmitted, model.ApplicationStatusReviewed, false},
		{roleNone, model.ApplicationStatusSubmitted, model.ApplicationStatusReviewed, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, canTransition(tt.role, tt.from, tt.to), "%s: %s -> %s", tt.role, tt.from, tt.to)
	}
}

func TestSubmitApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.company(t, "Acme")
	job := f.job(t, acme, "Go Backend Engineer", "go")
	ada := f.candidate(t, "Ada", "go backend")

	app, err := f.admission.SubmitApplication(ctx, ada.ID, job.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusSubmitted, app.Status)
	assert.Equal(t, job.ID, app.JobID)
	assert.Equal(t, ada.ID, app.CandidateID)

	mine, err := f.notifications.ListNotifications(ctx, ada.ID, 10)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, model.NotificationApplicationSubmitted, mine[0].Kind)

	theirs, err := f.notifications.ListNotifications(ctx, acme.ID, 10)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, model.NotificationApplicationReceived, theirs[0].Kind)
	assert.Contains(t, theirs[0].Message, "Ada")
}

func TestSubmitApplication_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.company(t, "Acme")
	job := f.job(t, acme, "Go Backend Engineer", "go")
	closed := f.job(t, acme, "Old", "go")
	closed.Status = model.JobStatusClosed
	require.NoError(t, f.jobs.UpdateJob(ctx, closed))
	ada := f.candidate(t, "Ada", "go backend")

	_, err := f.admission.SubmitApplication(ctx, acme.ID, job.ID, "")
	assert.True(t, apperror.Is(err, apperror.KindForbidden), "companies cannot apply")

	_, err = f.admission.SubmitApplication(ctx, uuid.New(), job.ID, "")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = f.admission.SubmitApplication(ctx, ada.ID, uuid.New(), "")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = f.admission.SubmitApplication(ctx, ada.ID, closed.ID, "")
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))
}

func TestSubmitApplication_Duplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.company(t, "Acme")
	job := f.job(t, acme, "Go Backend Engineer", "go")
	ada := f.candidate(t, "Ada", "go backend")

	first, err := f.admission.SubmitApplication(ctx, ada.ID, job.ID, "")
	require.NoError(t, err)

	_, err = f.admission.SubmitApplication(ctx, ada.ID, job.ID, "again")
	assert.True(t, apperror.Is(err, apperror.KindDuplicateApplication))

	_, err = f.admission.UpdateApplicationStatus(ctx, first.ID, ada.ID, model.ApplicationStatusWithdrawn)
	require.NoError(t, err)

	second, err := f.admission.SubmitApplication(ctx, ada.ID, job.ID, "second try")
	require.NoError(t, err, "withdrawing frees the pair")
	assert.NotEqual(t, first.ID, second.ID)
}

func TestSubmitApplication_ConcurrentDuplicates(t *testing.T) {
	f := newFixture(t)
	acme := f.company(t, "Acme")
	job := f.job(t, acme, "Go Backend Engineer", "go")
	ada := f.candidate(t, "Ada", "go backend")

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.admission.SubmitApplication(context.Background(), ada.ID, job.ID, "")
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperror.Is(err, apperror.KindDuplicateApplication), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)
}

func TestSubmitApplication_RateLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.company(t, "Acme")
	job := f.job(t, acme, "Go Backend Engineer", "go")
	ada := f.candidate(t, "Ada", "go backend")

	_, err := f.admission.SubmitApplication(ctx, ada.ID, job.ID, "")
	require.NoError(t, err)

	// duplicates still count as attempts
	for range 49 {
		_, err := f.admission.SubmitApplication(ctx, ada.ID, job.ID, "")
		require.True(t, apperror.Is(err, apperror.KindDuplicateApplication))
	}

	_, err = f.admission.SubmitApplication(ctx, ada.ID, job.ID, "")
	require.True(t, apperror.Is(err, apperror.KindRateLimitExceeded))
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, 0, appErr.Remaining)

	other := f.candidate(t, "Bob", "go")
	_, err = f.admission.SubmitApplication(ctx, other.ID, job.ID, "")
	assert.NoError(t, err, "limits are per candidate")
}

func TestUpdateApplicationStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.company(t, "Acme")
	job := f.job(t, acme, "Go Backend Engineer", "go")
	ada := f.candidate(t, "Ada", "go backend")
	app, err := f.admission.SubmitApplication(ctx, ada.ID, job.ID, "")
	require.NoError(t, err)

	_, err = f.admission.UpdateApplicationStatus(ctx, app.ID, acme.ID, model.ApplicationStatusInterviewing)
	assert.True(t, apperror.Is(err, apperror.KindInvalidTransition), "stages cannot be skipped")

	_, err = f.admission.UpdateApplicationStatus(ctx, app.ID, ada.ID, model.ApplicationStatusReviewed)
	assert.True(t, apperror.Is(err, apperror.KindInvalidTransition), "candidates cannot review")

	_, err = f.admission.UpdateApplicationStatus(ctx, app.ID, uuid.New(), model.ApplicationStatusReviewed)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = f.admission.UpdateApplicationStatus(ctx, uuid.New(), acme.ID, model.ApplicationStatusReviewed)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = f.admission.UpdateApplicationStatus(ctx, app.ID, acme.ID, model.ApplicationStatus("hired"))
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))

	for _, next := range []model.ApplicationStatus{
		model.ApplicationStatusReviewed,
		model.ApplicationStatusInterviewing,
		model.ApplicationStatusOffered,
	} {
		updated, err := f.admission.UpdateApplicationStatus(ctx, app.ID, acme.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	_, err = f.admission.UpdateApplicationStatus(ctx, app.ID, ada.ID, model.ApplicationStatusWithdrawn)
	assert.True(t, apperror.Is(err, apperror.KindInvalidTransition), "offered is terminal")

	stored, err := f.applications.FindApplicationByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusOffered, stored.Status)

	notes, err := f.notifications.ListNotifications(ctx, ada.ID, 10)
	require.NoError(t, err)
	assert.Len(t, notes, 4, "one for submitting plus one per company transition")
}

func TestUpdateApplicationStatus_ConcurrentTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.company(t, "Acme")
	job := f.job(t, acme, "Go Backend Engineer", "go")
	ada := f.candidate(t, "Ada", "go backend")
	app, err := f.admission.SubmitApplication(ctx, ada.ID, job.ID, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 6)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.admission.UpdateApplicationStatus(ctx, app.ID, acme.ID, model.ApplicationStatusReviewed)
		}()
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		assert.True(t, apperror.Is(err, apperror.KindInvalidTransition))
	}
	assert.Equal(t, 1, won)
}

func TestSubmitApplication_NotificationFailureIsBestEffort(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.company(t, "Acme")
	job := f.job(t, acme, "Go Backend Engineer", "go")
	ada := f.candidate(t, "Ada", "go backend")

	require.NoError(t, f.db.Migrator().DropTable(&model.Notification{}))

	app, err := f.admission.SubmitApplication(ctx, ada.ID, job.ID, "")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, app.ID)
}

func TestGetAndListApplications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.company(t, "Acme")
	rival := f.company(t, "Rival")
	job := f.job(t, acme, "Go Backend Engineer", "go")

	var ids []uuid.UUID
	for _, name := range []string{"Ada", "Bob", "Cy"} {
		c := f.candidate(t, name, "go")
		app, err := f.admission.SubmitApplication(ctx, c.ID, job.ID, "")
		require.NoError(t, err)
		ids = append(ids, app.ID)

		got, err := f.admission.GetApplication(ctx, app.ID, c.ID)
		require.NoError(t, err)
		assert.Equal(t, app.ID, got.ID)
	}

	_, err := f.admission.GetApplication(ctx, ids[0], rival.ID)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	got, err := f.admission.GetApplication(ctx, ids[0], acme.ID)
	require.NoError(t, err)
	assert.Equal(t, ids[0], got.ID)

	_, err = f.admission.ListJobApplications(ctx, job.ID, rival.ID, 1, 10)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = f.admission.ListJobApplications(ctx, uuid.New(), acme.ID, 1, 10)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	page, err := f.admission.ListJobApplications(ctx, job.ID, acme.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 2)

	page, err = f.admission.ListJobApplications(ctx, job.ID, acme.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, defaultPageSize, page.PageSize)
	assert.Len(t, page.Items, 3)
}
