package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fadilmartias/talent-match/internal/apperror"
	"github.com/fadilmartias/talent-match/internal/model"
	"github.com/fadilmartias/talent-match/internal/repository"
	"github.com/fadilmartias/talent-match/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultApplicationLimit  = 50
	defaultApplicationWindow = 24 * time.Hour

	defaultPageSize = 20
	maxPageSize     = 100
)

type ApplicationUsecase struct {
	appRepo          *repository.ApplicationRepository
	jobRepo          *repository.JobRepository
	profileRepo      *repository.ProfileRepository
	notificationRepo *repository.NotificationRepository
	counter          service.RateCounter

	limit  int
	window time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewApplicationUsecase(
	appRepo *repository.ApplicationRepository,
	jobRepo *repository.JobRepository,
	profileRepo *repository.ProfileRepository,
	notificationRepo *repository.NotificationRepository,
	counter service.RateCounter,
	limit int,
	window time.Duration,
	logger *zap.Logger,
) *ApplicationUsecase {
	if limit <= 0 {
		limit = defaultApplicationLimit
	}
	if window <= 0 {
		window = defaultApplicationWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationUsecase{
		appRepo:          appRepo,
		jobRepo:          jobRepo,
		profileRepo:      profileRepo,
		notificationRepo: notificationRepo,
		counter:          counter,
		limit:            limit,
		window:           window,
		logger:           logger.Named("applications"),
		now:              time.Now,
	}
}

// SubmitApplication records a candidate's application to a job. Every call
// that reaches the rate limiter counts as an attempt, including ones later
// rejected as duplicates.
func (uc *ApplicationUsecase) SubmitApplication(ctx context.Context, candidateID, jobID uuid.UUID, coverLetter string) (*model.Application, error) {
	candidate, err := uc.profileRepo.FindProfileByID(ctx, candidateID)
	if err != nil {
		return nil, lookupError(err, "profile", candidateID)
	}
	if !candidate.IsCandidate() {
		return nil, apperror.New(apperror.KindForbidden, "only candidate profiles can apply to jobs")
	}

	job, err := uc.jobRepo.FindJobByID(ctx, jobID)
	if err != nil {
		return nil, lookupError(err, "job", jobID)
	}
	if job.Status != model.JobStatusActive {
		return nil, apperror.Newf(apperror.KindInvalidArgument, "job %s is not accepting applications", jobID)
	}

	decision, err := uc.counter.IncrementAndCheck(ctx, "applications:"+candidateID.String(), uc.window, uc.limit)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, err, "checking application rate limit")
	}
	if !decision.Allowed {
		uc.logger.Info("application rate limited",
			zap.String("candidate_id", candidateID.String()),
			zap.Int("attempts", decision.Count))
		return nil, apperror.RateLimited(decision.Remaining)
	}

	if _, err := uc.appRepo.FindOpenApplication(ctx, jobID, candidateID); err == nil {
		return nil, apperror.New(apperror.KindDuplicateApplication, "you have already applied to this job")
	} else if !repository.IsNotFound(err) {
		return nil, apperror.Wrap(apperror.KindInternal, err, "checking existing application")
	}

	app := &model.Application{
		JobID:       jobID,
		CandidateID: candidateID,
		CoverLetter: coverLetter,
		Status:      model.ApplicationStatusSubmitted,
	}
	if err := uc.appRepo.CreateApplication(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Wrap(apperror.KindDuplicateApplication, err, "you have already applied to this job")
		}
		return nil, apperror.Wrap(apperror.KindInternal, err, "saving application")
	}

	uc.notify(ctx, candidateID, app.ID, model.NotificationApplicationSubmitted,
		fmt.Sprintf("You applied to %s", job.Title))
	uc.notify(ctx, job.CompanyID, app.ID, model.NotificationApplicationReceived,
		fmt.Sprintf("%s applied to %s", candidate.Name, job.Title))

	return app, nil
}

// UpdateApplicationStatus moves an application through the hiring pipeline.
// The owning company drives the pipeline; the applying candidate may withdraw.
func (uc *ApplicationUsecase) UpdateApplicationStatus(ctx context.Context, applicationID, actorID uuid.UUID, status model.ApplicationStatus) (*model.Application, error) {
	if !isKnownStatus(status) {
		return nil, apperror.Newf(apperror.KindInvalidArgument, "unknown application status %q", status)
	}

	app, job, role, err := uc.authorize(ctx, applicationID, actorID)
	if err != nil {
		return nil, err
	}

	from := app.Status
	if !canTransition(role, from, status) {
		return nil, apperror.Newf(apperror.KindInvalidTransition, "%s cannot move application from %s to %s", role, from, status)
	}

	at := uc.now().UTC()
	ok, err := uc.appRepo.TransitionStatus(ctx, app.ID, from, status, at)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, err, "updating application status")
	}
	if !ok {
		return nil, apperror.Newf(apperror.KindInvalidTransition, "application is no longer %s", from)
	}
	app.Status = status
	app.UpdatedAt = at

	uc.logger.Info("application status changed",
		zap.String("application_id", app.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
		zap.String("actor", role.String()))

	recipient := job.CompanyID
	if role == roleCompany {
		recipient = app.CandidateID
	}
	uc.notify(ctx, recipient, app.ID, model.NotificationApplicationStatus,
		fmt.Sprintf("Application for %s is now %s", job.Title, status))

	return app, nil
}

// GetApplication is visible to the applying candidate and the owning company.
func (uc *ApplicationUsecase) GetApplication(ctx context.Context, applicationID, actorID uuid.UUID) (*model.Application, error) {
	app, _, _, err := uc.authorize(ctx, applicationID, actorID)
	return app, err
}

type ApplicationPage struct {
	Items    []model.Application
	Total    int64
	Page     int
	PageSize int
}

// ListJobApplications pages through a job's applications for its owner.
func (uc *ApplicationUsecase) ListJobApplications(ctx context.Context, jobID, actorID uuid.UUID, page, pageSize int) (*ApplicationPage, error) {
	job, err := uc.jobRepo.FindJobByID(ctx, jobID)
	if err != nil {
		return nil, lookupError(err, "job", jobID)
	}
	if job.CompanyID != actorID {
		return nil, apperror.New(apperror.KindForbidden, "only the owning company can list applications")
	}

	if page < 1 {
		page = 1
	}
	switch {
	case pageSize <= 0:
		pageSize = defaultPageSize
	case pageSize > maxPageSize:
		pageSize = maxPageSize
	}

	apps, total, err := uc.appRepo.ListJobApplications(ctx, jobID, page, pageSize)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, err, "listing applications")
	}
	return &ApplicationPage{Items: apps, Total: total, Page: page, PageSize: pageSize}, nil
}

func (uc *ApplicationUsecase) authorize(ctx context.Context, applicationID, actorID uuid.UUID) (*model.Application, *model.Job, actorRole, error) {
	app, err := uc.appRepo.FindApplicationByID(ctx, applicationID)
	if err != nil {
		return nil, nil, roleNone, lookupError(err, "application", applicationID)
	}
	job, err := uc.jobRepo.FindJobByID(ctx, app.JobID)
	if err != nil {
		return nil, nil, roleNone, lookupError(err, "job", app.JobID)
	}

	switch actorID {
	case job.CompanyID:
		return app, job, roleCompany, nil
	case app.CandidateID:
		return app, job, roleCandidate, nil
	}
	return nil, nil, roleNone, apperror.New(apperror.KindForbidden, "not a party to this application")
}

// notify appends to a profile's activity log. Failures never fail the caller.
func (uc *ApplicationUsecase) notify(ctx context.Context, profileID, applicationID uuid.UUID, kind model.NotificationKind, msg string) {
	n := &model.Notification{
		ProfileID:     profileID,
		ApplicationID: applicationID,
		Kind:          kind,
		Message:       msg,
	}
	if err := uc.notificationRepo.CreateNotification(ctx, n); err != nil {
		uc.logger.Warn("notification dropped",
			zap.String("profile_id", profileID.String()),
			zap.String("kind", string(kind)),
			zap.Error(err))
	}
}

func lookupError(err error, what string, id uuid.UUID) error {
	if repository.IsNotFound(err) {
		return apperror.Newf(apperror.KindNotFound, "%s %s not found", what, id)
	}
	return apperror.Wrap(apperror.KindInternal, err, "loading "+what)
}
