package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fadilmartias/talent-match/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db}
}

// CreateApplication inserts app. A clash with an existing non-withdrawn
// application for the same job and candidate yields ErrDuplicate.
func (r *ApplicationRepository) CreateApplication(ctx context.Context, app *model.Application) error {
	err := r.db.WithContext(ctx).Create(app).Error
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: application for job %s", ErrDuplicate, app.JobID)
	}
	return err
}

func (r *ApplicationRepository) FindApplicationByID(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).First(&app, "id = ?", id).Error
	return &app, err
}

// FindOpenApplication returns the candidate's non-withdrawn application to the job.
func (r *ApplicationRepository) FindOpenApplication(ctx context.Context, jobID, candidateID uuid.UUID) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).
		Where("job_id = ? AND candidate_id = ? AND status <> ?", jobID, candidateID, model.ApplicationStatusWithdrawn).
		Take(&app).Error
	return &app, err
}

// TransitionStatus moves the application from one status to another only if
// it is still in from. It reports whether the row was updated.
func (r *ApplicationRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.ApplicationStatus, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": at})
	return res.RowsAffected == 1, res.Error
}

// ListJobApplications pages through a job's applications, newest first.
func (r *ApplicationRepository) ListJobApplications(ctx context.Context, jobID uuid.UUID, page, pageSize int) ([]model.Application, int64, error) {
	var (
		apps  []model.Application
		total int64
	)
	q := r.db.WithContext(ctx).Model(&model.Application{}).Where("job_id = ?", jobID).Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&apps).Error
	return apps, total, err
}
