package repository

import (
	"context"

	"github.com/fadilmartias/talent-match/internal/matching"
	"github.com/fadilmartias/talent-match/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db}
}

func (r *JobRepository) CreateJob(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *JobRepository) UpdateJob(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Save(job).Error
}

func (r *JobRepository) FindJobByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var j model.Job
	err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error
	return &j, err
}

// ListActiveJobs returns up to limit active jobs, newest first.
func (r *JobRepository) ListActiveJobs(ctx context.Context, limit int) ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.WithContext(ctx).
		Where("status = ?", model.JobStatusActive).
		Order("created_at DESC").Order("id ASC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

// EachJob walks every job in batches.
func (r *JobRepository) EachJob(ctx context.Context, batchSize int, fn func([]model.Job) error) error {
	var batch []model.Job
	return r.db.WithContext(ctx).FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
		return fn(batch)
	}).Error
}

// DeleteJob removes the job together with its embedding.
func (r *JobRepository) DeleteJob(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("entity_id = ? AND entity_kind = ?", id, matching.KindJob).
			Delete(&model.EmbeddingRecord{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Job{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
