package repository

import (
	"context"

	"github.com/fadilmartias/talent-match/internal/matching"
	"github.com/fadilmartias/talent-match/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db}
}

func (r *ProfileRepository) CreateProfile(ctx context.Context, p *model.Profile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProfileRepository) UpdateProfile(ctx context.Context, p *model.Profile) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ProfileRepository) FindProfileByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var p model.Profile
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

// ListCandidates returns up to limit candidate profiles, newest first.
func (r *ProfileRepository) ListCandidates(ctx context.Context, limit int) ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.db.WithContext(ctx).
		Where("profile_type = ?", model.ProfileTypeCandidate).
		Order("created_at DESC").Order("id ASC").
		Limit(limit).
		Find(&profiles).Error
	return profiles, err
}

func (r *ProfileRepository) EachProfile(ctx context.Context, batchSize int, fn func([]model.Profile) error) error {
	var batch []model.Profile
	return r.db.WithContext(ctx).FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
		return fn(batch)
	}).Error
}

// DeleteProfile removes the profile together with its embedding.
func (r *ProfileRepository) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("entity_id = ? AND entity_kind = ?", id, matching.KindProfile).
			Delete(&model.EmbeddingRecord{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Profile{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
