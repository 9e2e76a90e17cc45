package repository

import (
	"context"
	"errors"

	"github.com/fadilmartias/talent-match/internal/matching"
	"github.com/fadilmartias/talent-match/internal/model"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EmbeddingRepository stores one embedding per (entity_id, entity_kind).
type EmbeddingRepository struct {
	db *gorm.DB
}

var _ matching.RecordRepository = (*EmbeddingRepository)(nil)

func NewEmbeddingRepository(db *gorm.DB) *EmbeddingRepository {
	return &EmbeddingRepository{db}
}

func (r *EmbeddingRepository) Find(ctx context.Context, key matching.Key) (*matching.Record, error) {
	var row model.EmbeddingRecord
	err := r.db.WithContext(ctx).
		Where("entity_id = ? AND entity_kind = ?", key.ID, key.Kind).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &matching.Record{
		Key:         key,
		Fingerprint: row.Fingerprint,
		Model:       row.Model,
		Vector:      row.Vector.Slice(),
		ComputedAt:  row.ComputedAt,
	}, nil
}

// Upsert replaces the entity's record in a single statement so readers never
// observe a half-written row.
func (r *EmbeddingRepository) Upsert(ctx context.Context, rec matching.Record) error {
	row := model.EmbeddingRecord{
		EntityID:    rec.Key.ID,
		EntityKind:  string(rec.Key.Kind),
		Fingerprint: rec.Fingerprint,
		Model:       rec.Model,
		Vector:      pgvector.NewVector(rec.Vector),
		ComputedAt:  rec.ComputedAt,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entity_id"}, {Name: "entity_kind"}},
		DoUpdates: clause.AssignmentColumns([]string{"fingerprint", "model", "vector", "computed_at"}),
	}).Create(&row).Error
}

func (r *EmbeddingRepository) Delete(ctx context.Context, key matching.Key) error {
	return r.db.WithContext(ctx).
		Where("entity_id = ? AND entity_kind = ?", key.ID, key.Kind).
		Delete(&model.EmbeddingRecord{}).Error
}
