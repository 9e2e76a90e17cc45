package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// EmbeddingRecord holds the single current embedding of a profile or job.
// The composite primary key makes the upsert by entity atomic.
type EmbeddingRecord struct {
	EntityID    uuid.UUID       `gorm:"type:uuid;primaryKey" json:"entity_id"`
	EntityKind  string          `gorm:"type:varchar(20);primaryKey" json:"entity_kind"`
	Fingerprint string          `gorm:"type:char(64);not null" json:"fingerprint"`
	Model       string          `gorm:"type:varchar(100)" json:"model"`
	Vector      pgvector.Vector `gorm:"type:vector" json:"-"`
	ComputedAt  time.Time       `json:"computed_at"`
}

func (r *EmbeddingRecord) TableName() string {
	return "embedding_records"
}
