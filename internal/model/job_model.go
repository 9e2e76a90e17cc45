package model

import (
	"strings"
	"time"

	"github.com/fadilmartias/talent-match/internal/matching"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type JobStatus string

const (
	JobStatusActive JobStatus = "active"
	JobStatusClosed JobStatus = "closed"
)

type Job struct {
	ID           uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID    uuid.UUID                   `gorm:"type:uuid;not null;index" json:"company_id"`
	Title        string                      `gorm:"type:varchar(255);not null" json:"title"`
	Description  string                      `gorm:"type:text" json:"description"`
	Requirements datatypes.JSONSlice[string] `json:"requirements"`
	Status       JobStatus                   `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt    time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

func (j *Job) TableName() string {
	return "jobs"
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.Status == "" {
		j.Status = JobStatusActive
	}
	return nil
}

func (j *Job) MatchKey() matching.Key {
	return matching.Key{ID: j.ID, Kind: matching.KindJob}
}

// Jobs have no headline; the slot stays empty so field positions line up
// with profiles.
func (j *Job) MatchFields() []string {
	return []string{j.Title, "", j.Description, strings.Join(j.Requirements, " ")}
}

func (j *Job) MatchCreatedAt() time.Time {
	return j.CreatedAt
}
