package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	ApplicationStatusSubmitted    ApplicationStatus = "submitted"
	ApplicationStatusReviewed     ApplicationStatus = "reviewed"
	ApplicationStatusInterviewing ApplicationStatus = "interviewing"
	ApplicationStatusOffered      ApplicationStatus = "offered"
	ApplicationStatusRejected     ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn    ApplicationStatus = "withdrawn"
)

// Application is unique per (job, candidate) among non-withdrawn rows. The
// partial index is the authority; application code only pre-checks it.
type Application struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	JobID       uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_applications_job_candidate,where:status <> 'withdrawn'" json:"job_id"`
	CandidateID uuid.UUID         `gorm:"type:uuid;not null;index;uniqueIndex:idx_applications_job_candidate,where:status <> 'withdrawn'" json:"candidate_id"`
	CoverLetter string            `gorm:"type:text" json:"cover_letter"`
	Status      ApplicationStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (a *Application) TableName() string {
	return "applications"
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = ApplicationStatusSubmitted
	}
	return nil
}
