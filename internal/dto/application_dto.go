package dto

import (
	"time"

	"github.com/fadilmartias/talent-match/internal/model"
	"github.com/google/uuid"
)

type SubmitApplicationRequest struct {
	JobID       string `json:"job_id"`
	CoverLetter string `json:"cover_letter"`
}

type UpdateApplicationStatusRequest struct {
	Status string `json:"status"`
}

type ApplicationDTO struct {
	ID          uuid.UUID `json:"id"`
	JobID       uuid.UUID `json:"job_id"`
	CandidateID uuid.UUID `json:"candidate_id"`
	CoverLetter string    `json:"cover_letter,omitempty"`
	Status      string    `json:"status"` // submitted, reviewed, interviewing, offered, rejected, withdrawn
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewApplicationDTO(app *model.Application) ApplicationDTO {
	return ApplicationDTO{
		ID:          app.ID,
		JobID:       app.JobID,
		CandidateID: app.CandidateID,
		CoverLetter: app.CoverLetter,
		Status:      string(app.Status),
		CreatedAt:   app.CreatedAt,
		UpdatedAt:   app.UpdatedAt,
	}
}

func NewApplicationDTOs(apps []model.Application) []ApplicationDTO {
	out := make([]ApplicationDTO, len(apps))
	for i := range apps {
		out[i] = NewApplicationDTO(&apps[i])
	}
	return out
}
