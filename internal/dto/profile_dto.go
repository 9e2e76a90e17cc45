package dto

import (
	"time"

	"github.com/fadilmartias/talent-match/internal/model"
	"github.com/google/uuid"
)

type ProfileDTO struct {
	ID          uuid.UUID `json:"id"`
	ProfileType string    `json:"profile_type"`
	Name        string    `json:"name"`
	Headline    string    `json:"headline,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	Skills      []string  `json:"skills"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewProfileDTO(p *model.Profile) ProfileDTO {
	skills := []string(p.Skills)
	if skills == nil {
		skills = []string{}
	}
	return ProfileDTO{
		ID:          p.ID,
		ProfileType: string(p.ProfileType),
		Name:        p.Name,
		Headline:    p.Headline,
		Bio:         p.Bio,
		Skills:      skills,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
