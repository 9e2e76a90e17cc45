package model

import (
	"strings"
	"time"

	"github.com/fadilmartias/talent-match/internal/matching"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProfileType string

const (
	ProfileTypeCandidate ProfileType = "candidate"
	ProfileTypeCompany   ProfileType = "company"
)

type Profile struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileType ProfileType                 `gorm:"type:varchar(20);not null;index" json:"profile_type"`
	Name        string                      `gorm:"type:varchar(255);not null" json:"name"`
	Headline    string                      `gorm:"type:varchar(255)" json:"headline"`
	Bio         string                      `gorm:"type:text" json:"bio"`
	Skills      datatypes.JSONSlice[string] `json:"skills"`
	CreatedAt   time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

func (p *Profile) TableName() string {
	return "profiles"
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Profile) IsCandidate() bool {
	return p.ProfileType == ProfileTypeCandidate
}

func (p *Profile) MatchKey() matching.Key {
	return matching.Key{ID: p.ID, Kind: matching.KindProfile}
}

func (p *Profile) MatchFields() []string {
	return []string{p.Name, p.Headline, p.Bio, strings.Join(p.Skills, " ")}
}

func (p *Profile) MatchCreatedAt() time.Time {
	return p.CreatedAt
}
