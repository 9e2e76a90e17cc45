// Package matching turns profiles and job postings into embeddings and ranks
// them against each other.
package matching

import (
	"time"

	"github.com/google/uuid"
)

// EntityKind separates the two embedding namespaces. Candidate and company
// profiles share KindProfile.
type EntityKind string

const (
	KindProfile EntityKind = "profile"
	KindJob     EntityKind = "job"
)

type Key struct {
	ID   uuid.UUID
	Kind EntityKind
}

func (k Key) String() string {
	return string(k.Kind) + ":" + k.ID.String()
}

// Entity is anything the engine can embed and rank.
type Entity interface {
	MatchKey() Key
	// MatchFields returns name/title, headline, bio/description and the
	// skills/requirements text, in that order. Absent fields are empty strings.
	MatchFields() []string
	MatchCreatedAt() time.Time
}

// MatchResult is one scored target for an anchor. It is never persisted.
type MatchResult struct {
	AnchorID   uuid.UUID  `json:"anchor_id"`
	TargetID   uuid.UUID  `json:"target_id"`
	TargetKind EntityKind `json:"target_kind"`
	Score      int        `json:"score"`
	// Stale is set when either side was scored from an embedding whose
	// fingerprint no longer matches the live entity.
	Stale      bool      `json:"stale,omitempty"`
	ComputedAt time.Time `json:"computed_at"`
}
