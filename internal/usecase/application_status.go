package usecase

import "github.com/fadilmartias/talent-match/internal/model"

type actorRole int

const (
	roleNone actorRole = iota
	roleCandidate
	roleCompany
)

func (r actorRole) String() string {
	switch r {
	case roleCandidate:
		return "candidate"
	case roleCompany:
		return "company"
	}
	return "none"
}

// companyTransitions is the hiring pipeline. Stages cannot be skipped and
// offered, rejected and withdrawn are terminal.
var companyTransitions = map[model.ApplicationStatus][]model.ApplicationStatus{
	model.ApplicationStatusSubmitted:    {model.ApplicationStatusReviewed, model.ApplicationStatusRejected},
	model.ApplicationStatusReviewed:     {model.ApplicationStatusInterviewing, model.ApplicationStatusRejected},
	model.ApplicationStatusInterviewing: {model.ApplicationStatusOffered, model.ApplicationStatusRejected},
}

func isKnownStatus(s model.ApplicationStatus) bool {
	switch s {
	case model.ApplicationStatusSubmitted,
		model.ApplicationStatusReviewed,
		model.ApplicationStatusInterviewing,
		model.ApplicationStatusOffered,
		model.ApplicationStatusRejected,
		model.ApplicationStatusWithdrawn:
		return true
	}
	return false
}

// canTransition reports whether role may move an application from -> to.
// Candidates may only withdraw, and only while the application is still open.
func canTransition(role actorRole, from, to model.ApplicationStatus) bool {
	switch role {
	case roleCompany:
		for _, next := range companyTransitions[from] {
			if next == to {
				return true
			}
		}
	case roleCandidate:
		_, open := companyTransitions[from]
		return open && to == model.ApplicationStatusWithdrawn
	}
	return false
}
