package usecase

import (
	"context"
	"strings"

	"github.com/fadilmartias/talent-match/internal/apperror"
	"github.com/fadilmartias/talent-match/internal/model"
	"github.com/fadilmartias/talent-match/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBioChars = 20000

type ProfileUsecase struct {
	profileRepo *repository.ProfileRepository
	logger      *zap.Logger
}

func NewProfileUsecase(profileRepo *repository.ProfileRepository, logger *zap.Logger) *ProfileUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileUsecase{profileRepo: profileRepo, logger: logger.Named("profiles")}
}

// ImportResume replaces a candidate's bio with text extracted from a résumé.
// The changed bio changes the profile's fingerprint, so the next match
// request re-embeds it.
func (uc *ProfileUsecase) ImportResume(ctx context.Context, profileID, actorID uuid.UUID, text string) (*model.Profile, error) {
	if profileID != actorID {
		return nil, apperror.New(apperror.KindForbidden, "profiles can only be edited by their owner")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.New(apperror.KindInvalidArgument, "no text could be extracted from the résumé")
	}
	if len(text) > maxBioChars {
		text = strings.ToValidUTF8(text[:maxBioChars], "")
	}

	profile, err := uc.profileRepo.FindProfileByID(ctx, profileID)
	if err != nil {
		return nil, lookupError(err, "profile", profileID)
	}
	if !profile.IsCandidate() {
		return nil, apperror.New(apperror.KindInvalidArgument, "résumés can only be imported into candidate profiles")
	}

	profile.Bio = text
	if err := uc.profileRepo.UpdateProfile(ctx, profile); err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, err, "saving profile")
	}
	uc.logger.Info("résumé imported", zap.String("profile_id", profileID.String()), zap.Int("chars", len(text)))
	return profile, nil
}
