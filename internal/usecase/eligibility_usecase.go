package usecase

import (
	"context"
	"strings"
	"time"

	"talentlink-appointments/internal/domain"
	"talentlink-appointments/pkg/apperror"
	"talentlink-appointments/pkg/logger"
)

type eligibilityUsecase struct {
	repo             domain.EligibilityRepository
	eligibleStatuses map[string]struct{}
}

// NewEligibilityUsecase creates the eligibility registry. eligibleStatuses lists the
// pipeline statuses that make a candidate eligible when reported by the applications service.
func NewEligibilityUsecase(repo domain.EligibilityRepository, eligibleStatuses []string) domain.EligibilityUsecase {
	set := make(map[string]struct{}, len(eligibleStatuses))
	for _, s := range eligibleStatuses {
		set[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	return &eligibilityUsecase{repo: repo, eligibleStatuses: set}
}

// Register records that the candidate may be offered an interview. Registering
// an existing (recruiter, candidate, offer) key is a successful no-op.
func (u *eligibilityUsecase) Register(ctx context.Context, recruiterID int64, input domain.EligibleCandidateInput) error {
	candidate := &domain.EligibleCandidate{
		RecruiterID:       recruiterID,
		CandidateID:       input.CandidateID,
		OfferID:           input.OfferID,
		CandidateName:     strings.TrimSpace(input.CandidateName),
		CandidateEmail:    strings.TrimSpace(input.CandidateEmail),
		PositionTitle:     strings.TrimSpace(input.PositionTitle),
		CompanyName:       strings.TrimSpace(input.CompanyName),
		ApplicationStatus: strings.ToLower(strings.TrimSpace(input.ApplicationStatus)),
		AddedAt:           time.Now().UTC(),
	}

	created, err := u.repo.Insert(ctx, candidate)
	if err != nil {
		logger.Log.ErrorContext(ctx, "failed to register eligible candidate",
			"recruiter_id", recruiterID,
			"candidate_id", input.CandidateID,
			"offer_id", input.OfferID,
			"error", err,
		)
		return apperror.Internal(err)
	}

	logger.Log.InfoContext(ctx, "eligible candidate registered",
		"recruiter_id", recruiterID,
		"candidate_id", input.CandidateID,
		"offer_id", input.OfferID,
		"created", created,
	)
	return nil
}

func (u *eligibilityUsecase) ListForRecruiter(ctx context.Context, recruiterID int64) ([]domain.EligibleCandidate, error) {
	candidates, err := u.repo.ListByRecruiter(ctx, recruiterID)
	if err != nil {
		logger.Log.ErrorContext(ctx, "failed to list eligible candidates", "recruiter_id", recruiterID, "error", err)
		return nil, apperror.Internal(err)
	}
	return candidates, nil
}

func (u *eligibilityUsecase) HandlePipelineEvent(ctx context.Context, event domain.PipelineEvent) (bool, error) {
	status := strings.ToLower(strings.TrimSpace(event.ApplicationStatus))
	if _, ok := u.eligibleStatuses[status]; !ok {
		logger.Log.DebugContext(ctx, "pipeline event ignored",
			"recruiter_id", event.RecruiterID,
			"candidate_id", event.CandidateID,
			"offer_id", event.OfferID,
			"status", status,
		)
		return false, nil
	}

	if err := u.Register(ctx, event.RecruiterID, event.EligibleCandidateInput); err != nil {
		return false, err
	}
	return true, nil
}
