package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"talentlink-appointments/internal/domain"
	"talentlink-appointments/internal/usecase"
	"talentlink-appointments/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultEligibleStatuses = []string{"review", "interview", "offer"}

func scenarioCandidate() domain.EligibleCandidateInput {
	return domain.EligibleCandidateInput{
		CandidateID:       9,
		OfferID:           5,
		CandidateName:     "A. Lee",
		CandidateEmail:    "a@x.com",
		PositionTitle:     "Engineer",
		CompanyName:       "Acme",
		ApplicationStatus: "interview",
	}
}

func TestEligibilityRegister(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	uc := usecase.NewEligibilityUsecase(store.Eligibility(), defaultEligibleStatuses)

	t.Run("Registers a candidate without an appointment", func(t *testing.T) {
		require.NoError(t, uc.Register(ctx, 1, scenarioCandidate()))

		c, ok := store.eligible(1, 9, 5)
		require.True(t, ok)
		assert.Equal(t, "A. Lee", c.CandidateName)
		assert.Equal(t, "a@x.com", c.CandidateEmail)
		assert.False(t, c.HasAppointment)
		assert.False(t, c.AddedAt.IsZero())
	})

	t.Run("Registering twice is a no-op success", func(t *testing.T) {
		again := scenarioCandidate()
		again.CandidateName = "Someone Else"
		require.NoError(t, uc.Register(ctx, 1, again))

		list, err := uc.ListForRecruiter(ctx, 1)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "A. Lee", list[0].CandidateName)
	})

	t.Run("Lists only the recruiter's own candidates", func(t *testing.T) {
		other := scenarioCandidate()
		other.CandidateID = 10
		require.NoError(t, uc.Register(ctx, 2, other))

		list, err := uc.ListForRecruiter(ctx, 2)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, int64(10), list[0].CandidateID)
	})
}

type failingEligibilityRepo struct {
	domain.EligibilityRepository
}

func (failingEligibilityRepo) Insert(context.Context, *domain.EligibleCandidate) (bool, error) {
	return false, errors.New("connection refused")
}

func TestEligibilityRegisterStorageFailure(t *testing.T) {
	uc := usecase.NewEligibilityUsecase(failingEligibilityRepo{}, defaultEligibleStatuses)

	err := uc.Register(context.Background(), 1, scenarioCandidate())
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apperror.CodeOf(err))
	assert.NotContains(t, err.Error(), "connection refused")
}

func TestHandlePipelineEvent(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	uc := usecase.NewEligibilityUsecase(store.Eligibility(), []string{"Interview", " offer "})

	t.Run("Eligible status registers the candidate", func(t *testing.T) {
		event := domain.PipelineEvent{RecruiterID: 1, EligibleCandidateInput: scenarioCandidate()}
		event.ApplicationStatus = "INTERVIEW"

		registered, err := uc.HandlePipelineEvent(ctx, event)
		require.NoError(t, err)
		assert.True(t, registered)

		c, ok := store.eligible(1, 9, 5)
		require.True(t, ok)
		assert.Equal(t, "interview", c.ApplicationStatus)
	})

	t.Run("Other statuses are ignored", func(t *testing.T) {
		event := domain.PipelineEvent{RecruiterID: 1, EligibleCandidateInput: scenarioCandidate()}
		event.CandidateID = 11
		event.ApplicationStatus = "rejected"

		registered, err := uc.HandlePipelineEvent(ctx, event)
		require.NoError(t, err)
		assert.False(t, registered)

		_, ok := store.eligible(1, 11, 5)
		assert.False(t, ok)
	})
}
