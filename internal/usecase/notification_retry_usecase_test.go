package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"talentlink-appointments/internal/domain"
	"talentlink-appointments/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func proposalJob(id string, attempts int) domain.NotificationJob {
	return domain.NotificationJob{
		ID:            id,
		Kind:          domain.NotificationKindProposalEmail,
		AppointmentID: 1,
		Proposal: &domain.ProposalEmail{
			To:            "a@x.com",
			CandidateName: "A. Lee",
			PositionTitle: "Engineer",
			CompanyName:   "Acme",
			Slots:         []time.Time{slotT0, slotT1, slotT2},
		},
		Attempts:   attempts,
		EnqueuedAt: time.Now().UTC(),
	}
}

func TestNotificationRetryProcessBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty queue is a no-op", func(t *testing.T) {
		notifier := new(MockNotifier)
		uc := usecase.NewNotificationRetryUsecase(&memQueue{}, notifier, 10, 100)

		n, err := uc.ProcessBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		notifier.AssertExpectations(t)
	})

	t.Run("Delivered jobs leave the queue", func(t *testing.T) {
		queue := &memQueue{}
		require.NoError(t, queue.Enqueue(ctx, proposalJob("a", 1)))
		require.NoError(t, queue.Enqueue(ctx, domain.NotificationJob{
			ID:   "b",
			Kind: domain.NotificationKindRefusalMessage,
			Refusal: &domain.RefusalMessage{
				CandidateID: 9, RecruiterID: 1, OfferID: 5, Text: "new dates please",
			},
			Attempts: 1,
		}))

		notifier := new(MockNotifier)
		notifier.On("SendProposalEmail", mock.Anything, mock.Anything).Return(nil).Once()
		notifier.On("StartConversation", mock.Anything, int64(9), int64(1), int64(5)).Return("conv-3", nil).Once()
		notifier.On("PostMessage", mock.Anything, "conv-3", int64(9), "new dates please").Return(nil).Once()

		uc := usecase.NewNotificationRetryUsecase(queue, notifier, 10, 100)
		n, err := uc.ProcessBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Empty(t, queue.snapshot())
		notifier.AssertExpectations(t)
	})

	t.Run("Refusal with a known conversation only reposts the message", func(t *testing.T) {
		queue := &memQueue{}
		require.NoError(t, queue.Enqueue(ctx, domain.NotificationJob{
			ID:   "c",
			Kind: domain.NotificationKindRefusalMessage,
			Refusal: &domain.RefusalMessage{
				CandidateID: 9, RecruiterID: 1, OfferID: 5, Text: "new dates please", ConversationID: "conv-7",
			},
			Attempts: 1,
		}))

		notifier := new(MockNotifier)
		notifier.On("PostMessage", mock.Anything, "conv-7", int64(9), "new dates please").Return(nil).Once()

		uc := usecase.NewNotificationRetryUsecase(queue, notifier, 10, 100)
		_, err := uc.ProcessBatch(ctx)
		require.NoError(t, err)
		assert.Empty(t, queue.snapshot())
		notifier.AssertNotCalled(t, "StartConversation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		notifier.AssertExpectations(t)
	})

	t.Run("Requeued refusal remembers the conversation opened during the retry", func(t *testing.T) {
		queue := &memQueue{}
		require.NoError(t, queue.Enqueue(ctx, domain.NotificationJob{
			ID:       "d",
			Kind:     domain.NotificationKindRefusalMessage,
			Refusal:  &domain.RefusalMessage{CandidateID: 9, RecruiterID: 1, OfferID: 5, Text: "x"},
			Attempts: 1,
		}))

		notifier := new(MockNotifier)
		notifier.On("StartConversation", mock.Anything, int64(9), int64(1), int64(5)).Return("conv-8", nil).Once()
		notifier.On("PostMessage", mock.Anything, "conv-8", int64(9), "x").Return(errors.New("timeout")).Once()

		uc := usecase.NewNotificationRetryUsecase(queue, notifier, 10, 100)
		_, err := uc.ProcessBatch(ctx)
		require.NoError(t, err)

		jobs := queue.snapshot()
		require.Len(t, jobs, 1)
		assert.Equal(t, 2, jobs[0].Attempts)
		assert.Equal(t, "conv-8", jobs[0].Refusal.ConversationID)
	})

	t.Run("Failed jobs are requeued with another attempt", func(t *testing.T) {
		queue := &memQueue{}
		require.NoError(t, queue.Enqueue(ctx, proposalJob("a", 1)))

		notifier := new(MockNotifier)
		notifier.On("SendProposalEmail", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()

		uc := usecase.NewNotificationRetryUsecase(queue, notifier, 10, 100)
		_, err := uc.ProcessBatch(ctx)
		require.NoError(t, err)

		jobs := queue.snapshot()
		require.Len(t, jobs, 1)
		assert.Equal(t, "a", jobs[0].ID)
		assert.Equal(t, 2, jobs[0].Attempts)
		assert.Equal(t, "smtp down", jobs[0].LastError)
	})

	t.Run("Jobs are dropped after the last attempt", func(t *testing.T) {
		queue := &memQueue{}
		require.NoError(t, queue.Enqueue(ctx, proposalJob("a", 4)))

		notifier := new(MockNotifier)
		notifier.On("SendProposalEmail", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()

		uc := usecase.NewNotificationRetryUsecase(queue, notifier, 10, 100)
		_, err := uc.ProcessBatch(ctx)
		require.NoError(t, err)
		assert.Empty(t, queue.snapshot())
	})

	t.Run("Batch size bounds each pass", func(t *testing.T) {
		queue := &memQueue{}
		for _, id := range []string{"a", "b", "c"} {
			require.NoError(t, queue.Enqueue(ctx, proposalJob(id, 1)))
		}
		notifier := new(MockNotifier)
		notifier.On("SendProposalEmail", mock.Anything, mock.Anything).Return(nil)

		uc := usecase.NewNotificationRetryUsecase(queue, notifier, 2, 100)
		n, err := uc.ProcessBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Len(t, queue.snapshot(), 1)
	})
}
