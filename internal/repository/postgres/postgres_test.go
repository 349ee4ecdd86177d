package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"talentlink-appointments/internal/domain"
	"talentlink-appointments/internal/usecase"
	"talentlink-appointments/pkg/apperror"
	"talentlink-appointments/pkg/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPool connects to TEST_DATABASE_URL and resets the schema. Tests skip without it.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := database.NewPostgresConnection(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../../../migrations/000001_init_appointments.up.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `TRUNCATE appointment_slots, appointments, eligible_candidates RESTART IDENTITY`)
	require.NoError(t, err)
	return pool
}

type silentNotifier struct{}

func (silentNotifier) SendProposalEmail(context.Context, domain.ProposalEmail) error { return nil }
func (silentNotifier) SendFinalEmail(context.Context, domain.FinalEmail) error       { return nil }
func (silentNotifier) StartConversation(context.Context, int64, int64, int64) (string, error) {
	return "conv-1", nil
}
func (silentNotifier) PostMessage(context.Context, string, int64, string) error { return nil }

func testSlots() []time.Time {
	return []time.Time{
		time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 11, 2, 14, 0, 0, 0, time.UTC),
		time.Date(2026, 11, 3, 10, 0, 0, 0, time.UTC),
	}
}

func TestChooseSlotConcurrentlyOnPostgres(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)
	appointments := NewAppointmentRepository(pool)
	engine := usecase.NewAppointmentUsecase(
		database.NewTxManager(pool), appointments, NewEligibilityRepository(pool), silentNotifier{},
	)

	appt, err := domain.NewAppointment(1, 9, 5, "Backend Engineer", "Acme", testSlots())
	require.NoError(t, err)
	require.NoError(t, database.NewTxManager(pool).WithinTx(ctx, func(ctx context.Context) error {
		return appointments.Create(ctx, appt)
	}))

	const contenders = 3
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, contenders)
	)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = engine.ChooseSlot(ctx, 9, appt.ID, appt.ProposedSlots[i].ID)
		}(i)
	}
	close(start)
	wg.Wait()

	var wins int
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr), err)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	}
	assert.Equal(t, 1, wins, "errors: %v", errs)

	got, err := appointments.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentStatusConfirmed, got.Status)
	assert.Equal(t, int64(2), got.Version)
	slot, ok := got.ChosenSlot()
	require.True(t, ok)
	assert.True(t, got.ChosenDatetime.Equal(slot.ProposedDatetime))
}

func TestSaveTransitionRejectsStaleVersionOnPostgres(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)
	appointments := NewAppointmentRepository(pool)

	appt, err := domain.NewAppointment(1, 9, 5, "Backend Engineer", "Acme", testSlots())
	require.NoError(t, err)
	require.NoError(t, appointments.Create(ctx, appt))

	first, err := appointments.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	second, err := appointments.GetByID(ctx, appt.ID)
	require.NoError(t, err)

	require.NoError(t, first.Refuse())
	require.NoError(t, appointments.SaveTransition(ctx, first))

	_, err = second.Choose(second.ProposedSlots[0].ID)
	require.NoError(t, err)
	assert.ErrorIs(t, appointments.SaveTransition(ctx, second), domain.ErrConcurrentUpdate)

	got, err := appointments.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentStatusRefused, got.Status)
	assert.Nil(t, got.ChosenDatetime)
}
