package sqlite

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"talentlink-appointments/internal/domain"
	"talentlink-appointments/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.NewSQLiteConnection(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return db
}

func seedEligible(t *testing.T, repo domain.EligibilityRepository, recruiterID, candidateID, offerID int64) {
	t.Helper()
	created, err := repo.Insert(context.Background(), &domain.EligibleCandidate{
		RecruiterID:       recruiterID,
		CandidateID:       candidateID,
		OfferID:           offerID,
		CandidateName:     "Jane Doe",
		CandidateEmail:    "jane@example.com",
		PositionTitle:     "Backend Engineer",
		CompanyName:       "Acme",
		ApplicationStatus: domain.PipelineStatusInterview,
	})
	require.NoError(t, err)
	require.True(t, created)
}

func TestEligibilityRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewEligibilityRepository(newTestDB(t))

	seedEligible(t, repo, 1, 9, 5)

	t.Run("Duplicate key is ignored", func(t *testing.T) {
		created, err := repo.Insert(ctx, &domain.EligibleCandidate{
			RecruiterID: 1, CandidateID: 9, OfferID: 5,
			CandidateName: "Other", CandidateEmail: "other@example.com",
			PositionTitle: "Other", CompanyName: "Other", ApplicationStatus: "offer",
		})
		require.NoError(t, err)
		assert.False(t, created)

		list, err := repo.ListByRecruiter(ctx, 1)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Jane Doe", list[0].CandidateName)
	})

	t.Run("Get and mark", func(t *testing.T) {
		c, err := repo.Get(ctx, 1, 9, 5)
		require.NoError(t, err)
		assert.False(t, c.HasAppointment)

		require.NoError(t, repo.MarkHasAppointment(ctx, 1, 9, 5))
		c, err = repo.GetForUpdate(ctx, 1, 9, 5)
		require.NoError(t, err)
		assert.True(t, c.HasAppointment)
	})

	t.Run("Missing key", func(t *testing.T) {
		_, err := repo.Get(ctx, 1, 9, 6)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, repo.MarkHasAppointment(ctx, 2, 9, 5), domain.ErrNotFound)
	})

	t.Run("Other recruiters see nothing", func(t *testing.T) {
		list, err := repo.ListByRecruiter(ctx, 2)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestAppointmentRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewAppointmentRepository(db)

	slots := []time.Time{
		time.Date(2026, 11, 3, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 11, 2, 14, 0, 0, 0, time.UTC),
	}
	appt, err := domain.NewAppointment(1, 9, 5, "Backend Engineer", "Acme", slots)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, appt))
	require.NotZero(t, appt.ID)
	for _, s := range appt.ProposedSlots {
		assert.NotZero(t, s.ID)
		assert.Equal(t, appt.ID, s.AppointmentID)
	}

	t.Run("Round trip orders slots chronologically", func(t *testing.T) {
		got, err := repo.GetByID(ctx, appt.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.AppointmentStatusPending, got.Status)
		assert.Equal(t, int64(1), got.Version)
		require.Len(t, got.ProposedSlots, 3)
		assert.True(t, got.ProposedSlots[0].ProposedDatetime.Equal(slots[1]))
		assert.True(t, got.ProposedSlots[2].ProposedDatetime.Equal(slots[0]))
	})

	t.Run("Saves a transition and bumps the version", func(t *testing.T) {
		got, err := repo.GetByIDForUpdate(ctx, appt.ID)
		require.NoError(t, err)
		chosenID := got.ProposedSlots[1].ID
		_, err = got.Choose(chosenID)
		require.NoError(t, err)
		require.NoError(t, repo.SaveTransition(ctx, got))
		assert.Equal(t, int64(2), got.Version)

		reloaded, err := repo.GetByID(ctx, appt.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.AppointmentStatusConfirmed, reloaded.Status)
		require.NotNil(t, reloaded.ChosenDatetime)
		slot, ok := reloaded.ChosenSlot()
		require.True(t, ok)
		assert.Equal(t, chosenID, slot.ID)
		assert.True(t, reloaded.ChosenDatetime.Equal(slot.ProposedDatetime))
	})

	t.Run("Stale version is rejected", func(t *testing.T) {
		stale, err := repo.GetByID(ctx, appt.ID)
		require.NoError(t, err)
		stale.Version = 1
		require.NoError(t, stale.Finalize(domain.AppointmentModePhone, "+33 1 23 45 67 89", ""))

		assert.ErrorIs(t, repo.SaveTransition(ctx, stale), domain.ErrConcurrentUpdate)

		reloaded, err := repo.GetByID(ctx, appt.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.AppointmentStatusConfirmed, reloaded.Status)
		assert.Nil(t, reloaded.Mode)
	})

	t.Run("Finalize without notes stores null", func(t *testing.T) {
		got, err := repo.GetByIDForUpdate(ctx, appt.ID)
		require.NoError(t, err)
		require.NoError(t, got.Finalize(domain.AppointmentModePhone, "+33 1 23 45 67 89", ""))
		require.NoError(t, repo.SaveTransition(ctx, got))

		var notes *string
		require.NoError(t, db.Table("appointments").Select("additional_notes").Where("id = ?", appt.ID).Row().Scan(&notes))
		assert.Nil(t, notes)

		reloaded, err := repo.GetByID(ctx, appt.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.AppointmentStatusCompleted, reloaded.Status)
		assert.Nil(t, reloaded.AdditionalNotes)
	})

	t.Run("Lists by party", func(t *testing.T) {
		second, err := domain.NewAppointment(1, 10, 5, "Backend Engineer", "Acme", slots)
		require.NoError(t, err)
		second.CreatedAt = appt.CreatedAt.Add(time.Minute)
		require.NoError(t, repo.Create(ctx, second))

		byRecruiter, err := repo.ListByRecruiter(ctx, 1)
		require.NoError(t, err)
		require.Len(t, byRecruiter, 2)
		assert.Equal(t, second.ID, byRecruiter[0].ID)
		assert.Len(t, byRecruiter[1].ProposedSlots, 3)

		byCandidate, err := repo.ListByCandidate(ctx, 9)
		require.NoError(t, err)
		require.Len(t, byCandidate, 1)
		assert.Equal(t, appt.ID, byCandidate[0].ID)

		none, err := repo.ListByCandidate(ctx, 42)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("Missing appointment", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 9999)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestGormTxManagerRollsBack(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	tx := database.NewGormTxManager(db)
	repo := NewEligibilityRepository(db)

	boom := fmt.Errorf("boom")
	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		_, err := repo.Insert(ctx, &domain.EligibleCandidate{
			RecruiterID: 1, CandidateID: 2, OfferID: 3,
			CandidateName: "A", CandidateEmail: "a@example.com",
			PositionTitle: "P", CompanyName: "C", ApplicationStatus: "review",
		})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.Get(ctx, 1, 2, 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
