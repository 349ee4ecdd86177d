package sqlite

import (
	"context"
	"errors"
	"fmt"

	"talentlink-appointments/internal/domain"
	"talentlink-appointments/pkg/database"

	"gorm.io/gorm"
)

type appointmentRepo struct {
	db *gorm.DB
}

// NewAppointmentRepository creates a GORM-backed appointment repository
func NewAppointmentRepository(db *gorm.DB) domain.AppointmentRepository {
	return &appointmentRepo{db: db}
}

func (r *appointmentRepo) Create(ctx context.Context, appt *domain.Appointment) error {
	row := appointmentRow{
		RecruiterID:   appt.RecruiterID,
		CandidateID:   appt.CandidateID,
		OfferID:       appt.OfferID,
		PositionTitle: appt.PositionTitle,
		CompanyName:   appt.CompanyName,
		Status:        string(appt.Status),
		Version:       appt.Version,
		CreatedAt:     appt.CreatedAt,
		UpdatedAt:     appt.UpdatedAt,
	}
	for _, s := range appt.ProposedSlots {
		row.Slots = append(row.Slots, appointmentSlotRow{
			ProposedDatetime: s.ProposedDatetime,
			IsChosen:         s.IsChosen,
		})
	}

	// Slots are inserted through the association.
	if err := database.GormConn(ctx, r.db).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert appointment: %w", err)
	}

	appt.ID = row.ID
	for i := range appt.ProposedSlots {
		appt.ProposedSlots[i].ID = row.Slots[i].ID
		appt.ProposedSlots[i].AppointmentID = row.ID
	}
	return nil
}

func (r *appointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	db := database.GormConn(ctx, r.db)

	var row appointmentRow
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	slots, err := r.slotsFor(db, []int64{row.ID})
	if err != nil {
		return nil, err
	}
	appt := row.toDomain(slots[row.ID])
	return &appt, nil
}

// GetByIDForUpdate relies on the version check in SaveTransition; SQLite has no row locks.
func (r *appointmentRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Appointment, error) {
	return r.GetByID(ctx, id)
}

func (r *appointmentRepo) SaveTransition(ctx context.Context, appt *domain.Appointment) error {
	db := database.GormConn(ctx, r.db)

	var mode *string
	if appt.Mode != nil {
		m := string(*appt.Mode)
		mode = &m
	}

	result := db.Model(&appointmentRow{}).
		Where("id = ? AND version = ?", appt.ID, appt.Version).
		Updates(map[string]any{
			"status":           string(appt.Status),
			"chosen_datetime":  appt.ChosenDatetime,
			"mode":             mode,
			"location_details": appt.LocationDetails,
			"additional_notes": appt.AdditionalNotes,
			"updated_at":       appt.UpdatedAt,
			"version":          gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update appointment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrConcurrentUpdate
	}

	for _, s := range appt.ProposedSlots {
		err := db.Model(&appointmentSlotRow{}).
			Where("id = ? AND appointment_id = ?", s.ID, appt.ID).
			Update("is_chosen", s.IsChosen).Error
		if err != nil {
			return fmt.Errorf("failed to update appointment slot: %w", err)
		}
	}

	appt.Version++
	return nil
}

func (r *appointmentRepo) ListByRecruiter(ctx context.Context, recruiterID int64) ([]domain.Appointment, error) {
	return r.list(ctx, "recruiter_id = ?", recruiterID)
}

func (r *appointmentRepo) ListByCandidate(ctx context.Context, candidateID int64) ([]domain.Appointment, error) {
	return r.list(ctx, "candidate_id = ?", candidateID)
}

func (r *appointmentRepo) list(ctx context.Context, where string, id int64) ([]domain.Appointment, error) {
	db := database.GormConn(ctx, r.db)

	var rows []appointmentRow
	if err := db.Where(where, id).Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Appointment, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	slots, err := r.slotsFor(db, ids)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out = append(out, row.toDomain(slots[row.ID]))
	}
	return out, nil
}

func (r *appointmentRepo) slotsFor(db *gorm.DB, appointmentIDs []int64) (map[int64][]appointmentSlotRow, error) {
	var rows []appointmentSlotRow
	err := db.Where("appointment_id IN ?", appointmentIDs).
		Order("proposed_datetime ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[int64][]appointmentSlotRow, len(appointmentIDs))
	for _, s := range rows {
		out[s.AppointmentID] = append(out[s.AppointmentID], s)
	}
	return out, nil
}
