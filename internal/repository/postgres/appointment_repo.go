package postgres

import (
	"context"
	"errors"
	"fmt"

	"talentlink-appointments/internal/domain"
	"talentlink-appointments/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type appointmentRepo struct {
	db *pgxpool.Pool
}

// NewAppointmentRepository creates a new appointment repository
func NewAppointmentRepository(db *pgxpool.Pool) domain.AppointmentRepository {
	return &appointmentRepo{db: db}
}

const appointmentColumns = `
	id, recruiter_id, candidate_id, offer_id, position_title, company_name, status,
	chosen_datetime, mode, location_details, additional_notes, version, created_at, updated_at`

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var (
		a      domain.Appointment
		status string
		mode   *string
	)
	err := row.Scan(
		&a.ID, &a.RecruiterID, &a.CandidateID, &a.OfferID, &a.PositionTitle, &a.CompanyName, &status,
		&a.ChosenDatetime, &mode, &a.LocationDetails, &a.AdditionalNotes, &a.Version, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = domain.AppointmentStatus(status)
	if mode != nil {
		m := domain.AppointmentMode(*mode)
		a.Mode = &m
	}
	return &a, nil
}

// Create inserts the appointment and its slots. Callers run it inside a transaction.
func (r *appointmentRepo) Create(ctx context.Context, appt *domain.Appointment) error {
	conn := database.Conn(ctx, r.db)

	query := `
		INSERT INTO appointments (
			recruiter_id, candidate_id, offer_id, position_title, company_name,
			status, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := conn.QueryRow(ctx, query,
		appt.RecruiterID, appt.CandidateID, appt.OfferID, appt.PositionTitle, appt.CompanyName,
		string(appt.Status), appt.Version, appt.CreatedAt, appt.UpdatedAt,
	).Scan(&appt.ID)
	if err != nil {
		return fmt.Errorf("failed to insert appointment: %w", err)
	}

	slotQuery := `
		INSERT INTO appointment_slots (appointment_id, proposed_datetime, is_chosen)
		VALUES ($1, $2, $3)
		RETURNING id`
	for i := range appt.ProposedSlots {
		slot := &appt.ProposedSlots[i]
		slot.AppointmentID = appt.ID
		if err := conn.QueryRow(ctx, slotQuery, appt.ID, slot.ProposedDatetime, slot.IsChosen).Scan(&slot.ID); err != nil {
			return fmt.Errorf("failed to insert appointment slot: %w", err)
		}
	}
	return nil
}

func (r *appointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	return r.getByID(ctx, id, "")
}

// GetByIDForUpdate takes a row lock so concurrent transitions queue behind each other
func (r *appointmentRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Appointment, error) {
	return r.getByID(ctx, id, " FOR UPDATE")
}

func (r *appointmentRepo) getByID(ctx context.Context, id int64, lock string) (*domain.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1` + lock

	appt, err := scanAppointment(database.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	slots, err := r.slotsFor(ctx, []int64{appt.ID})
	if err != nil {
		return nil, err
	}
	appt.ProposedSlots = slots[appt.ID]
	return appt, nil
}

// SaveTransition writes the aggregate back if nobody else did in the meantime
func (r *appointmentRepo) SaveTransition(ctx context.Context, appt *domain.Appointment) error {
	conn := database.Conn(ctx, r.db)

	var mode *string
	if appt.Mode != nil {
		m := string(*appt.Mode)
		mode = &m
	}

	query := `
		UPDATE appointments
		SET status = $3, chosen_datetime = $4, mode = $5, location_details = $6,
			additional_notes = $7, updated_at = $8, version = version + 1
		WHERE id = $1 AND version = $2`
	result, err := conn.Exec(ctx, query,
		appt.ID, appt.Version, string(appt.Status), appt.ChosenDatetime, mode,
		appt.LocationDetails, appt.AdditionalNotes, appt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrConcurrentUpdate
	}

	for _, slot := range appt.ProposedSlots {
		_, err := conn.Exec(ctx,
			`UPDATE appointment_slots SET is_chosen = $3 WHERE id = $1 AND appointment_id = $2`,
			slot.ID, appt.ID, slot.IsChosen,
		)
		if err != nil {
			return fmt.Errorf("failed to update appointment slot: %w", err)
		}
	}

	appt.Version++
	return nil
}

func (r *appointmentRepo) ListByRecruiter(ctx context.Context, recruiterID int64) ([]domain.Appointment, error) {
	return r.list(ctx, "recruiter_id", recruiterID)
}

func (r *appointmentRepo) ListByCandidate(ctx context.Context, candidateID int64) ([]domain.Appointment, error) {
	return r.list(ctx, "candidate_id", candidateID)
}

// list loads appointments filtered on column, then all their slots in one query
func (r *appointmentRepo) list(ctx context.Context, column string, id int64) ([]domain.Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE ` + column + ` = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appointments := []domain.Appointment{}
	var ids []int64
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, *appt)
		ids = append(ids, appt.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return appointments, nil
	}

	slots, err := r.slotsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range appointments {
		appointments[i].ProposedSlots = slots[appointments[i].ID]
	}
	return appointments, nil
}

func (r *appointmentRepo) slotsFor(ctx context.Context, appointmentIDs []int64) (map[int64][]domain.AppointmentSlot, error) {
	query := `
		SELECT id, appointment_id, proposed_datetime, is_chosen
		FROM appointment_slots
		WHERE appointment_id = ANY($1)
		ORDER BY proposed_datetime ASC, id ASC`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, pq.Array(appointmentIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]domain.AppointmentSlot, len(appointmentIDs))
	for rows.Next() {
		var s domain.AppointmentSlot
		if err := rows.Scan(&s.ID, &s.AppointmentID, &s.ProposedDatetime, &s.IsChosen); err != nil {
			return nil, err
		}
		out[s.AppointmentID] = append(out[s.AppointmentID], s)
	}
	return out, rows.Err()
}
