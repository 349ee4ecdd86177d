// Package sqlite implements the repositories on SQLite through GORM. It backs
// local development and single-node deployments (DB_DRIVER=sqlite).
package sqlite

import (
	"fmt"
	"time"

	"talentlink-appointments/internal/domain"

	"gorm.io/gorm"
)

type eligibleCandidateRow struct {
	ID                int64     `gorm:"primaryKey;autoIncrement"`
	RecruiterID       int64     `gorm:"not null;uniqueIndex:uq_eligible_key;index:idx_eligible_recruiter"`
	CandidateID       int64     `gorm:"not null;uniqueIndex:uq_eligible_key"`
	OfferID           int64     `gorm:"not null;uniqueIndex:uq_eligible_key"`
	CandidateName     string    `gorm:"size:255;not null"`
	CandidateEmail    string    `gorm:"size:255;not null"`
	PositionTitle     string    `gorm:"size:255;not null"`
	CompanyName       string    `gorm:"size:255;not null"`
	ApplicationStatus string    `gorm:"size:50;not null"`
	AddedAt           time.Time `gorm:"not null"`
	HasAppointment    bool      `gorm:"not null;default:false"`
}

func (eligibleCandidateRow) TableName() string { return "eligible_candidates" }

func (r eligibleCandidateRow) toDomain() domain.EligibleCandidate {
	return domain.EligibleCandidate{
		ID:                r.ID,
		RecruiterID:       r.RecruiterID,
		CandidateID:       r.CandidateID,
		OfferID:           r.OfferID,
		CandidateName:     r.CandidateName,
		CandidateEmail:    r.CandidateEmail,
		PositionTitle:     r.PositionTitle,
		CompanyName:       r.CompanyName,
		ApplicationStatus: r.ApplicationStatus,
		AddedAt:           r.AddedAt.UTC(),
		HasAppointment:    r.HasAppointment,
	}
}

type appointmentRow struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	RecruiterID     int64  `gorm:"not null;index:idx_appointments_recruiter"`
	CandidateID     int64  `gorm:"not null;index:idx_appointments_candidate"`
	OfferID         int64  `gorm:"not null"`
	PositionTitle   string `gorm:"size:255;not null"`
	CompanyName     string `gorm:"size:255;not null"`
	Status          string `gorm:"size:20;not null"`
	ChosenDatetime  *time.Time
	Mode            *string `gorm:"size:20"`
	LocationDetails *string
	AdditionalNotes *string
	Version         int64     `gorm:"not null;default:1"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`

	Slots []appointmentSlotRow `gorm:"foreignKey:AppointmentID;constraint:OnDelete:CASCADE"`
}

func (appointmentRow) TableName() string { return "appointments" }

type appointmentSlotRow struct {
	ID               int64     `gorm:"primaryKey;autoIncrement"`
	AppointmentID    int64     `gorm:"not null;index:idx_slots_appointment"`
	ProposedDatetime time.Time `gorm:"not null"`
	IsChosen         bool      `gorm:"not null;default:false"`
}

func (appointmentSlotRow) TableName() string { return "appointment_slots" }

func (r appointmentRow) toDomain(slots []appointmentSlotRow) domain.Appointment {
	a := domain.Appointment{
		ID:              r.ID,
		RecruiterID:     r.RecruiterID,
		CandidateID:     r.CandidateID,
		OfferID:         r.OfferID,
		PositionTitle:   r.PositionTitle,
		CompanyName:     r.CompanyName,
		Status:          domain.AppointmentStatus(r.Status),
		LocationDetails: r.LocationDetails,
		AdditionalNotes: r.AdditionalNotes,
		Version:         r.Version,
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
		ProposedSlots:   make([]domain.AppointmentSlot, 0, len(slots)),
	}
	if r.ChosenDatetime != nil {
		chosen := r.ChosenDatetime.UTC()
		a.ChosenDatetime = &chosen
	}
	if r.Mode != nil {
		m := domain.AppointmentMode(*r.Mode)
		a.Mode = &m
	}
	for _, s := range slots {
		a.ProposedSlots = append(a.ProposedSlots, domain.AppointmentSlot{
			ID:               s.ID,
			AppointmentID:    s.AppointmentID,
			ProposedDatetime: s.ProposedDatetime.UTC(),
			IsChosen:         s.IsChosen,
		})
	}
	return a
}

// AutoMigrate creates or updates the scheduling tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&eligibleCandidateRow{},
		&appointmentRow{},
		&appointmentSlotRow{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
