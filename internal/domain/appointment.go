package domain

import (
	"context"
	"time"
)

// AppointmentStatus is the state of the scheduling workflow.
//
//	PENDING -> CONFIRMED -> COMPLETED
//	PENDING -> REFUSED
//
// CANCELLED is reserved; no operation produces it.
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusRefused   AppointmentStatus = "refused"
)

// AppointmentMode is how the interview takes place. Set at finalization.
type AppointmentMode string

const (
	AppointmentModeOnline   AppointmentMode = "online"
	AppointmentModePhysical AppointmentMode = "physical"
	AppointmentModePhone    AppointmentMode = "phone"
)

// RequiredSlotCount is the number of slots a recruiter must propose.
const RequiredSlotCount = 3

// Valid reports whether m is a known mode.
func (m AppointmentMode) Valid() bool {
	switch m {
	case AppointmentModeOnline, AppointmentModePhysical, AppointmentModePhone:
		return true
	}
	return false
}

// Label is the human readable form used in emails and exports.
func (m AppointmentMode) Label() string {
	switch m {
	case AppointmentModeOnline:
		return "Online"
	case AppointmentModePhysical:
		return "In person"
	case AppointmentModePhone:
		return "By phone"
	}
	return "Not specified"
}

// AppointmentSlot is one of the recruiter's proposed datetimes.
type AppointmentSlot struct {
	ID               int64     `json:"id"`
	AppointmentID    int64     `json:"-"`
	ProposedDatetime time.Time `json:"proposed_datetime"`
	IsChosen         bool      `json:"is_chosen"`
}

// Appointment is the aggregate root of the scheduling workflow. It is only
// mutated through NewAppointment, Choose, Refuse and Finalize.
type Appointment struct {
	ID              int64             `json:"id"`
	RecruiterID     int64             `json:"recruiter_id"`
	CandidateID     int64             `json:"candidate_id"`
	OfferID         int64             `json:"offer_id"`
	PositionTitle   string            `json:"position_title"`
	CompanyName     string            `json:"company_name"`
	Status          AppointmentStatus `json:"status"`
	ChosenDatetime  *time.Time        `json:"chosen_datetime"`
	Mode            *AppointmentMode  `json:"mode"`
	LocationDetails *string           `json:"location_details"`
	AdditionalNotes *string           `json:"additional_notes"`
	Version         int64             `json:"-"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	ProposedSlots   []AppointmentSlot `json:"proposed_slots"`
}

// NewAppointment builds a PENDING appointment with one unchosen slot per datetime.
func NewAppointment(recruiterID, candidateID, offerID int64, positionTitle, companyName string, slots []time.Time) (*Appointment, error) {
	if err := ValidateProposedSlots(slots); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	appt := &Appointment{
		RecruiterID:   recruiterID,
		CandidateID:   candidateID,
		OfferID:       offerID,
		PositionTitle: positionTitle,
		CompanyName:   companyName,
		Status:        AppointmentStatusPending,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
		ProposedSlots: make([]AppointmentSlot, 0, len(slots)),
	}
	for _, t := range slots {
		appt.ProposedSlots = append(appt.ProposedSlots, AppointmentSlot{ProposedDatetime: t.UTC()})
	}
	return appt, nil
}

// ValidateProposedSlots checks for exactly RequiredSlotCount distinct, non-zero datetimes.
func ValidateProposedSlots(slots []time.Time) error {
	if len(slots) != RequiredSlotCount {
		return ErrInvalidSlots
	}
	seen := make(map[time.Time]struct{}, len(slots))
	for _, t := range slots {
		if t.IsZero() {
			return ErrInvalidSlots
		}
		key := t.UTC()
		if _, dup := seen[key]; dup {
			return ErrInvalidSlots
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Choose confirms the slot identified by slotID and returns its datetime.
func (a *Appointment) Choose(slotID int64) (time.Time, error) {
	if a.Status != AppointmentStatusPending {
		return time.Time{}, ErrInvalidTransition
	}

	idx := -1
	for i := range a.ProposedSlots {
		if a.ProposedSlots[i].ID == slotID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return time.Time{}, ErrUnknownSlot
	}

	// Siblings are cleared even though none should be set while PENDING.
	for i := range a.ProposedSlots {
		a.ProposedSlots[i].IsChosen = i == idx
	}

	chosen := a.ProposedSlots[idx].ProposedDatetime
	a.ChosenDatetime = &chosen
	a.Status = AppointmentStatusConfirmed
	a.touch()
	return chosen, nil
}

// Refuse records that the candidate rejected every proposed slot.
func (a *Appointment) Refuse() error {
	if a.Status != AppointmentStatusPending {
		return ErrInvalidTransition
	}
	a.Status = AppointmentStatusRefused
	a.touch()
	return nil
}

// Finalize attaches the interview details and closes the workflow. Empty notes are stored as NULL.
func (a *Appointment) Finalize(mode AppointmentMode, locationDetails, additionalNotes string) error {
	if a.Status != AppointmentStatusConfirmed {
		return ErrInvalidTransition
	}
	if !mode.Valid() {
		return ErrInvalidMode
	}
	a.Mode = &mode
	a.LocationDetails = &locationDetails
	a.AdditionalNotes = nil
	if additionalNotes != "" {
		a.AdditionalNotes = &additionalNotes
	}
	a.Status = AppointmentStatusCompleted
	a.touch()
	return nil
}

// ChosenSlot returns the chosen slot, if any.
func (a *Appointment) ChosenSlot() (AppointmentSlot, bool) {
	for _, s := range a.ProposedSlots {
		if s.IsChosen {
			return s, true
		}
	}
	return AppointmentSlot{}, false
}

func (a *Appointment) touch() {
	a.UpdatedAt = time.Now().UTC()
}

// ProposalInput is the recruiter's proposal request
type ProposalInput struct {
	CandidateID   int64       `json:"candidate_id" binding:"required,gt=0"`
	OfferID       int64       `json:"offer_id" binding:"required,gt=0"`
	ProposedSlots []time.Time `json:"proposed_slots" binding:"required,slot_count"`
}

// ProposalResult is returned once a proposal has been created
type ProposalResult struct {
	AppointmentID int64             `json:"appointment_id"`
	Status        AppointmentStatus `json:"status"`
	Message       string            `json:"message"`
}

// FinalizeInput carries the recruiter's final interview details
type FinalizeInput struct {
	Mode            string `json:"mode" binding:"required,appointment_mode"`
	LocationDetails string `json:"location_details" binding:"required,max=2000"`
	AdditionalNotes string `json:"additional_notes" binding:"max=4000"`
}

// AppointmentExportRequest represents the export configuration
type AppointmentExportRequest struct {
	RecruiterID int64
	Columns     []string
	Format      string // "xlsx" or "csv"
}

// ExportableAppointmentColumns lists all columns that can be exported
var ExportableAppointmentColumns = []string{
	"id",
	"candidate_id",
	"offer_id",
	"position_title",
	"company_name",
	"status",
	"proposed_slots",
	"chosen_datetime",
	"mode",
	"location_details",
	"additional_notes",
	"created_at",
}

// AppointmentRepository defines data access for appointments and their slots
type AppointmentRepository interface {
	// Create inserts the appointment and its slots, filling in generated ids.
	Create(ctx context.Context, appt *Appointment) error
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	// GetByIDForUpdate locks the appointment row for the surrounding transaction.
	GetByIDForUpdate(ctx context.Context, id int64) (*Appointment, error)
	// SaveTransition persists status, details and slot flags. It fails with
	// ErrConcurrentUpdate when the stored version differs from appt.Version,
	// and bumps appt.Version on success.
	SaveTransition(ctx context.Context, appt *Appointment) error
	ListByRecruiter(ctx context.Context, recruiterID int64) ([]Appointment, error)
	ListByCandidate(ctx context.Context, candidateID int64) ([]Appointment, error)
}

// Transactor runs fn inside one database transaction. Repositories called with
// the ctx passed to fn take part in that transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AppointmentUsecase is the scheduling engine
type AppointmentUsecase interface {
	// Recruiter operations
	CreateProposal(ctx context.Context, recruiterID int64, input ProposalInput) (*ProposalResult, error)
	ListForRecruiter(ctx context.Context, recruiterID int64) ([]Appointment, error)
	Finalize(ctx context.Context, recruiterID, appointmentID int64, input FinalizeInput) error
	SendFinalEmail(ctx context.Context, recruiterID, appointmentID int64) error
	ExportForRecruiter(ctx context.Context, req AppointmentExportRequest) ([]byte, string, error)

	// Candidate operations
	ListForCandidate(ctx context.Context, candidateID int64) ([]Appointment, error)
	ChooseSlot(ctx context.Context, candidateID, appointmentID, slotID int64) error
	RefuseAll(ctx context.Context, candidateID, appointmentID int64) error
}
