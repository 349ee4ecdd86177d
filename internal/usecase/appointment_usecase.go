package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"talentlink-appointments/internal/domain"
	"talentlink-appointments/pkg/apperror"
	"talentlink-appointments/pkg/logger"

	"github.com/google/uuid"
)

const defaultNotificationTimeout = 8 * time.Second

const refusalMessageFormat = "Hello, I would like another time slot for the %s position. " +
	"The proposed slots do not suit me. Could you suggest other dates? Thank you."

type appointmentUsecase struct {
	tx            domain.Transactor
	appointments  domain.AppointmentRepository
	eligibility   domain.EligibilityRepository
	notifier      domain.NotificationPort
	retryQueue    domain.NotificationRetryQueue
	notifyTimeout time.Duration
}

// AppointmentUsecaseOption configures optional collaborators of the scheduling engine
type AppointmentUsecaseOption func(*appointmentUsecase)

// WithRetryQueue stores failed best-effort notifications for the notifier worker
func WithRetryQueue(q domain.NotificationRetryQueue) AppointmentUsecaseOption {
	return func(u *appointmentUsecase) { u.retryQueue = q }
}

// WithNotificationTimeout bounds every call made to the notification port
func WithNotificationTimeout(d time.Duration) AppointmentUsecaseOption {
	return func(u *appointmentUsecase) {
		if d > 0 {
			u.notifyTimeout = d
		}
	}
}

// NewAppointmentUsecase creates the scheduling engine
func NewAppointmentUsecase(
	tx domain.Transactor,
	appointments domain.AppointmentRepository,
	eligibility domain.EligibilityRepository,
	notifier domain.NotificationPort,
	opts ...AppointmentUsecaseOption,
) domain.AppointmentUsecase {
	u := &appointmentUsecase{
		tx:            tx,
		appointments:  appointments,
		eligibility:   eligibility,
		notifier:      notifier,
		notifyTimeout: defaultNotificationTimeout,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// CreateProposal opens a scheduling cycle for an eligible candidate and emails them the slots.
func (u *appointmentUsecase) CreateProposal(ctx context.Context, recruiterID int64, input domain.ProposalInput) (*domain.ProposalResult, error) {
	if err := domain.ValidateProposedSlots(input.ProposedSlots); err != nil {
		return nil, apperror.New(http.StatusBadRequest, err.Error(), err)
	}

	var (
		appt      *domain.Appointment
		candidate *domain.EligibleCandidate
	)
	err := u.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := u.eligibility.GetForUpdate(ctx, recruiterID, input.CandidateID, input.OfferID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotEligible
		}
		if err != nil {
			return fmt.Errorf("failed to load eligibility: %w", err)
		}
		if c.HasAppointment {
			return domain.ErrAppointmentInFlight
		}

		a, err := domain.NewAppointment(recruiterID, input.CandidateID, input.OfferID, c.PositionTitle, c.CompanyName, input.ProposedSlots)
		if err != nil {
			return err
		}
		if err := u.appointments.Create(ctx, a); err != nil {
			return err
		}
		if err := u.eligibility.MarkHasAppointment(ctx, recruiterID, input.CandidateID, input.OfferID); err != nil {
			return fmt.Errorf("failed to mark eligibility: %w", err)
		}

		appt, candidate = a, c
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotEligible):
			return nil, apperror.New(http.StatusForbidden, "Candidate is not eligible for an appointment", err)
		case errors.Is(err, domain.ErrAppointmentInFlight):
			return nil, apperror.New(http.StatusConflict, "An appointment already exists for this candidate and offer", err)
		case errors.Is(err, domain.ErrInvalidSlots):
			return nil, apperror.New(http.StatusBadRequest, err.Error(), err)
		}
		logger.Log.ErrorContext(ctx, "failed to create appointment proposal",
			"recruiter_id", recruiterID,
			"candidate_id", input.CandidateID,
			"offer_id", input.OfferID,
			"error", err,
		)
		return nil, apperror.Internal(err)
	}

	logger.Log.InfoContext(ctx, "appointment proposed",
		"appointment_id", appt.ID,
		"recruiter_id", recruiterID,
		"candidate_id", appt.CandidateID,
	)

	u.sendProposalEmail(ctx, appt, candidate)

	return &domain.ProposalResult{
		AppointmentID: appt.ID,
		Status:        appt.Status,
		Message:       "Appointment proposal sent to the candidate",
	}, nil
}

func (u *appointmentUsecase) ListForRecruiter(ctx context.Context, recruiterID int64) ([]domain.Appointment, error) {
	appointments, err := u.appointments.ListByRecruiter(ctx, recruiterID)
	if err != nil {
		logger.Log.ErrorContext(ctx, "failed to list recruiter appointments", "recruiter_id", recruiterID, "error", err)
		return nil, apperror.Internal(err)
	}
	return appointments, nil
}

func (u *appointmentUsecase) ListForCandidate(ctx context.Context, candidateID int64) ([]domain.Appointment, error) {
	appointments, err := u.appointments.ListByCandidate(ctx, candidateID)
	if err != nil {
		logger.Log.ErrorContext(ctx, "failed to list candidate appointments", "candidate_id", candidateID, "error", err)
		return nil, apperror.Internal(err)
	}
	return appointments, nil
}

// ChooseSlot confirms one of the proposed slots. No notification is sent.
func (u *appointmentUsecase) ChooseSlot(ctx context.Context, candidateID, appointmentID, slotID int64) error {
	_, err := u.transition(ctx, appointmentID,
		func(a *domain.Appointment) bool { return a.CandidateID == candidateID },
		func(a *domain.Appointment) error {
			_, err := a.Choose(slotID)
			return err
		},
	)
	if err != nil {
		return u.transitionError(ctx, "choose_slot", appointmentID, err)
	}

	logger.Log.InfoContext(ctx, "appointment slot chosen",
		"appointment_id", appointmentID,
		"candidate_id", candidateID,
		"slot_id", slotID,
	)
	return nil
}

// RefuseAll closes the cycle and asks the recruiter for new dates through the messaging service.
func (u *appointmentUsecase) RefuseAll(ctx context.Context, candidateID, appointmentID int64) error {
	appt, err := u.transition(ctx, appointmentID,
		func(a *domain.Appointment) bool { return a.CandidateID == candidateID },
		func(a *domain.Appointment) error { return a.Refuse() },
	)
	if err != nil {
		return u.transitionError(ctx, "refuse_all", appointmentID, err)
	}

	logger.Log.InfoContext(ctx, "appointment refused",
		"appointment_id", appointmentID,
		"candidate_id", candidateID,
	)

	u.sendRefusalMessage(ctx, appt)
	return nil
}

// Finalize stores the interview details. The confirmation email is sent separately.
func (u *appointmentUsecase) Finalize(ctx context.Context, recruiterID, appointmentID int64, input domain.FinalizeInput) error {
	_, err := u.transition(ctx, appointmentID,
		func(a *domain.Appointment) bool { return a.RecruiterID == recruiterID },
		func(a *domain.Appointment) error {
			return a.Finalize(domain.AppointmentMode(input.Mode), input.LocationDetails, input.AdditionalNotes)
		},
	)
	if err != nil {
		return u.transitionError(ctx, "finalize", appointmentID, err)
	}

	logger.Log.InfoContext(ctx, "appointment finalized",
		"appointment_id", appointmentID,
		"recruiter_id", recruiterID,
		"mode", input.Mode,
	)
	return nil
}

// SendFinalEmail emails the finalized interview details to the candidate.
// Unlike the other notifications, a delivery failure is reported to the caller.
func (u *appointmentUsecase) SendFinalEmail(ctx context.Context, recruiterID, appointmentID int64) error {
	appt, err := u.appointments.GetByID(ctx, appointmentID)
	if err == nil && appt.RecruiterID != recruiterID {
		err = domain.ErrNotFound
	}
	if err == nil && appt.Status != domain.AppointmentStatusCompleted {
		err = domain.ErrInvalidTransition
	}
	if err != nil {
		return u.transitionError(ctx, "send_final_email", appointmentID, err)
	}

	candidate, err := u.eligibility.Get(ctx, appt.RecruiterID, appt.CandidateID, appt.OfferID)
	if err != nil {
		logger.Log.ErrorContext(ctx, "failed to load candidate contact", "appointment_id", appointmentID, "error", err)
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.New(http.StatusNotFound, "Candidate contact not found", err)
		}
		return apperror.Internal(err)
	}

	email := domain.FinalEmail{
		To:            candidate.CandidateEmail,
		CandidateName: candidate.CandidateName,
		PositionTitle: appt.PositionTitle,
		CompanyName:   appt.CompanyName,
	}
	if appt.ChosenDatetime != nil {
		email.ChosenDatetime = *appt.ChosenDatetime
	}
	if appt.Mode != nil {
		email.Mode = *appt.Mode
	}
	if appt.LocationDetails != nil {
		email.LocationDetails = *appt.LocationDetails
	}
	if appt.AdditionalNotes != nil {
		email.AdditionalNotes = *appt.AdditionalNotes
	}

	nctx, cancel := u.notificationContext(ctx)
	defer cancel()
	if err := u.notifier.SendFinalEmail(nctx, email); err != nil {
		logger.Log.ErrorContext(ctx, "failed to send final email", "appointment_id", appointmentID, "error", err)
		return apperror.New(http.StatusBadGateway, "Failed to send the confirmation email",
			fmt.Errorf("%w: %v", domain.ErrNotificationFailure, err))
	}

	logger.Log.InfoContext(ctx, "final email sent", "appointment_id", appointmentID)
	return nil
}

// transition runs one read-modify-write of an appointment inside a transaction.
// Appointments the caller does not own are reported as not found.
func (u *appointmentUsecase) transition(
	ctx context.Context,
	appointmentID int64,
	owns func(*domain.Appointment) bool,
	apply func(*domain.Appointment) error,
) (*domain.Appointment, error) {
	var appt *domain.Appointment
	err := u.tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err := u.appointments.GetByIDForUpdate(ctx, appointmentID)
		if err != nil {
			return err
		}
		if !owns(a) {
			return domain.ErrNotFound
		}
		if err := apply(a); err != nil {
			return err
		}
		if err := u.appointments.SaveTransition(ctx, a); err != nil {
			return err
		}
		appt = a
		return nil
	})
	return appt, err
}

func (u *appointmentUsecase) transitionError(ctx context.Context, op string, appointmentID int64, err error) error {
	logger.Log.WarnContext(ctx, "appointment operation rejected",
		"operation", op,
		"appointment_id", appointmentID,
		"error", err,
	)

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return apperror.New(http.StatusNotFound, "Appointment not found", err)
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrUnknownSlot),
		errors.Is(err, domain.ErrInvalidMode):
		return apperror.New(http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, domain.ErrConcurrentUpdate):
		return apperror.New(http.StatusConflict, err.Error(), err)
	}
	return apperror.Internal(err)
}

// notificationContext outlives request cancellation but not the configured timeout.
func (u *appointmentUsecase) notificationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), u.notifyTimeout)
}

func (u *appointmentUsecase) sendProposalEmail(ctx context.Context, appt *domain.Appointment, candidate *domain.EligibleCandidate) {
	email := domain.ProposalEmail{
		To:            candidate.CandidateEmail,
		CandidateName: candidate.CandidateName,
		PositionTitle: appt.PositionTitle,
		CompanyName:   appt.CompanyName,
	}
	for _, s := range appt.ProposedSlots {
		email.Slots = append(email.Slots, s.ProposedDatetime)
	}

	nctx, cancel := u.notificationContext(ctx)
	defer cancel()
	if err := u.notifier.SendProposalEmail(nctx, email); err != nil {
		logger.Log.ErrorContext(ctx, "failed to send proposal email", "appointment_id", appt.ID, "error", err)
		u.enqueueRetry(ctx, domain.NotificationJob{
			Kind:          domain.NotificationKindProposalEmail,
			AppointmentID: appt.ID,
			Proposal:      &email,
			LastError:     err.Error(),
		})
	}
}

func (u *appointmentUsecase) sendRefusalMessage(ctx context.Context, appt *domain.Appointment) {
	msg := domain.RefusalMessage{
		CandidateID: appt.CandidateID,
		RecruiterID: appt.RecruiterID,
		OfferID:     appt.OfferID,
		Text:        fmt.Sprintf(refusalMessageFormat, appt.PositionTitle),
	}

	nctx, cancel := u.notificationContext(ctx)
	defer cancel()
	if err := deliverRefusal(nctx, u.notifier, &msg); err != nil {
		logger.Log.ErrorContext(ctx, "failed to notify recruiter of refusal", "appointment_id", appt.ID, "error", err)
		u.enqueueRetry(ctx, domain.NotificationJob{
			Kind:          domain.NotificationKindRefusalMessage,
			AppointmentID: appt.ID,
			Refusal:       &msg,
			LastError:     err.Error(),
		})
	}
}

// deliverRefusal opens the candidate/recruiter conversation unless msg already
// carries one, then posts the refusal in it. The message itself is at-least-once.
func deliverRefusal(ctx context.Context, port domain.NotificationPort, msg *domain.RefusalMessage) error {
	if msg.ConversationID == "" {
		conversationID, err := port.StartConversation(ctx, msg.CandidateID, msg.RecruiterID, msg.OfferID)
		if err != nil {
			return fmt.Errorf("start conversation: %w", err)
		}
		msg.ConversationID = conversationID
	}
	if err := port.PostMessage(ctx, msg.ConversationID, msg.CandidateID, msg.Text); err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	return nil
}

func (u *appointmentUsecase) enqueueRetry(ctx context.Context, job domain.NotificationJob) {
	if u.retryQueue == nil {
		return
	}
	job.ID = uuid.NewString()
	job.Attempts = 1
	job.EnqueuedAt = time.Now().UTC()

	qctx, cancel := u.notificationContext(ctx)
	defer cancel()
	if err := u.retryQueue.Enqueue(qctx, job); err != nil {
		logger.Log.ErrorContext(ctx, "failed to enqueue notification retry",
			"kind", job.Kind,
			"appointment_id", job.AppointmentID,
			"error", err,
		)
	}
}
