package domain

import "errors"

// Common domain errors
var (
	ErrNotFound = errors.New("resource not found")

	// ErrNotEligible: no eligibility record for (recruiter, candidate, offer).
	ErrNotEligible = errors.New("candidate is not eligible for an appointment")

	// ErrAppointmentInFlight: the eligibility record already backs an appointment.
	ErrAppointmentInFlight = errors.New("an appointment already exists for this candidate and offer")

	ErrInvalidTransition = errors.New("appointment status does not allow this operation")
	ErrUnknownSlot       = errors.New("slot does not belong to this appointment")
	ErrInvalidSlots      = errors.New("exactly 3 distinct proposed slots are required")
	ErrInvalidMode       = errors.New("mode must be one of: online, physical, phone")

	// ErrConcurrentUpdate: the appointment row changed between load and write.
	ErrConcurrentUpdate = errors.New("appointment was modified concurrently")

	ErrNotificationFailure = errors.New("notification delivery failed")
)
