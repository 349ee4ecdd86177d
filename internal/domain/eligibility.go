package domain

import (
	"context"
	"time"
)

// Pipeline statuses reported by the applications service.
const (
	PipelineStatusReview    = "review"
	PipelineStatusInterview = "interview"
	PipelineStatusOffer     = "offer"
)

// EligibleCandidate is a candidate a recruiter may propose an interview to.
// One row per (recruiter_id, candidate_id, offer_id).
type EligibleCandidate struct {
	ID                int64     `json:"id"`
	RecruiterID       int64     `json:"recruiter_id"`
	CandidateID       int64     `json:"candidate_id"`
	OfferID           int64     `json:"offer_id"`
	CandidateName     string    `json:"candidate_name"`
	CandidateEmail    string    `json:"candidate_email"`
	PositionTitle     string    `json:"position_title"`
	CompanyName       string    `json:"company_name"`
	ApplicationStatus string    `json:"application_status"` // review, interview, offer
	AddedAt           time.Time `json:"added_at"`
	HasAppointment    bool      `json:"has_appointment"`
}

// EligibleCandidateInput is the payload used to register an eligible candidate
type EligibleCandidateInput struct {
	CandidateID       int64  `json:"candidate_id" binding:"required,gt=0"`
	OfferID           int64  `json:"offer_id" binding:"required,gt=0"`
	CandidateName     string `json:"candidate_name" binding:"required,max=255,single_line,valid_name"`
	CandidateEmail    string `json:"candidate_email" binding:"required,email,max=255,single_line"`
	PositionTitle     string `json:"position_title" binding:"required,max=255,single_line,no_emoji"`
	CompanyName       string `json:"company_name" binding:"required,max=255,single_line,no_emoji"`
	ApplicationStatus string `json:"application_status" binding:"required,max=50"`
}

// PipelineEvent is pushed by the applications service when an application changes status.
type PipelineEvent struct {
	RecruiterID int64 `json:"recruiter_id" binding:"required,gt=0"`
	EligibleCandidateInput
}

// EligibilityRepository defines data access for the eligibility registry
type EligibilityRepository interface {
	// Insert stores the record unless the key already exists. Returns true when a row was created.
	Insert(ctx context.Context, c *EligibleCandidate) (bool, error)
	ListByRecruiter(ctx context.Context, recruiterID int64) ([]EligibleCandidate, error)
	Get(ctx context.Context, recruiterID, candidateID, offerID int64) (*EligibleCandidate, error)
	// GetForUpdate locks the row for the rest of the surrounding transaction.
	GetForUpdate(ctx context.Context, recruiterID, candidateID, offerID int64) (*EligibleCandidate, error)
	MarkHasAppointment(ctx context.Context, recruiterID, candidateID, offerID int64) error
}

// EligibilityUsecase defines business logic for the eligibility registry
type EligibilityUsecase interface {
	Register(ctx context.Context, recruiterID int64, input EligibleCandidateInput) error
	ListForRecruiter(ctx context.Context, recruiterID int64) ([]EligibleCandidate, error)
	// HandlePipelineEvent registers the candidate when the reported status is an eligible one.
	// Returns false when the event was acknowledged but ignored.
	HandlePipelineEvent(ctx context.Context, event PipelineEvent) (bool, error)
}
