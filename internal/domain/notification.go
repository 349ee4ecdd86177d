package domain

import (
	"context"
	"time"
)

// ProposalEmail is sent to the candidate when a recruiter proposes slots
type ProposalEmail struct {
	To            string      `json:"to"`
	CandidateName string      `json:"candidate_name"`
	PositionTitle string      `json:"position_title"`
	CompanyName   string      `json:"company_name"`
	Slots         []time.Time `json:"slots"`
}

// FinalEmail is sent to the candidate once the recruiter has finalized the interview
type FinalEmail struct {
	To              string
	CandidateName   string
	PositionTitle   string
	CompanyName     string
	ChosenDatetime  time.Time
	Mode            AppointmentMode
	LocationDetails string
	AdditionalNotes string
}

// NotificationPort triggers effects owned by the mail and messaging services.
type NotificationPort interface {
	SendProposalEmail(ctx context.Context, email ProposalEmail) error
	SendFinalEmail(ctx context.Context, email FinalEmail) error
	// StartConversation opens (or reuses) a conversation and returns its id.
	StartConversation(ctx context.Context, candidateID, recruiterID, offerID int64) (string, error)
	PostMessage(ctx context.Context, conversationID string, senderID int64, text string) error
}

// Notification job kinds
const (
	NotificationKindProposalEmail  = "proposal_email"
	NotificationKindRefusalMessage = "refusal_message"
)

// RefusalMessage is posted to the recruiter's conversation when a candidate refuses every slot
type RefusalMessage struct {
	CandidateID int64  `json:"candidate_id"`
	RecruiterID int64  `json:"recruiter_id"`
	OfferID     int64  `json:"offer_id"`
	Text        string `json:"text"`
	// Set once the conversation exists, so a retry only reposts the message.
	ConversationID string `json:"conversation_id,omitempty"`
}

// NotificationJob is a best-effort notification that failed and waits for another attempt.
type NotificationJob struct {
	ID            string          `json:"id"`
	Kind          string          `json:"kind"`
	AppointmentID int64           `json:"appointment_id"`
	Proposal      *ProposalEmail  `json:"proposal,omitempty"`
	Refusal       *RefusalMessage `json:"refusal,omitempty"`
	Attempts      int             `json:"attempts"`
	LastError     string          `json:"last_error,omitempty"`
	EnqueuedAt    time.Time       `json:"enqueued_at"`
}

// NotificationRetryQueue stores failed jobs until the notifier worker replays them.
type NotificationRetryQueue interface {
	Enqueue(ctx context.Context, job NotificationJob) error
	// Dequeue removes and returns up to n jobs, oldest first.
	Dequeue(ctx context.Context, n int) ([]NotificationJob, error)
}
