// Package notification implements domain.NotificationPort over the SMTP relay
// and the messaging service, and the Redis queue used to retry failed deliveries.
package notification

import (
	"context"

	"talentlink-appointments/internal/domain"
)

// Mailer sends the candidate-facing emails
type Mailer interface {
	SendProposalEmail(ctx context.Context, e domain.ProposalEmail) error
	SendFinalEmail(ctx context.Context, e domain.FinalEmail) error
}

// Messenger talks to the messaging service
type Messenger interface {
	StartConversation(ctx context.Context, candidateID, recruiterID, offerID int64) (string, error)
	PostMessage(ctx context.Context, conversationID string, senderID int64, text string) error
}

// Dispatcher routes each notification to the collaborator that owns it
type Dispatcher struct {
	mailer    Mailer
	messenger Messenger
}

func NewDispatcher(mailer Mailer, messenger Messenger) *Dispatcher {
	return &Dispatcher{mailer: mailer, messenger: messenger}
}

var _ domain.NotificationPort = (*Dispatcher)(nil)

func (d *Dispatcher) SendProposalEmail(ctx context.Context, e domain.ProposalEmail) error {
	return d.mailer.SendProposalEmail(ctx, e)
}

func (d *Dispatcher) SendFinalEmail(ctx context.Context, e domain.FinalEmail) error {
	return d.mailer.SendFinalEmail(ctx, e)
}

func (d *Dispatcher) StartConversation(ctx context.Context, candidateID, recruiterID, offerID int64) (string, error) {
	return d.messenger.StartConversation(ctx, candidateID, recruiterID, offerID)
}

func (d *Dispatcher) PostMessage(ctx context.Context, conversationID string, senderID int64, text string) error {
	return d.messenger.PostMessage(ctx, conversationID, senderID, text)
}
