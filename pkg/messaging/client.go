// Package messaging is an HTTP client for the messaging service.
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type conversationRequest struct {
	CandidateUserID int64 `json:"candidate_user_id"`
	RecruiterUserID int64 `json:"recruiter_user_id"`
	OfferID         int64 `json:"offer_id"`
}

type conversationResponse struct {
	ID string `json:"id"`
}

type messageRequest struct {
	ConversationID string `json:"conversation_id"`
	SenderUserID   int64  `json:"sender_user_id"`
	Content        string `json:"content"`
}

// StartConversation creates the candidate/recruiter conversation for an offer.
// The messaging service returns the existing one when it already exists.
func (c *Client) StartConversation(ctx context.Context, candidateID, recruiterID, offerID int64) (string, error) {
	var out conversationResponse
	err := c.post(ctx, "/conversations/", conversationRequest{
		CandidateUserID: candidateID,
		RecruiterUserID: recruiterID,
		OfferID:         offerID,
	}, &out)
	if err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("messaging service returned no conversation id")
	}
	return out.ID, nil
}

// PostMessage posts text into a conversation on behalf of senderID
func (c *Client) PostMessage(ctx context.Context, conversationID string, senderID int64, text string) error {
	return c.post(ctx, "/messages/", messageRequest{
		ConversationID: conversationID,
		SenderUserID:   senderID,
		Content:        text,
	}, nil)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("messaging request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("messaging %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode messaging response: %w", err)
	}
	return nil
}
