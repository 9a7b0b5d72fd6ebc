package client

import (
	"context"
	"fmt"

	"github.com/miniden/webchat/internal/models"
)

// DefaultMessageLimit matches the web widget's poll page size.
const DefaultMessageLimit = 50

// StartResult is the response of POST /api/webchat/start.
type StartResult struct {
	SessionID int64                `json:"session_id"`
	Status    models.SessionStatus `json:"status"`
}

// MessagesResult is the response of GET /api/webchat/messages.
type MessagesResult struct {
	Status   models.SessionStatus `json:"status"`
	Messages []models.Message     `json:"messages"`
}

type startRequest struct {
	SessionKey string  `json:"session_key"`
	Page       *string `json:"page"`
}

type messageRequest struct {
	SessionKey string `json:"session_key"`
	Text       string `json:"text"`
}

// StartSession creates or resumes the chat session identified by sessionKey.
// page is the host page the widget was opened from; an empty string is sent
// as JSON null, matching the web widget's behavior.
func (c *Client) StartSession(ctx context.Context, sessionKey, page string) (StartResult, error) {
	var res StartResult
	req := startRequest{SessionKey: sessionKey}
	if page != "" {
		req.Page = &page
	}
	if err := c.doJSON(ctx, "POST", "/api/webchat/start", req, &res); err != nil {
		return StartResult{}, err
	}
	// Server may omit status on a fresh session; the client defaults to open.
	if res.Status == "" {
		res.Status = models.StatusOpen
	}
	return res, nil
}

// Messages fetches the full message history for sessionKey. A missing or
// null messages array decodes as an empty (non-nil) slice.
func (c *Client) Messages(ctx context.Context, sessionKey string, limit int) (MessagesResult, error) {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	path := fmt.Sprintf("/api/webchat/messages?session_key=%s&limit=%d", escapeQuery(sessionKey), limit)
	var res MessagesResult
	if err := c.doJSON(ctx, "GET", path, nil, &res); err != nil {
		return MessagesResult{}, err
	}
	if res.Messages == nil {
		res.Messages = []models.Message{}
	}
	return res, nil
}

// SendMessage submits a user message. The backend acks with an empty body.
func (c *Client) SendMessage(ctx context.Context, sessionKey, text string) error {
	return c.doJSON(ctx, "POST", "/api/webchat/message", messageRequest{
		SessionKey: sessionKey,
		Text:       text,
	}, nil)
}
