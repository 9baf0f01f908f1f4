package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/okibram/chat-web-ui/internal/models"
)

type chatRequest struct {
	Prompt    string `json:"prompt"`
	SessionID string `json:"session_id,omitempty"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
	Error     string `json:"error,omitempty"`
}

type clearRequest struct {
	SessionID string `json:"session_id"`
}

type clearResponse struct {
	Cleared bool `json:"cleared"`
}

// GetSession fetches one session including its full ordered message history.
func (c *Client) GetSession(ctx context.Context, id string) (models.Session, error) {
	var res sessionResponse
	err := c.do(ctx, "get session", http.MethodGet, "/api/sessions/"+url.PathEscape(id), nil, &res)
	if err != nil {
		return models.Session{}, err
	}
	return res.Session, nil
}

// SendPrompt submits one user prompt for the given session and returns the assistant
// reply together with the session id the server answered with. The returned id may
// differ from the submitted one (the server recreates missing sessions); callers must
// adopt it as the new active session.
//
// A response body carrying an error field maps to *APIError regardless of status
// code, since the original API reports chat failures both ways.
func (c *Client) SendPrompt(ctx context.Context, prompt, sessionID string) (string, string, error) {
	const op = "send prompt"

	resp, err := c.send(ctx, op, http.MethodPost, "/api/chat", chatRequest{
		Prompt:    prompt,
		SessionID: sessionID,
	})
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", &NetworkError{Op: op, Err: fmt.Errorf("error reading response: %w", err)}
	}

	var res chatResponse
	if err := json.Unmarshal(body, &res); err == nil && res.Error != "" {
		return "", "", &APIError{Message: res.Error}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", "", &ServerError{Op: op, StatusCode: resp.StatusCode}
	}

	if err := json.Unmarshal(body, &res); err != nil {
		return "", "", &NetworkError{Op: op, Err: fmt.Errorf("error decoding response: %w", err)}
	}
	return res.Response, res.SessionID, nil
}

// ClearSession empties a session's message history while keeping the session itself.
// Like DeleteSession, an unknown id reports false without an error.
func (c *Client) ClearSession(ctx context.Context, id string) (bool, error) {
	var res clearResponse
	err := c.do(ctx, "clear session", http.MethodPost, "/api/session/clear", clearRequest{SessionID: id}, &res)
	if err != nil {
		var serverErr *ServerError
		if errors.As(err, &serverErr) && serverErr.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return res.Cleared, nil
}
