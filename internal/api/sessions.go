package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/okibram/chat-web-ui/internal/models"
)

type sessionListResponse struct {
	Sessions []models.Session `json:"sessions"`
}

type sessionResponse struct {
	Session models.Session `json:"session"`
}

type sessionNameRequest struct {
	Name string `json:"name"`
}

type deleteResponse struct {
	Deleted bool `json:"deleted"`
}

// ListSessions returns the session summaries known to the remote API, in the order
// the server keeps them (oldest first). A failed request means "no sessions known",
// not "zero sessions confirmed"; callers on the read path log and render empty.
func (c *Client) ListSessions(ctx context.Context) ([]models.Session, error) {
	var res sessionListResponse
	if err := c.do(ctx, "list sessions", http.MethodGet, "/api/sessions", nil, &res); err != nil {
		return nil, err
	}
	return res.Sessions, nil
}

// CreateSession creates a new remote session. An empty name lets the server pick a
// default ("Chat N").
func (c *Client) CreateSession(ctx context.Context, name string) (models.Session, error) {
	var res sessionResponse
	err := c.do(ctx, "create session", http.MethodPost, "/api/sessions", sessionNameRequest{Name: name}, &res)
	if err != nil {
		return models.Session{}, err
	}
	return res.Session, nil
}

// RenameSession changes a session's display name. The name is trimmed first; if
// nothing remains the request is not attempted and ErrEmptyName is returned.
func (c *Client) RenameSession(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	return c.do(ctx, "rename session", http.MethodPatch,
		"/api/sessions/"+url.PathEscape(id), sessionNameRequest{Name: name}, nil)
}

// DeleteSession removes a session and its messages from the remote API. Deleting a
// session the server no longer knows reports false without an error, so delete
// cascades behave the same whether or not another client raced us.
func (c *Client) DeleteSession(ctx context.Context, id string) (bool, error) {
	var res deleteResponse
	err := c.do(ctx, "delete session", http.MethodDelete, "/api/sessions/"+url.PathEscape(id), nil, &res)
	if err != nil {
		var serverErr *ServerError
		if errors.As(err, &serverErr) && serverErr.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return res.Deleted, nil
}
