package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// HandleNewChat creates a fresh session, makes it active, and sends the browser back
// to the home page so both panes re-render. Creation failure surfaces as an alert.
func (m *Main) HandleNewChat(w http.ResponseWriter, r *http.Request) {
	created, err := m.sessions.CreateSession(r.Context(), "")
	if err != nil {
		m.logger.Error("Failed to create session", errLoggerKey, err.Error())
		http.Error(w, "failed to create session", http.StatusBadGateway)
		return
	}
	m.setActiveSession(created.ID)

	http.Redirect(w, r, "/?session_id="+url.QueryEscape(created.ID), http.StatusSeeOther)
}

// HandleRenameSession renames one session. The submitted name is trimmed; an empty
// result is a no-op and never reaches the remote API. On success the browser reloads,
// which refreshes the session list and, when the renamed session is the active one,
// its message pane as well.
func (m *Main) HandleRenameSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := m.sessions.RenameSession(r.Context(), id, name); err != nil {
		m.logger.Error("Failed to rename session",
			slog.String("sessionID", id),
			errLoggerKey, err.Error())
		http.Error(w, "failed to rename session", http.StatusBadGateway)
		return
	}

	m.publishSidebar(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteSession deletes one session. If the deleted session was active, a
// replacement is selected: the first session of a freshly fetched list, or a newly
// created session when the list came back empty. The response carries the session id
// the browser should navigate to, refreshing both panes.
func (m *Main) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if _, err := m.sessions.DeleteSession(ctx, id); err != nil {
		m.logger.Error("Failed to delete session",
			slog.String("sessionID", id),
			errLoggerKey, err.Error())
		http.Error(w, "failed to delete session", http.StatusBadGateway)
		return
	}

	active := m.activeSessionID()
	if id == active {
		sessions, err := m.sessions.ListSessions(ctx)
		if err != nil {
			m.logger.Error("Failed to reload sessions", errLoggerKey, err.Error())
			sessions = nil
		}

		if len(sessions) > 0 {
			active = sessions[0].ID
		} else {
			created, err := m.sessions.CreateSession(ctx, "")
			if err != nil {
				m.logger.Error("Failed to create replacement session", errLoggerKey, err.Error())
				http.Error(w, "failed to create session", http.StatusBadGateway)
				return
			}
			active = created.ID
		}
		m.setActiveSession(active)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"session_id": active}); err != nil {
		m.logger.Error("Failed to encode delete response", errLoggerKey, err.Error())
	}
}

// HandleClearSession empties a session's message history. The browser reloads on
// success so the cleared pane re-renders.
func (m *Main) HandleClearSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := m.messages.ClearSession(r.Context(), id); err != nil {
		m.logger.Error("Failed to clear session",
			slog.String("sessionID", id),
			errLoggerKey, err.Error())
		http.Error(w, "failed to clear session", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
