package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"

	"github.com/okibram/chat-web-ui/internal/models"
)

type homePageData struct {
	Sessions         []sessionItem
	CurrentSessionID string
	Messages         []message
	SidebarCollapsed bool
}

// HandleHome renders the full page: session list, active conversation, and input
// form. It runs the startup flow on every load: fetch the session list, bootstrap a
// session if none exist, pick the active session, and load its message history.
// Read failures are logged and rendered as an empty-looking page rather than alerted.
func (m *Main) HandleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessions, err := m.sessions.ListSessions(ctx)
	if err != nil {
		m.logger.Error("Failed to load sessions", errLoggerKey, err.Error())
		m.renderHome(w, homePageData{SidebarCollapsed: m.prefs.SidebarCollapsed()})
		return
	}

	if len(sessions) == 0 {
		// A freshly created list is never empty, so this bootstrap runs at most once.
		created, err := m.sessions.CreateSession(ctx, "")
		if err != nil {
			m.logger.Error("Failed to bootstrap session", errLoggerKey, err.Error())
			m.renderHome(w, homePageData{SidebarCollapsed: m.prefs.SidebarCollapsed()})
			return
		}
		m.setActiveSession(created.ID)

		sessions, err = m.sessions.ListSessions(ctx)
		if err != nil {
			m.logger.Error("Failed to reload sessions", errLoggerKey, err.Error())
			sessions = nil
		}
		if len(sessions) == 0 {
			sessions = []models.Session{created}
		}
	}

	active := r.URL.Query().Get("session_id")
	if active == "" {
		active = m.activeSessionID()
	}
	// A stale or unset active id falls back to the first listed session.
	if !slices.ContainsFunc(sessions, func(s models.Session) bool { return s.ID == active }) {
		active = sessions[0].ID
	}
	m.setActiveSession(active)

	var msgs []message
	detail, err := m.messages.GetSession(ctx, active)
	if err != nil {
		m.logger.Error("Failed to load messages",
			slog.String("sessionID", active),
			errLoggerKey, err.Error())
	} else {
		msgs = make([]message, 0, len(detail.Messages))
		for _, msg := range detail.Messages {
			msgs = append(msgs, m.messageView(msg))
		}
	}

	items := make([]sessionItem, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, sessionItem{
			ID:     s.ID,
			Name:   s.Name,
			Active: s.ID == active,
		})
	}

	m.renderHome(w, homePageData{
		Sessions:         items,
		CurrentSessionID: active,
		Messages:         msgs,
		SidebarCollapsed: m.prefs.SidebarCollapsed(),
	})
}

func (m *Main) renderHome(w http.ResponseWriter, data homePageData) {
	if err := m.templates.ExecuteTemplate(w, "home.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HandleSSE serves the event stream used for sidebar refreshes and per-message
// updates.
func (m *Main) HandleSSE(w http.ResponseWriter, r *http.Request) {
	m.sseSrv.ServeHTTP(w, r)
}

// HandleHealth reports whether the remote chat API is reachable.
func (m *Main) HandleHealth(w http.ResponseWriter, r *http.Request) {
	reachable := m.messages.Ping(r.Context()) == nil

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]bool{"api_reachable": reachable}); err != nil {
		m.logger.Error("Failed to encode health response", errLoggerKey, err.Error())
	}
}

// HandleGetSidebarPref returns the persisted sidebar collapsed state.
func (m *Main) HandleGetSidebarPref(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]bool{"collapsed": m.prefs.SidebarCollapsed()}); err != nil {
		m.logger.Error("Failed to encode sidebar preference", errLoggerKey, err.Error())
	}
}

// HandleSetSidebarPref persists the sidebar collapsed state posted by the toggle
// control. The value travels as a boolean-as-string form field.
func (m *Main) HandleSetSidebarPref(w http.ResponseWriter, r *http.Request) {
	collapsed := r.FormValue("collapsed") == "true"
	if err := m.prefs.SetSidebarCollapsed(collapsed); err != nil {
		m.logger.Error("Failed to persist sidebar preference", errLoggerKey, err.Error())
		http.Error(w, "failed to save preference", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
