package handlers

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	chatwebui "github.com/okibram/chat-web-ui"
	"github.com/okibram/chat-web-ui/internal/models"
	"github.com/tmaxmax/go-sse"
)

// SessionStore wraps the remote API calls that manage the session list. It is
// implemented by api.Client; tests substitute an in-memory fake.
type SessionStore interface {
	ListSessions(ctx context.Context) ([]models.Session, error)
	CreateSession(ctx context.Context, name string) (models.Session, error)
	RenameSession(ctx context.Context, id, name string) error
	DeleteSession(ctx context.Context, id string) (bool, error)
}

// MessageStore wraps the remote API calls that fetch message history and submit new
// prompts. SendPrompt returns the assistant reply and the session id the server
// answered with, which callers must adopt as the new active session.
type MessageStore interface {
	GetSession(ctx context.Context, id string) (models.Session, error)
	SendPrompt(ctx context.Context, prompt, sessionID string) (reply, sessionID2 string, err error)
	ClearSession(ctx context.Context, id string) (bool, error)
	Ping(ctx context.Context) error
}

// Toolbox wraps the remote API's standalone security utilities: password strength
// grading and phishing text scanning.
type Toolbox interface {
	CheckPassword(ctx context.Context, password string) (models.PasswordStrength, error)
	ScanText(ctx context.Context, text string) (models.TextScan, error)
}

// Preferences persists the small UI choices that survive page reloads: the sidebar
// collapsed state and the last active session.
type Preferences interface {
	SidebarCollapsed() bool
	SetSidebarCollapsed(collapsed bool) error
	LastSessionID() string
	SetLastSessionID(id string) error
}

// Main handles the core functionality of the chat front-end, coordinating the remote
// session/message API with server-sent events and HTML template rendering. It owns
// the two pieces of application state: the active session id and the single-flight
// guard on prompt submission.
type Main struct {
	sseSrv    *sse.Server
	templates *template.Template

	sessions SessionStore
	messages MessageStore
	tools    Toolbox
	prefs    Preferences
	logger   *slog.Logger

	mu               sync.Mutex
	currentSessionID string

	// isSending is true for the entire duration of one in-flight prompt submission
	// and returns to false on every exit path.
	isSending atomic.Bool
}

const errLoggerKey = "err"

const sidebarSSETopic = "sidebar"

// replayBufferSize bounds how many recent events a late subscriber can recover.
// One exchange produces at most a handful of events and submissions are
// single-flight, so a small buffer is plenty.
const replayBufferSize = 64

// SSE event types for real-time updates.
var (
	sidebarSSEType  = sse.Type("sidebar")
	messagesSSEType = sse.Type("messages")
)

// NewMain creates a new Main instance with the provided store clients and preference
// store. It parses the HTML templates from the embedded filesystem and initializes
// the SSE server so clients subscribe to sidebar updates plus, when requested, a
// message-specific topic. The last active session is restored from preferences and
// validated against the live list on the first render.
func NewMain(sessions SessionStore, messages MessageStore, tools Toolbox, prefs Preferences, logger *slog.Logger) (*Main, error) {
	// We parse templates from three distinct directories to separate layout, pages, and partial views
	tmpl, err := template.ParseFS(
		chatwebui.TemplateFS,
		"templates/layout/*.html",
		"templates/pages/*.html",
		"templates/partials/*.html",
	)
	if err != nil {
		return nil, err
	}

	// The browser subscribes to a message topic only after the dispatch response
	// arrives, so a fast exchange can publish its outcome before anyone listens.
	// The replayer keeps recent events around and hands them to late subscribers.
	replay, err := sse.NewFiniteReplayer(replayBufferSize, true)
	if err != nil {
		return nil, err
	}

	m := &Main{
		sseSrv: &sse.Server{
			Provider: &sse.Joe{Replayer: replay},
			OnSession: func(s *sse.Session) (sse.Subscription, bool) {
				topics := []string{sse.DefaultTopic, sidebarSSETopic}
				lastEventID := s.LastEventID

				// We create a message-specific topic if the client requests updates for a particular message
				messageID := s.Req.URL.Query().Get("message_id")
				if messageID != "" {
					topics = append(topics, messageIDTopic(messageID))

					// Replaying from the priming event delivers any outcome that
					// was published before this subscriber connected.
					if !lastEventID.IsSet() {
						lastEventID = sse.ID("0")
					}
				}

				return sse.Subscription{
					Client:      s,
					LastEventID: lastEventID,
					Topics:      topics,
				}, true
			},
		},
		templates:        tmpl,
		sessions:         sessions,
		messages:         messages,
		tools:            tools,
		prefs:            prefs,
		logger:           logger,
		currentSessionID: prefs.LastSessionID(),
	}

	// Prime the replay buffer so its first auto ID is consumed by a throwaway
	// event; replaying from ID 0 then covers everything published afterwards.
	ready := &sse.Message{Type: sse.Type("hello")}
	ready.AppendData("ready")
	if err := m.sseSrv.Publish(ready); err != nil {
		return nil, err
	}

	return m, nil
}

func messageIDTopic(messageID string) string {
	return fmt.Sprintf("message-%s", messageID)
}

// Shutdown gracefully terminates the Main instance's SSE server. It broadcasts a close
// message to all connected clients and waits up to 5 seconds for connections to
// terminate. After the timeout, any remaining connections are forcefully closed.
func (m *Main) Shutdown(ctx context.Context) error {
	e := &sse.Message{Type: sse.Type("closeChat")}
	// We create a close event that complies with SSE spec requiring data
	e.AppendData("bye")

	// We ignore the error here since we're shutting down anyway
	_ = m.sseSrv.Publish(e)

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	return m.sseSrv.Shutdown(ctx)
}

// activeSessionID returns the id of the session currently shown in the message pane,
// or an empty string when none is active yet.
func (m *Main) activeSessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentSessionID
}

// setActiveSession records the active session and persists it so a page reload
// restores the same conversation.
func (m *Main) setActiveSession(id string) {
	m.mu.Lock()
	m.currentSessionID = id
	m.mu.Unlock()

	if err := m.prefs.SetLastSessionID(id); err != nil {
		m.logger.Error("Failed to persist active session", errLoggerKey, err.Error())
	}
}

// sessionItem is the view model for one sidebar row.
type sessionItem struct {
	ID   string
	Name string

	Active bool
}

// message is the view model for one rendered bubble.
type message struct {
	ID      string
	Role    string
	Content template.HTML

	StreamingState string
}

func userContent(text string) template.HTML {
	//nolint:gosec // escaped immediately above
	return template.HTML(template.HTMLEscapeString(text))
}

// messageView renders one stored message into its bubble view model. Assistant
// content goes through markdown rendering; user content is escaped verbatim. Any role
// other than "user" is treated as the assistant.
func (m *Main) messageView(msg models.Message) message {
	v := message{
		ID:             uuid.New().String(),
		Role:           string(msg.Role),
		StreamingState: "ended",
	}

	if msg.Role == models.RoleUser {
		v.Content = userContent(msg.Content)
		return v
	}

	html, err := models.RenderMarkdown(msg.Content)
	if err != nil {
		m.logger.Error("Failed to render markdown", errLoggerKey, err.Error())
		html = userContent(msg.Content)
	}
	v.Content = html
	return v
}

// sidebarDivs renders the full session list into concatenated sidebar rows, marking
// the row matching activeID. The list is fetched fresh on every call; there is no
// incremental diffing.
func (m *Main) sidebarDivs(ctx context.Context, activeID string) (string, error) {
	sessions, err := m.sessions.ListSessions(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list sessions: %w", err)
	}
	return m.renderSidebar(sessions, activeID)
}

func (m *Main) renderSidebar(sessions []models.Session, activeID string) (string, error) {
	var sb strings.Builder
	for _, s := range sessions {
		err := m.templates.ExecuteTemplate(&sb, "session_item", sessionItem{
			ID:     s.ID,
			Name:   s.Name,
			Active: s.ID == activeID,
		})
		if err != nil {
			return "", fmt.Errorf("failed to execute session_item template: %w", err)
		}
	}
	return sb.String(), nil
}

// publishSidebar pushes a freshly rendered session list to all connected clients.
// Failures are logged and swallowed; sidebar refreshes are a read path.
func (m *Main) publishSidebar(ctx context.Context) {
	divs, err := m.sidebarDivs(ctx, m.activeSessionID())
	if err != nil {
		m.logger.Error("Failed to render sidebar", errLoggerKey, err.Error())
		return
	}

	msg := sse.Message{Type: sidebarSSEType}
	msg.AppendData(divs)
	if err := m.sseSrv.Publish(&msg, sidebarSSETopic); err != nil {
		m.logger.Error("Failed to publish sidebar", errLoggerKey, err.Error())
	}
}
