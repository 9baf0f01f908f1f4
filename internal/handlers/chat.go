package handlers

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/okibram/chat-web-ui/internal/api"
	"github.com/okibram/chat-web-ui/internal/models"
	"github.com/tmaxmax/go-sse"
)

// connectivityErrorText is shown as an assistant bubble when the prompt submission
// fails before the remote API could report anything useful.
const connectivityErrorText = "Error: could not reach the chat service. Please check your connection and try again."

// HandleChat processes one prompt submission. The input is trimmed and empty input
// is a no-op; a submission while another is in flight is likewise a no-op, rejected
// before it touches any state. When no session is active one is created first, and a
// failure there aborts the send and releases the guard.
//
// On dispatch the handler responds immediately with the rendered user bubble and a
// loading assistant bubble (the thinking indicator), then completes the exchange
// asynchronously: the assistant reply, an error bubble, or a connectivity bubble is
// pushed over the message-specific SSE topic, followed by a close event that also
// marks the guard released.
func (m *Main) HandleChat(w http.ResponseWriter, r *http.Request) {
	text := strings.TrimSpace(r.FormValue("message"))
	if text == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if !m.isSending.CompareAndSwap(false, true) {
		// At most one prompt submission is in flight at a time.
		w.WriteHeader(http.StatusConflict)
		return
	}

	sessionID := m.activeSessionID()
	if sessionID == "" {
		created, err := m.sessions.CreateSession(r.Context(), "")
		if err != nil {
			m.isSending.Store(false)
			m.logger.Error("Failed to create session for prompt", errLoggerKey, err.Error())
			http.Error(w, "failed to create session", http.StatusBadGateway)
			return
		}
		sessionID = created.ID
		m.setActiveSession(sessionID)
	}

	userMsg := message{
		ID:             uuid.New().String(),
		Role:           string(models.RoleUser),
		Content:        userContent(text),
		StreamingState: "ended",
	}
	aiMsg := message{
		ID:             uuid.New().String(),
		Role:           string(models.RoleAssistant),
		StreamingState: "loading",
	}

	go m.completePrompt(text, sessionID, aiMsg.ID)

	if err := m.templates.ExecuteTemplate(w, "user_message", userMsg); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := m.templates.ExecuteTemplate(w, "ai_message", aiMsg); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// completePrompt performs the remote round trip for one submission and publishes the
// outcome to the waiting browser. It runs detached from the request context because
// the HTTP response has already been written when the exchange finishes.
func (m *Main) completePrompt(prompt, sessionID, aiMsgID string) {
	defer m.isSending.Store(false)
	// The close event doubles as the indicator-removal signal on every path.
	defer func() {
		e := &sse.Message{Type: sse.Type("closeMessage")}
		e.AppendData("bye")
		_ = m.sseSrv.Publish(e, messageIDTopic(aiMsgID))
	}()

	ctx := context.Background()

	reply, adoptedID, err := m.messages.SendPrompt(ctx, prompt, sessionID)
	if err != nil {
		var apiErr *api.APIError
		text := connectivityErrorText
		if errors.As(err, &apiErr) {
			text = "Error: " + apiErr.Message
		}
		m.logger.Error("Prompt submission failed",
			slog.String("sessionID", sessionID),
			errLoggerKey, err.Error())
		m.publishMessage(aiMsgID, userContent(text))
		return
	}

	// The server may answer with a different session id, e.g. when the submitted
	// session was recreated; it becomes the new active session.
	if adoptedID != "" {
		m.setActiveSession(adoptedID)
	}

	html, err := models.RenderMarkdown(reply)
	if err != nil {
		m.logger.Error("Failed to render markdown", errLoggerKey, err.Error())
		html = userContent(reply)
	}
	m.publishMessage(aiMsgID, html)

	// Session names may reflect server-side summarization after a reply.
	m.publishSidebar(ctx)
}

func (m *Main) publishMessage(aiMsgID string, content template.HTML) {
	msg := sse.Message{Type: messagesSSEType}
	msg.AppendData(string(content))
	if err := m.sseSrv.Publish(&msg, messageIDTopic(aiMsgID)); err != nil {
		m.logger.Error("Failed to publish message",
			slog.String("messageID", aiMsgID),
			errLoggerKey, err.Error())
	}
}
