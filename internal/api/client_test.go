package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode"

	"github.com/okibram/chat-web-ui/internal/api"
	"github.com/okibram/chat-web-ui/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-memory stand-in for the remote session/message API, mirroring the
// contract the client is written against.
type fakeAPI struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	order    []string
	nextID   int

	renameRequests int

	chatReply string
	chatError string
	chatCode  int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		sessions:  make(map[string]*models.Session),
		chatReply: "Hi",
	}
}

func (f *fakeAPI) addSession(name string) *models.Session {
	f.nextID++
	id := fmt.Sprintf("s%d", f.nextID)
	if name == "" {
		name = fmt.Sprintf("Chat %d", len(f.order)+1)
	}
	s := &models.Session{ID: id, Name: name, Messages: []models.Message{}}
	f.sessions[id] = s
	f.order = append(f.order, id)
	return s
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/sessions", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		list := make([]models.Session, 0, len(f.order))
		for _, id := range f.order {
			list = append(list, models.Session{ID: id, Name: f.sessions[id].Name})
		}
		writeJSON(w, http.StatusOK, map[string]any{"sessions": list})
	})

	mux.HandleFunc("POST /api/sessions", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var body struct {
			Name string `json:"name"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		s := f.addSession(body.Name)
		writeJSON(w, http.StatusOK, map[string]any{"session": s})
	})

	mux.HandleFunc("GET /api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		s, ok := f.sessions[r.PathValue("id")]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "not_found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"session": s})
	})

	mux.HandleFunc("PATCH /api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.renameRequests++
		s, ok := f.sessions[r.PathValue("id")]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "not_found"})
			return
		}
		var body struct {
			Name string `json:"name"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if strings.TrimSpace(body.Name) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "empty_name"})
			return
		}
		s.Name = body.Name
		writeJSON(w, http.StatusOK, map[string]any{"renamed": true})
	})

	mux.HandleFunc("DELETE /api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id := r.PathValue("id")
		if _, ok := f.sessions[id]; !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"deleted": false})
			return
		}
		delete(f.sessions, id)
		for i, sid := range f.order {
			if sid == id {
				f.order = append(f.order[:i], f.order[i+1:]...)
				break
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
	})

	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.chatCode != 0 && f.chatError == "" {
			w.WriteHeader(f.chatCode)
			return
		}
		if f.chatError != "" {
			code := f.chatCode
			if code == 0 {
				code = http.StatusOK
			}
			writeJSON(w, code, map[string]any{"error": f.chatError})
			return
		}
		var body struct {
			Prompt    string `json:"prompt"`
			SessionID string `json:"session_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		s, ok := f.sessions[body.SessionID]
		if !ok {
			// The server recreates missing sessions and answers with the new id.
			s = f.addSession("")
		}
		s.Messages = append(s.Messages,
			models.Message{Role: models.RoleUser, Content: body.Prompt},
			models.Message{Role: models.RoleAssistant, Content: f.chatReply},
		)
		writeJSON(w, http.StatusOK, map[string]any{"response": f.chatReply, "session_id": s.ID})
	})

	mux.HandleFunc("POST /api/password-check", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		pw := body.Password
		if pw == "" {
			writeJSON(w, http.StatusOK, map[string]any{"score": 0, "suggestions": []string{"Empty password"}})
			return
		}

		var hasUpper, hasLower, hasDigit, hasSymbol bool
		for _, c := range pw {
			hasUpper = hasUpper || unicode.IsUpper(c)
			hasLower = hasLower || unicode.IsLower(c)
			hasDigit = hasDigit || unicode.IsDigit(c)
			hasSymbol = hasSymbol || !(unicode.IsLetter(c) || unicode.IsDigit(c))
		}

		score := 0
		if len(pw) >= 12 {
			score += 4
		}
		if hasUpper {
			score += 2
		}
		if hasLower {
			score++
		}
		if hasDigit {
			score += 2
		}
		if hasSymbol {
			score++
		}

		suggestions := []string{}
		if len(pw) < 12 {
			suggestions = append(suggestions, "Use at least 12 characters.")
		}
		if !hasDigit {
			suggestions = append(suggestions, "Add digits.")
		}
		if !hasUpper {
			suggestions = append(suggestions, "Add uppercase letters.")
		}
		if !hasSymbol {
			suggestions = append(suggestions, "Add symbols.")
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"score":       min(10, max(1, score)),
			"suggestions": suggestions,
		})
	})

	mux.HandleFunc("POST /api/scan-text", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		issues := []string{}
		score := 0
		if strings.Contains(body.Text, "http://") || strings.Contains(body.Text, "https://") {
			issues = append(issues, "URL(s) detected")
			score += 30
		}
		lower := strings.ToLower(body.Text)
		if strings.Contains(lower, "urgent") || strings.Contains(lower, "immediately") {
			issues = append(issues, "Urgent language")
			score += 20
		}

		writeJSON(w, http.StatusOK, map[string]any{"score": min(100, score), "issues": issues})
	})

	mux.HandleFunc("POST /api/session/clear", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var body struct {
			SessionID string `json:"session_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		s, ok := f.sessions[body.SessionID]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"cleared": false})
			return
		}
		s.Messages = nil
		writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T) (*api.Client, *fakeAPI) {
	t.Helper()
	fake := newFakeAPI()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return api.NewClient(srv.URL, 0, logger), fake
}

func TestCreateAndListSessions(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	created, err := client.CreateSession(ctx, "My Chat")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "My Chat", created.Name)

	sessions, err := client.ListSessions(ctx)
	require.NoError(t, err)

	// The new session's id appears exactly once.
	count := 0
	for _, s := range sessions {
		if s.ID == created.ID {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestCreateSessionDefaultName(t *testing.T) {
	client, _ := newTestClient(t)

	created, err := client.CreateSession(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Chat 1", created.Name)
}

func TestRenameSession(t *testing.T) {
	client, fake := newTestClient(t)
	ctx := context.Background()

	created, err := client.CreateSession(ctx, "Before")
	require.NoError(t, err)

	tests := []struct {
		name    string
		newName string
		wantErr error
	}{
		{name: "empty name", newName: "", wantErr: api.ErrEmptyName},
		{name: "whitespace name", newName: "   ", wantErr: api.ErrEmptyName},
		{name: "valid name", newName: "After", wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.RenameSession(ctx, created.ID, tt.newName)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}

	// Only the valid rename reached the server.
	assert.Equal(t, 1, fake.renameRequests)

	sessions, err := client.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "After", sessions[0].Name)
}

func TestRenameSessionUnknownID(t *testing.T) {
	client, _ := newTestClient(t)

	err := client.RenameSession(context.Background(), "nope", "New Name")

	var serverErr *api.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusNotFound, serverErr.StatusCode)
}

func TestDeleteSession(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	created, err := client.CreateSession(ctx, "")
	require.NoError(t, err)

	deleted, err := client.DeleteSession(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	// A second delete reports false without an error.
	deleted, err = client.DeleteSession(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	sessions, err := client.ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestGetSession(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	created, err := client.CreateSession(ctx, "")
	require.NoError(t, err)

	_, _, err = client.SendPrompt(ctx, "Hello", created.ID)
	require.NoError(t, err)

	detail, err := client.GetSession(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, detail.Messages, 2)
	assert.Equal(t, models.RoleUser, detail.Messages[0].Role)
	assert.Equal(t, "Hello", detail.Messages[0].Content)
	assert.Equal(t, models.RoleAssistant, detail.Messages[1].Role)
}

func TestGetSessionUnknownID(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.GetSession(context.Background(), "nope")

	var serverErr *api.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusNotFound, serverErr.StatusCode)
}

func TestSendPrompt(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	created, err := client.CreateSession(ctx, "")
	require.NoError(t, err)

	reply, sessionID, err := client.SendPrompt(ctx, "Hello", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hi", reply)
	assert.Equal(t, created.ID, sessionID)
}

func TestSendPromptAdoptsRecreatedSession(t *testing.T) {
	client, _ := newTestClient(t)

	reply, sessionID, err := client.SendPrompt(context.Background(), "Hello", "gone")
	require.NoError(t, err)
	assert.Equal(t, "Hi", reply)
	require.NotEmpty(t, sessionID)
	assert.NotEqual(t, "gone", sessionID)
}

func TestSendPromptErrorBody(t *testing.T) {
	tests := []struct {
		name string
		code int
	}{
		{name: "error with success status", code: 0},
		{name: "error with failure status", code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, fake := newTestClient(t)
			fake.chatError = "rate limited"
			fake.chatCode = tt.code

			_, _, err := client.SendPrompt(context.Background(), "Hello", "s1")

			var apiErr *api.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "rate limited", apiErr.Message)
		})
	}
}

func TestSendPromptServerError(t *testing.T) {
	client, fake := newTestClient(t)
	fake.chatCode = http.StatusBadGateway

	_, _, err := client.SendPrompt(context.Background(), "Hello", "s1")

	var serverErr *api.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusBadGateway, serverErr.StatusCode)
}

func TestNetworkError(t *testing.T) {
	fake := newFakeAPI()
	srv := httptest.NewServer(fake.handler())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := api.NewClient(srv.URL, 0, logger)
	srv.Close()

	_, err := client.ListSessions(context.Background())
	var netErr *api.NetworkError
	require.ErrorAs(t, err, &netErr)

	_, _, err = client.SendPrompt(context.Background(), "Hello", "s1")
	require.ErrorAs(t, err, &netErr)
}

func TestClearSession(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	created, err := client.CreateSession(ctx, "")
	require.NoError(t, err)
	_, _, err = client.SendPrompt(ctx, "Hello", created.ID)
	require.NoError(t, err)

	cleared, err := client.ClearSession(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, cleared)

	detail, err := client.GetSession(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Messages)

	cleared, err = client.ClearSession(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, cleared)
}

func TestPing(t *testing.T) {
	client, _ := newTestClient(t)
	require.NoError(t, client.Ping(context.Background()))
}

func TestCheckPassword(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	tests := []struct {
		name            string
		password        string
		wantScore       int
		wantSuggestions []string
	}{
		{
			name:            "empty password",
			password:        "",
			wantScore:       0,
			wantSuggestions: []string{"Empty password"},
		},
		{
			name:      "weak password",
			password:  "password",
			wantScore: 1,
			wantSuggestions: []string{
				"Use at least 12 characters.",
				"Add digits.",
				"Add uppercase letters.",
				"Add symbols.",
			},
		},
		{
			name:            "strong password",
			password:        "Str0ng&Secure",
			wantScore:       10,
			wantSuggestions: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := client.CheckPassword(ctx, tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, res.Score)
			if tt.wantSuggestions == nil {
				assert.Empty(t, res.Suggestions)
			} else {
				assert.Equal(t, tt.wantSuggestions, res.Suggestions)
			}
		})
	}
}

func TestScanText(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	res, err := client.ScanText(ctx, "hello there")
	require.NoError(t, err)
	assert.Zero(t, res.Score)
	assert.Empty(t, res.Issues)

	res, err = client.ScanText(ctx, "URGENT: verify your account immediately at https://evil.example")
	require.NoError(t, err)
	assert.Equal(t, 50, res.Score)
	assert.Equal(t, []string{"URL(s) detected", "Urgent language"}, res.Issues)
}
