package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// HandlePasswordCheck grades the submitted password through the remote API and
// returns the score and suggestions as JSON. An empty password is still forwarded;
// the server answers it with score 0.
func (m *Main) HandlePasswordCheck(w http.ResponseWriter, r *http.Request) {
	res, err := m.tools.CheckPassword(r.Context(), r.FormValue("password"))
	if err != nil {
		m.logger.Error("Failed to check password", errLoggerKey, err.Error())
		http.Error(w, "failed to check password", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		m.logger.Error("Failed to encode password report", errLoggerKey, err.Error())
	}
}

// HandleScanText runs the submitted text through the remote API's phishing scan and
// returns the risk score and detected issues as JSON. Whitespace-only text is a
// no-op.
func (m *Main) HandleScanText(w http.ResponseWriter, r *http.Request) {
	text := r.FormValue("text")
	if strings.TrimSpace(text) == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	res, err := m.tools.ScanText(r.Context(), text)
	if err != nil {
		m.logger.Error("Failed to scan text", errLoggerKey, err.Error())
		http.Error(w, "failed to scan text", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		m.logger.Error("Failed to encode scan report", errLoggerKey, err.Error())
	}
}
