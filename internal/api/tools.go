package api

import (
	"context"
	"net/http"

	"github.com/okibram/chat-web-ui/internal/models"
)

type passwordCheckRequest struct {
	Password string `json:"password"`
}

type textScanRequest struct {
	Text string `json:"text"`
}

// CheckPassword asks the remote API to grade a candidate password. An empty password
// comes back with score 0 and a single suggestion; the password itself is sent as-is,
// untrimmed.
func (c *Client) CheckPassword(ctx context.Context, password string) (models.PasswordStrength, error) {
	var res models.PasswordStrength
	err := c.do(ctx, "check password", http.MethodPost,
		"/api/password-check", passwordCheckRequest{Password: password}, &res)
	if err != nil {
		return models.PasswordStrength{}, err
	}
	return res, nil
}

// ScanText asks the remote API to scan a piece of text for phishing traits.
func (c *Client) ScanText(ctx context.Context, text string) (models.TextScan, error) {
	var res models.TextScan
	err := c.do(ctx, "scan text", http.MethodPost,
		"/api/scan-text", textScanRequest{Text: text}, &res)
	if err != nil {
		return models.TextScan{}, err
	}
	return res, nil
}
