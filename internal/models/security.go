package models

// PasswordStrength is the remote API's verdict on one candidate password. The score
// runs 0 to 10; suggestions name what the password is missing.
type PasswordStrength struct {
	Score       int      `json:"score"`
	Suggestions []string `json:"suggestions"`
}

// TextScan is the remote API's phishing assessment of a piece of text. The score
// runs 0 to 100; issues name the detected traits.
type TextScan struct {
	Score  int      `json:"score"`
	Issues []string `json:"issues"`
}
