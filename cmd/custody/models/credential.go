package models

// CredentialPayload is the flat structure encoded into a scannable token.
// Every field except Serial is a snapshot taken at encode time and must be
// re-validated against live store state before any custody decision.
type CredentialPayload struct {
	Serial     string   `json:"serial"`
	HolderCode string   `json:"holder_code"`
	HolderName string   `json:"holder_name"`
	Make       string   `json:"make"`
	Model      string   `json:"model"`
	Color      string   `json:"color"`
	Category   Category `json:"category"`
}
