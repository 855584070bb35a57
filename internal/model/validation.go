package model

// ValidationStatus is the normalized result of a mailbox validation call.
type ValidationStatus string

const (
	StatusValid      ValidationStatus = "valid"
	StatusInvalid    ValidationStatus = "invalid"
	StatusCatchAll   ValidationStatus = "catch_all"
	StatusDisposable ValidationStatus = "disposable"
	StatusUnknown    ValidationStatus = "unknown"
	StatusSpamtrap   ValidationStatus = "spamtrap"
	StatusAbuse      ValidationStatus = "abuse"
	StatusDontSend   ValidationStatus = "dont_send"
	StatusError      ValidationStatus = "error"
)

// Deliverable reports whether the status is the one status the outreach
// workflows accept. Catch-all domains answer yes to any address, so a
// catch_all result is treated as not deliverable.
func (s ValidationStatus) Deliverable() bool {
	return s == StatusValid
}

// ValidationResult holds one normalized validation outcome for an address.
type ValidationResult struct {
	Email     string           `json:"email"`
	Status    ValidationStatus `json:"status"`
	Score     int              `json:"score"`
	RiskScore int              `json:"risk_score"`
	// Raw preserves the provider response (or error details) for diagnostics.
	Raw map[string]any `json:"raw,omitempty"`
}
