// api/audit/model.go
package audit

import "time"

// Decision outcomes recorded for governed requests.
const (
	OutcomeDenied      = "denied"
	OutcomeQuota       = "quota_exceeded"
	OutcomeRateLimited = "rate_limited"
	OutcomeMutated     = "mutated"
)

type DecisionLog struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	UserID    string    `json:"user_id"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	Action    string    `json:"action"`
	Subject   string    `json:"subject"`
	Outcome   string    `json:"outcome"`
	Reason    string    `json:"reason,omitempty"`
}
