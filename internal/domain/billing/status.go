package billing

import "strings"

const (
	StatusNone     = "none"
	StatusActive   = "active"
	StatusTrialing = "trialing"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
	StatusInactive = "inactive"
)

// NormalizeStatus folds Stripe subscription statuses into the set the app reasons about.
func NormalizeStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return StatusNone
	case "active":
		return StatusActive
	case "trialing":
		return StatusTrialing
	case "past_due", "unpaid":
		return StatusPastDue
	case "canceled", "cancelled", "incomplete_expired":
		return StatusCanceled
	case "incomplete", "paused", "inactive":
		return StatusInactive
	default:
		return s
	}
}
