package checkout

import (
	"errors"
	"fmt"
)

// Reason classifies why a checkout could not be started.
type Reason string

const (
	ReasonUnauthenticated          Reason = "Unauthenticated"
	ReasonInvalidPlanConfiguration Reason = "InvalidPlanConfiguration"
	ReasonNotAnUpgrade             Reason = "NotAnUpgrade"
	ReasonInFlight                 Reason = "InFlight"
	ReasonRateLimited              Reason = "RateLimited"
	ReasonTransport                Reason = "TransportError"
	ReasonProvider                 Reason = "ProviderError"
	ReasonNoRedirectURL            Reason = "NoRedirectUrl"
)

var messages = map[Reason]string{
	ReasonUnauthenticated:          "Please sign in to continue with checkout.",
	ReasonInvalidPlanConfiguration: "This plan is not available for purchase right now. Please contact support.",
	ReasonNotAnUpgrade:             "You are already on this plan or a higher one.",
	ReasonInFlight:                 "A checkout is already in progress. Please wait a moment.",
	ReasonRateLimited:              "Too many checkout attempts. Please wait a moment and try again.",
	ReasonTransport:                "We couldn't reach the payment service. Check your connection and try again.",
	ReasonProvider:                 "The payment provider returned an error. Please try again.",
	ReasonNoRedirectURL:            "Checkout could not be started. Please try again.",
}

type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("checkout: %s: %v", e.Reason, e.Err)
	}
	return "checkout: " + string(e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// Message is safe to show to the end user.
func (e *Error) Message() string {
	if m, ok := messages[e.Reason]; ok {
		return m
	}
	return messages[ReasonProvider]
}

// Retryable reports whether re-clicking the checkout button may succeed.
func (e *Error) Retryable() bool {
	switch e.Reason {
	case ReasonRateLimited, ReasonTransport, ReasonProvider, ReasonNoRedirectURL, ReasonInFlight:
		return true
	}
	return false
}

func fail(r Reason, err error) *Error {
	return &Error{Reason: r, Err: err}
}

// ReasonOf extracts the Reason from err, or "" when err is not a checkout error.
func ReasonOf(err error) Reason {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Reason
	}
	return ""
}
