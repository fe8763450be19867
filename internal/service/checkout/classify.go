package checkout

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
)

// Classifier maps a gateway error to a Reason.
type Classifier func(error) Reason

type messageRule struct {
	needle string
	reason Reason
}

// MessageRules is the substring fallback, consulted in order on the lower-cased
// error text when no typed signal is available.
var MessageRules = []messageRule{
	{"rate limit", ReasonRateLimited},
	{"too many requests", ReasonRateLimited},
	{"failed to fetch", ReasonTransport},
	{"network", ReasonTransport},
	{"timeout", ReasonTransport},
	{"timed out", ReasonTransport},
	{"connection", ReasonTransport},
}

// ClassifyMessage applies MessageRules only.
func ClassifyMessage(msg string) Reason {
	msg = strings.ToLower(msg)
	for _, r := range MessageRules {
		if strings.Contains(msg, r.needle) {
			return r.reason
		}
	}
	return ReasonProvider
}

// DefaultClassify checks transport-level error types first and falls back to
// the message table.
func DefaultClassify(err error) Reason {
	if err == nil {
		return ""
	}
	if r := ReasonOf(err); r != "" {
		return r
	}
	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded) {
		return ReasonTransport
	}
	return ClassifyMessage(err.Error())
}
