package stripe

import (
	"errors"
	"net/http"

	"creator-app/internal/service/checkout"

	stripeapi "github.com/stripe/stripe-go/v75"
)

// Classify maps Stripe API errors to checkout reasons using the structured
// status and code, and defers to the generic classifier otherwise.
func Classify(err error) checkout.Reason {
	var se *stripeapi.Error
	if errors.As(err, &se) {
		if se.HTTPStatusCode == http.StatusTooManyRequests || string(se.Code) == "rate_limit" {
			return checkout.ReasonRateLimited
		}
		return checkout.ReasonProvider
	}
	return checkout.DefaultClassify(err)
}
