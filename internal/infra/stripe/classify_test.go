package stripe

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	stripeapi "github.com/stripe/stripe-go/v75"

	"creator-app/internal/service/checkout"
)

func TestClassify(t *testing.T) {
	rateLimited := &stripeapi.Error{HTTPStatusCode: http.StatusTooManyRequests, Msg: "slow down"}
	assert.Equal(t, checkout.ReasonRateLimited, Classify(fmt.Errorf("create checkout session: %w", rateLimited)))

	byCode := &stripeapi.Error{HTTPStatusCode: http.StatusBadRequest, Code: "rate_limit"}
	assert.Equal(t, checkout.ReasonRateLimited, Classify(byCode))

	// The structured error wins over misleading text.
	invalid := &stripeapi.Error{HTTPStatusCode: http.StatusBadRequest, Msg: "network of prices is invalid"}
	assert.Equal(t, checkout.ReasonProvider, Classify(invalid))

	assert.Equal(t, checkout.ReasonTransport, Classify(errors.New("dial tcp: connection refused")))
	assert.Equal(t, checkout.ReasonProvider, Classify(errors.New("boom")))
}
