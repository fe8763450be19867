package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]string{
		"":                   StatusNone,
		" active ":           StatusActive,
		"trialing":           StatusTrialing,
		"unpaid":             StatusPastDue,
		"incomplete_expired": StatusCanceled,
		"Cancelled":          StatusCanceled,
		"paused":             StatusInactive,
		"something_new":      "something_new",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeStatus(in), in)
	}
}
