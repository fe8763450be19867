package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductionLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	log.Debug().Msg("hidden")
	log.Info().Str("user_id", "u1").Msg("signed in")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "signed in", line["message"])
	assert.Equal(t, "u1", line["user_id"])
	assert.Equal(t, "creator-app", line["service"])
}

func TestDevelopmentLoggerIsVerbose(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("development", &buf)

	log.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}
