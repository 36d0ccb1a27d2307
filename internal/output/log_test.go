package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_Verbose(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, true)

	log.Step("Connecting %s...", "wallet")
	log.Detail("Wallet: %s", "0xabc")
	log.Warn("careful")

	assert.Equal(t, "• Connecting wallet...\n  Wallet: 0xabc\n⚠ Warning: careful\n", buf.String())
}

func TestLogger_Quiet(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, false)

	log.Step("hidden")
	log.Detail("hidden")
	log.Warn("shown")

	assert.False(t, log.Verbose())
	assert.Equal(t, "⚠ Warning: shown\n", buf.String())
}

func TestLogger_Nil(t *testing.T) {
	var log *Logger
	assert.NotPanics(t, func() {
		log.Step("x")
		log.Detail("x")
		log.Warn("x")
	})
	assert.False(t, log.Verbose())
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	err := PrintJSON(&buf, map[string]interface{}{"version": "dev", "count": 2})
	assert.NoError(t, err)
	assert.Equal(t, "{\n  \"count\": 2,\n  \"version\": \"dev\"\n}\n", buf.String())
}
