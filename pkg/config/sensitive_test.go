package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSensitiveString(t *testing.T) {
	t.Run("Should redact non-empty values", func(t *testing.T) {
		s := SensitiveString("sk-live-123")
		assert.Equal(t, "[REDACTED]", s.String())
		assert.Equal(t, "sk-live-123", s.Value())
	})

	t.Run("Should keep empty values empty", func(t *testing.T) {
		assert.Equal(t, "", SensitiveString("").String())
	})

	t.Run("Should marshal as redacted string inside the config", func(t *testing.T) {
		cfg := Default()
		cfg.LLM.APIKey = SensitiveString("sk-live-123")

		data, err := json.Marshal(cfg.LLM)
		require.NoError(t, err)

		assert.Contains(t, string(data), "[REDACTED]")
		assert.NotContains(t, string(data), "sk-live-123")
	})
}
