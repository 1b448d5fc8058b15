package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"trace":   zerolog.TraceLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for input, want := range tests {
		assert.Equal(t, want, ParseLevel(input), "level %q", input)
	}
}

func TestNew(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New("info", "json", &buf)

		logger.Debug().Msg("hidden")
		logger.Info().Str("run", "abc").Msg("started")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "info", entry["level"])
		assert.Equal(t, "started", entry["message"])
		assert.Equal(t, "abc", entry["run"])
		assert.NotContains(t, buf.String(), "hidden")
	})

	t.Run("console", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New("debug", "console", &buf)

		logger.Debug().Msg("team Red eliminated")

		assert.Contains(t, buf.String(), "DBG")
		assert.Contains(t, buf.String(), "team Red eliminated")
		assert.False(t, json.Valid(buf.Bytes()))
	})
}
