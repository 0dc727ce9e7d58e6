package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/khalid-nowaf/multibit/pkg/config"
)

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LoggingConfig{Format: config.LogTextFormat, Level: zerolog.InfoLevel})

	logger.Info().Int("stride", 4).Msg("trie built")

	assert.NotContains(t, buf.String(), "{")
	assert.Contains(t, buf.String(), "trie built")
	assert.Contains(t, buf.String(), "stride=")
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LoggingConfig{Format: config.LogJSONFormat, Level: zerolog.InfoLevel})

	logger.Info().Int("stride", 4).Msg("trie built")

	assert.Contains(t, buf.String(), `"level":"info"`)
	assert.Contains(t, buf.String(), `"stride":4`)
	assert.Contains(t, buf.String(), `"message":"trie built"`)
	assert.Contains(t, buf.String(), `"time"`)
}

func TestLoggerHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LoggingConfig{Format: config.LogJSONFormat, Level: zerolog.WarnLevel})

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
