package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name     string
		logLevel int
		want     zerolog.Level
	}{
		{name: "trace", logLevel: -1, want: zerolog.TraceLevel},
		{name: "debug", logLevel: 0, want: zerolog.DebugLevel},
		{name: "info", logLevel: 1, want: zerolog.InfoLevel},
		{name: "error", logLevel: 3, want: zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(tt.logLevel, "json")
			assert.Equal(t, tt.want, log.GetLevel())
		})
	}
}

func TestNewFormats(t *testing.T) {
	// Both formats must produce a usable logger.
	for _, format := range []string{"json", "console"} {
		log := New(1, format)
		assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
	}
}
