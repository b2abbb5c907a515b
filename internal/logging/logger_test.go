package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		debug     bool
		wantDebug bool
		wantInfo  bool
	}{
		{name: "default level", wantInfo: true},
		{name: "env debug", level: "DEBUG", wantDebug: true, wantInfo: true},
		{name: "env warn", level: "warn"},
		{name: "debug flag wins", level: "error", debug: true, wantDebug: true, wantInfo: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level, tt.debug)

			logger.Debug("debug line")
			logger.Info("info line", "component", "governance")

			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("debug line")))
			assert.Equal(t, tt.wantInfo, bytes.Contains(buf.Bytes(), []byte("info line")))
			if !tt.debug {
				assert.NotContains(t, buf.String(), "time=")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestShortPath(t *testing.T) {
	assert.Equal(t, "internal/governance/engine.go", shortPath("/home/dev/src/daovote/internal/governance/engine.go"))
	assert.Equal(t, "engine.go", shortPath("/elsewhere/engine.go"))
}
