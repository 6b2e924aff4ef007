package obs

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestSetupFormats(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, "text", "info")
	Logger.Info("login_succeeded", "user", "admin")
	assert.Contains(t, buf.String(), "msg=login_succeeded")

	buf.Reset()
	Setup(&buf, "json", "warn")
	Logger.Info("dropped")
	Logger.Warn("kept")
	out := buf.String()
	assert.False(t, strings.Contains(out, "dropped"))
	assert.Contains(t, out, `"msg":"kept"`)
	InitLogger()
}
