package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_ProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := setup(EnvProd, &buf)

	log.Debug("hidden")
	log.Info("order created", slog.String("order_id", "o-1"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "order created", rec["msg"])
	assert.Equal(t, "o-1", rec["order_id"])
}

func TestPrettyHandler(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	log := setup(EnvLocal, &buf).With(slog.String("op", "services.Test"))

	log.Warn("gateway failed", slog.Any("error", errors.New("boom")))

	out := buf.String()
	assert.Contains(t, out, "WARN:")
	assert.Contains(t, out, "gateway failed")
	assert.Contains(t, out, `"op": "services.Test"`)
	assert.Contains(t, out, `"error": "boom"`)
}

func TestPrettyHandler_Level(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestInstall_RoutesStdLog(t *testing.T) {
	prev := slog.Default()
	prevFlags := log.Flags()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		log.SetOutput(os.Stderr)
		log.SetFlags(prevFlags)
	})

	var buf bytes.Buffer
	install(setup(EnvProd, &buf))
	log.Printf("Error parsing request body: %v", errors.New("boom"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "Error parsing request body: boom", entry["msg"])
}
