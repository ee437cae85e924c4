package logger

import (
	"io"
	"log/slog"
	"os"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Setup builds the service logger for the given environment and makes it
// the process default, so std log output lands in the same sink and format.
// Local runs get the colored console handler, everything else JSON.
func Setup(env string) *slog.Logger {
	return install(setup(env, os.Stdout))
}

func install(l *slog.Logger) *slog.Logger {
	slog.SetDefault(l)
	return l
}

func setup(env string, w io.Writer) *slog.Logger {
	switch env {
	case EnvLocal:
		return slog.New(NewPrettyHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case EnvDev:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
