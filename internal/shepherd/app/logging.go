package app

import (
	"io"
	"log/slog"
	"os"

	"github.com/moonyfringers/shpctl/internal/shepherd/model"
)

// ConfigureLogging builds a slog handler from a LoggingCfg: stderr
// and/or a log file, text or JSON, at the configured level. Resolution
// misses on boolify-tagged fields default Stdout to true.
func ConfigureLogging(cfg model.LoggingCfg) error {
	var writers []io.Writer
	stdout, ok := model.Boolify(cfg.Stdout)
	if !ok || stdout {
		writers = append(writers, os.Stderr)
	}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		writers = append(writers, f)
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	w := io.MultiWriter(writers...)

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}
