package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lmittmann/tint"
)

const (
	devHandler  = "dev"
	textHandler = "text"
	jsonHandler = "json"
)

// newLogger builds the process logger. level accepts the slog level names
// (debug, info, warn, error); handler selects tint's colored output (dev),
// slog's logfmt (text) or JSON.
func newLogger(w io.Writer, level, handler string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.Wrapf(err, "parsing log level %q", level)
	}

	switch strings.ToLower(handler) {
	case devHandler, "":
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: "[15:04:05.000]",
		})), nil
	case textHandler, "txt":
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
	case jsonHandler:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
	}
	return nil, errors.Wrapf(ErrUnknownLogHandler, "%q", handler)
}
