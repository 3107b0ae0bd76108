package main

import "github.com/cockroachdb/errors"

var (
	// ErrUnknownHash indicates a --hash value that names no strategy.
	ErrUnknownHash = errors.New("chainmap: unknown hash strategy")
	// ErrUnknownFormat indicates a --format value other than text or yaml.
	ErrUnknownFormat = errors.New("chainmap: unknown input format")
	// ErrUnknownLogHandler indicates a LOG_HANDLER / --log-handler value
	// other than dev, text or json.
	ErrUnknownLogHandler = errors.New("chainmap: unknown log handler")
	// ErrEmptyKey indicates a YAML pair without a key.
	ErrEmptyKey = errors.New("chainmap: pair has an empty key")
)
