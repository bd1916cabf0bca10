// Package logging builds the process logger: JSON records to the console and to
// a size-rotated log file.
package logging

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSizeMB  = 5
	maxBackups = 5
)

// Options configures New.
type Options struct {
	File    string // path of the rotated log file; empty disables it
	Level   slog.Level
	Console io.Writer // usually os.Stdout; nil disables it
}

// New returns a logger writing to the console and the rotated file.
// The returned closer releases the log file.
func New(opts Options) (*slog.Logger, io.Closer) {
	var writers []io.Writer
	if opts.Console != nil {
		writers = append(writers, opts.Console)
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
		}
		writers = append(writers, file)
		closer = file
	}

	handler := slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: opts.Level})
	return slog.New(handler), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
