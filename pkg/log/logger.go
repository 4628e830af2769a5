// Package log configures the process-wide zerolog loggers, one per
// component.
package log

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

type LoggerType uint8

const (
	ConsoleLogger LoggerType = iota
	JSONLogger
)

var (
	Root     zerolog.Logger
	Liveness zerolog.Logger
	Session  zerolog.Logger
	Gateway  zerolog.Logger
)

// Options for Init
type Options struct {
	// LogLevel defaults to Info
	LogLevel zerolog.Level
	Type     LoggerType
}

func ParseLogLevel(loglevel string) (zerolog.Level, error) {
	return zerolog.ParseLevel(loglevel)
}

func Init(opts Options) {
	switch opts.Type {
	case ConsoleLogger:
		cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		Root = zerolog.New(cw).Level(opts.LogLevel).
			With().Timestamp().Logger()
	default:
		Root = zerolog.New(os.Stdout).Level(opts.LogLevel).
			With().Timestamp().Logger()
	}
	Liveness = Root.With().Str("component", "liveness").Logger()
	Session = Root.With().Str("component", "session").Logger()
	Gateway = Root.With().Str("component", "gateway").Logger()
}
