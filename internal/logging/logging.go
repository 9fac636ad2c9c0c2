// Package logging wraps github.com/rs/zerolog with a package-level logger
// tagged per component, used for structured Debug spans around expensive
// phases (FFT, MSM, setup, prove, verify).
package logging

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	once sync.Once
	base zerolog.Logger
)

func baseLogger() zerolog.Logger {
	once.Do(func() {
		level := zerolog.InfoLevel
		if os.Getenv("TRACE") != "" {
			level = zerolog.DebugLevel
		}
		base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()
	})
	return base
}

// Logger returns a logger tagged with component, e.g. Logger("prover") for
// the Mirage prover.
func Logger(component string) zerolog.Logger {
	return baseLogger().With().Str("component", component).Logger()
}
