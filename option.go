package tehom

import "github.com/rs/zerolog"

// WorldOption augments world construction. Options run after the environment
// config is loaded, so they win over it.
type WorldOption func(*World)

// WithConfig replaces the environment-loaded config outright.
func WithConfig(cfg WorldConfig) WorldOption {
	return func(w *World) {
		w.cfg = cfg
	}
}

// WithLogger replaces the world's logger. The registry and the event stream
// inherit it.
func WithLogger(logger zerolog.Logger) WorldOption {
	return func(w *World) {
		w.logger = logger
	}
}
