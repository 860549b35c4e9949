package animator

import "log/slog"

// AnimatorBuilderOption is a functional option for configuring an Animator during construction.
type AnimatorBuilderOption func(*animator)

// WithSpeed sets the initial speed multiplier. Negative or non-finite values are ignored.
//
// Parameters:
//   - multiplier: the factor applied to every Update delta
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the speed option to an animator
func WithSpeed(multiplier float32) AnimatorBuilderOption {
	return func(a *animator) {
		_ = a.SetSpeed(multiplier)
	}
}

// WithPaused starts the animator paused.
func WithPaused(paused bool) AnimatorBuilderOption {
	return func(a *animator) {
		a.paused = paused
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) AnimatorBuilderOption {
	return func(a *animator) {
		if logger != nil {
			a.logger = logger
		}
	}
}
