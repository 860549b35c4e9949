package shadow

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
)

// PassBuilderOption is a functional option applied to a pass during construction via NewPass.
type PassBuilderOption func(*passImpl)

// WithWorkers sets the number of band workers used to rasterize a pass.
//
// Parameters:
//   - n: worker count (values below 1 are raised to 1)
//
// Returns:
//   - PassBuilderOption: a function that sets the worker count
func WithWorkers(n int) PassBuilderOption {
	return func(p *passImpl) {
		p.workers = n
	}
}

// WithViewProjection sets the initial light view-projection matrix.
//
// Parameters:
//   - vp: the light view-projection
//
// Returns:
//   - PassBuilderOption: a function that sets the view-projection
func WithViewProjection(vp mgl32.Mat4) PassBuilderOption {
	return func(p *passImpl) {
		p.viewProjection = vp
	}
}

// WithLogger sets the logger used by the pass.
func WithLogger(logger *slog.Logger) PassBuilderOption {
	return func(p *passImpl) {
		p.logger = logger
	}
}
