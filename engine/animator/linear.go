package animator

import (
	"errors"

	"github.com/Carmen-Shannon/hyako/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	minProgress float32 = -1
	maxProgress float32 = 1
)

// LinearConfig describes a straight-line path.
type LinearConfig struct {
	// Start is the position at progress zero.
	Start mgl32.Vec3

	// Yaw and Pitch, in radians, give the direction of travel via DirectionVector.
	Yaw, Pitch float32

	// Distance is the length from Start to either end of the path.
	Distance float32

	// Speed is in units per second.
	Speed float32

	// Looping turns back at the far negative end, and restarts from Start at the positive end
	// when Reversing is off.
	Looping bool

	// Reversing turns back at the positive end.
	Reversing bool
}

// Linear moves its target back and forth along a line through Start. Progress runs in
// [-1, 1] and the position is Start + direction * Distance * progress.
type Linear struct {
	cfg       LinearConfig
	direction mgl32.Vec3
	progress  float32
	backwards bool
}

var _ Trajectory = &Linear{}

// NewLinear creates a linear trajectory.
//
// Parameters:
//   - cfg: the path description
//
// Returns:
//   - *Linear: the trajectory
//   - error: an error if Distance or Speed is zero
func NewLinear(cfg LinearConfig) (*Linear, error) {
	if cfg.Distance == 0 || cfg.Speed == 0 {
		return nil, errors.New("linear trajectory distance and speed must be non-zero")
	}
	return &Linear{cfg: cfg, direction: DirectionVector(cfg.Yaw, cfg.Pitch)}, nil
}

// Progress returns the position along the path in [-1, 1].
func (l *Linear) Progress() float32 {
	return l.progress
}

// Backwards reports whether the target is moving toward the negative end.
func (l *Linear) Backwards() bool {
	return l.backwards
}

func (l *Linear) Animate(t *transform.Transform, dt float32) {
	step := l.cfg.Speed / l.cfg.Distance * dt
	if l.backwards {
		step = -step
	}
	l.progress = mgl32.Clamp(l.progress+step, minProgress, maxProgress)
	t.Translation = l.position()

	if l.progress >= maxProgress && l.cfg.Reversing {
		l.backwards = true
	}
	if l.progress <= minProgress && l.cfg.Looping {
		l.backwards = false
	}
	if l.progress >= maxProgress && l.cfg.Looping && !l.cfg.Reversing {
		l.progress = 0
		t.Translation = l.cfg.Start
	}
}

func (l *Linear) Reset() {
	l.progress = 0
	l.backwards = false
}

func (l *Linear) position() mgl32.Vec3 {
	return l.cfg.Start.Add(l.direction.Mul(l.cfg.Distance * l.progress))
}
