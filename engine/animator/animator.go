package animator

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/hyako/engine/transform"
	"github.com/chewxy/math32"
	"github.com/google/uuid"
)

// NeutralSpeed is the default speed multiplier.
const NeutralSpeed float32 = 1

// Target is anything with a transform an animator can drive. The point light and scene
// drawables satisfy it.
type Target interface {
	Transform() transform.Transform
	SetTransform(t transform.Transform)
}

// binding ties one trajectory to one target.
type binding struct {
	id         uuid.UUID
	target     Target
	trajectory Trajectory
}

// animator is the implementation of the Animator interface.
type animator struct {
	mu       sync.Mutex
	bindings []binding
	speed    float32
	paused   bool
	elapsed  float32
	logger   *slog.Logger
}

// Animator advances a set of trajectories bound to targets.
//
// All methods are safe for concurrent use. Update reads each target's transform, lets the
// trajectory move it, and writes it back.
type Animator interface {
	// Add binds a trajectory to a target.
	//
	// Parameters:
	//   - target: the transform owner to drive
	//   - trajectory: the path to follow
	//
	// Returns:
	//   - uuid.UUID: the binding id, used with Remove
	//   - error: an error if either argument is nil
	Add(target Target, trajectory Trajectory) (uuid.UUID, error)

	// Remove drops a binding. Unknown ids are ignored.
	//
	// Parameters:
	//   - id: the binding id returned by Add
	Remove(id uuid.UUID)

	// Len returns the number of bindings.
	Len() int

	// Update advances every trajectory by dt scaled by the speed multiplier. It does nothing
	// while paused. A negative or non-finite dt is logged and skipped.
	//
	// Parameters:
	//   - dt: elapsed wall time in seconds
	Update(dt float32)

	// Pause stops Update from moving anything.
	Pause()

	// Resume undoes Pause.
	Resume()

	// Paused reports whether the animator is paused.
	Paused() bool

	// Reset returns every trajectory to its start and places every target there. Elapsed
	// time goes back to zero.
	Reset()

	// SetSpeed sets the multiplier applied to dt.
	//
	// Parameters:
	//   - multiplier: a finite value >= 0
	//
	// Returns:
	//   - error: an error if the multiplier is negative or not finite
	SetSpeed(multiplier float32) error

	// Speed returns the current multiplier.
	Speed() float32

	// Elapsed returns the unscaled time accumulated by Update while playing.
	Elapsed() float32
}

var _ Animator = &animator{}

// NewAnimator creates an empty, playing animator at NeutralSpeed.
//
// Parameters:
//   - opts: variadic list of AnimatorBuilderOption functions
//
// Returns:
//   - Animator: the new animator
func NewAnimator(opts ...AnimatorBuilderOption) Animator {
	a := &animator{
		speed:  NeutralSpeed,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "animator")
	return a
}

func (a *animator) Add(target Target, trajectory Trajectory) (uuid.UUID, error) {
	if target == nil || trajectory == nil {
		return uuid.Nil, errors.New("animator needs a target and a trajectory")
	}
	id := uuid.New()
	a.mu.Lock()
	a.bindings = append(a.bindings, binding{id: id, target: target, trajectory: trajectory})
	a.mu.Unlock()
	return id, nil
}

func (a *animator) Remove(id uuid.UUID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, b := range a.bindings {
		if b.id == id {
			a.bindings = append(a.bindings[:i], a.bindings[i+1:]...)
			return
		}
	}
}

func (a *animator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.bindings)
}

func (a *animator) Update(dt float32) {
	if dt < 0 || math32.IsNaN(dt) || math32.IsInf(dt, 0) {
		a.logger.Warn("skipping animator update with invalid delta", "dt", dt)
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.paused {
		return
	}
	a.elapsed += dt
	a.step(dt * a.speed)
}

// step applies dt to every binding. Caller holds mu.
func (a *animator) step(dt float32) {
	for _, b := range a.bindings {
		t := b.target.Transform()
		b.trajectory.Animate(&t, dt)
		b.target.SetTransform(t)
	}
}

func (a *animator) Pause() {
	a.mu.Lock()
	a.paused = true
	a.mu.Unlock()
}

func (a *animator) Resume() {
	a.mu.Lock()
	a.paused = false
	a.mu.Unlock()
}

func (a *animator) Paused() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.paused
}

func (a *animator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.elapsed = 0
	for _, b := range a.bindings {
		b.trajectory.Reset()
	}
	a.step(0)
}

func (a *animator) SetSpeed(multiplier float32) error {
	if !(multiplier >= 0) || math32.IsInf(multiplier, 0) {
		return errors.New("animator speed must be finite and >= 0")
	}
	a.mu.Lock()
	a.speed = multiplier
	a.mu.Unlock()
	return nil
}

func (a *animator) Speed() float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.speed
}

func (a *animator) Elapsed() float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.elapsed
}
