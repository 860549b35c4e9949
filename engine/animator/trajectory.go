// Package animator moves transforms along simple trajectories over time. An Animator binds
// trajectories to targets such as the point light or a scene drawable and advances them each
// frame.
package animator

import (
	"github.com/Carmen-Shannon/hyako/engine/transform"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Trajectory advances a transform along a path.
type Trajectory interface {
	// Animate moves t by dt seconds of motion.
	//
	// Parameters:
	//   - t: the transform to update in place
	//   - dt: elapsed time in seconds, already scaled by the animator speed
	Animate(t *transform.Transform, dt float32)

	// Reset returns the trajectory to its starting state. The next Animate call with dt = 0
	// places the target at the start of the path.
	Reset()
}

// Stationary is a Trajectory that never moves its target.
type Stationary struct{}

var _ Trajectory = Stationary{}

func (Stationary) Animate(*transform.Transform, float32) {}

func (Stationary) Reset() {}

// DirectionVector returns the unit direction for a yaw and pitch in radians. Yaw rotates in the
// XY plane starting from +X and pitch lifts toward +Z.
//
// Parameters:
//   - yaw: rotation about Z in radians
//   - pitch: elevation in radians
//
// Returns:
//   - mgl32.Vec3: the unit direction
func DirectionVector(yaw, pitch float32) mgl32.Vec3 {
	cp := math32.Cos(pitch)
	return mgl32.Vec3{cp * math32.Cos(yaw), cp * math32.Sin(yaw), math32.Sin(pitch)}
}
