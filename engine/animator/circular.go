package animator

import (
	"errors"

	"github.com/Carmen-Shannon/hyako/engine/transform"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultCircularSpeed is the orbit speed in degrees per second.
const DefaultCircularSpeed float32 = 100

// Circular orbits its target around Center in the XZ plane. The target's Y is left alone.
type Circular struct {
	// Center is the point orbited.
	Center mgl32.Vec3

	// Radius is the orbit radius in world units.
	Radius float32

	// SpeedDeg is the angular speed in degrees per second.
	SpeedDeg float32

	angle float32
}

var _ Trajectory = &Circular{}

// NewCircular creates an orbit of the given radius around center at DefaultCircularSpeed.
//
// Parameters:
//   - center: the point orbited
//   - radius: the orbit radius, finite and >= 0
//
// Returns:
//   - *Circular: the trajectory
//   - error: an error if the radius is negative or not finite
func NewCircular(center mgl32.Vec3, radius float32) (*Circular, error) {
	if !(radius >= 0) || math32.IsInf(radius, 0) {
		return nil, errors.New("circular radius must be finite and >= 0")
	}
	return &Circular{Center: center, Radius: radius, SpeedDeg: DefaultCircularSpeed}, nil
}

// Angle returns the current orbit angle in degrees.
func (c *Circular) Angle() float32 {
	return c.angle
}

// Animate advances the angle by SpeedDeg*dt and places t on the circle.
func (c *Circular) Animate(t *transform.Transform, dt float32) {
	c.angle = math32.Mod(c.angle+c.SpeedDeg*dt, 360)
	rad := mgl32.DegToRad(c.angle)
	t.Translation[0] = c.Center.X() + c.Radius*math32.Cos(rad)
	t.Translation[2] = c.Center.Z() + c.Radius*math32.Sin(rad)
}

// Reset returns the angle to zero.
func (c *Circular) Reset() {
	c.angle = 0
}
