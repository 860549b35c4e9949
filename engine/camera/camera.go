package camera

import (
	"sync"

	"github.com/Carmen-Shannon/hyako/common"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultFov is the default vertical field of view in degrees.
	DefaultFov float32 = 45.0

	// DefaultNear is the default near clipping plane distance.
	DefaultNear float32 = 0.1

	// DefaultFar is the default far clipping plane distance.
	DefaultFar float32 = 1000.0
)

// DefaultEye is the default camera position, looking down -Z at the origin.
var DefaultEye = mgl32.Vec3{0, 0, 15}

type cameraImpl struct {
	mu *sync.Mutex

	eye    mgl32.Vec3
	target mgl32.Vec3
	up     mgl32.Vec3

	fov    float32 // radians
	aspect float32
	near   float32
	far    float32

	view           mgl32.Mat4
	projection     mgl32.Mat4
	viewProjection mgl32.Mat4
}

// Camera defines the interface for a perspective camera.
// The camera owns eye, target and up vectors plus perspective settings, and keeps its
// view, projection and combined view-projection matrices current after every mutation.
// The projection maps view-space depth to the WebGPU clip range [0, 1].
type Camera interface {
	// Eye returns the world-space camera position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Eye() mgl32.Vec3

	// Position returns the world-space camera position. It is the value used as the
	// view origin for specular highlights.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Position() mgl32.Vec3

	// Target returns the point the camera looks at.
	//
	// Returns:
	//   - mgl32.Vec3: the look-at target
	Target() mgl32.Vec3

	// Up returns the camera's up vector.
	//
	// Returns:
	//   - mgl32.Vec3: the up vector
	Up() mgl32.Vec3

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// View returns the current view matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	View() mgl32.Mat4

	// Projection returns the current projection matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	Projection() mgl32.Mat4

	// ViewProjection returns the current combined view-projection matrix.
	//
	// Returns:
	//   - mgl32.Mat4: projection * view
	ViewProjection() mgl32.Mat4

	// Projector snapshots the current view-projection matrix into a Projector.
	// The snapshot is unaffected by later camera mutations.
	//
	// Returns:
	//   - Projector: a projector holding the current view-projection matrix
	Projector() Projector

	// GPU returns the camera uniform for upload.
	//
	// Returns:
	//   - GPUCameraUniform: the uniform holding the current view-projection matrix
	GPU() GPUCameraUniform

	// SetEye moves the camera and recomputes matrices.
	//
	// Parameters:
	//   - eye: the new camera position
	SetEye(eye mgl32.Vec3)

	// SetTarget changes the look-at target and recomputes matrices.
	//
	// Parameters:
	//   - target: the new look-at point
	SetTarget(target mgl32.Vec3)

	// SetUp sets the camera's up vector and recomputes matrices.
	//
	// Parameters:
	//   - up: the new up vector
	SetUp(up mgl32.Vec3)

	// SetFov sets the field of view in radians and recomputes matrices.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// SetAspect sets the aspect ratio (width / height) and recomputes matrices.
	// Called by the host when the output surface is resized.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// SetNear sets the near clipping plane distance and recomputes matrices.
	//
	// Parameters:
	//   - near: near plane distance
	SetNear(near float32)

	// SetFar sets the far clipping plane distance and recomputes matrices.
	//
	// Parameters:
	//   - far: far plane distance
	SetFar(far float32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera. Without options the camera sits at (0, 0, 15) looking at the
// origin with +Y up, a 45 degree vertical field of view, aspect 1 and clip planes at 0.1 and 1000.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		eye:    DefaultEye,
		up:     mgl32.Vec3{0, 1, 0},
		fov:    mgl32.DegToRad(DefaultFov),
		aspect: 1.0,
		near:   DefaultNear,
		far:    DefaultFar,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Eye() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	return c.Eye()
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) View() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *cameraImpl) Projection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *cameraImpl) ViewProjection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjection
}

func (c *cameraImpl) Projector() Projector {
	return NewProjector(c.ViewProjection())
}

func (c *cameraImpl) GPU() GPUCameraUniform {
	return GPUCameraUniform{ViewProjection: c.ViewProjection()}
}

func (c *cameraImpl) SetEye(eye mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eye = eye
	c.updateMatrices()
}

func (c *cameraImpl) SetTarget(target mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = target
	c.updateMatrices()
}

func (c *cameraImpl) SetUp(up mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = up
	c.updateMatrices()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if aspect <= 0 {
		return
	}
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.updateMatrices()
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
	c.updateMatrices()
}

// updateMatrices recalculates the view, projection and view-projection matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.view = common.LookAt(c.eye, c.target, c.up)
	c.projection = common.PerspectiveZO(c.fov, c.aspect, c.near, c.far)
	c.viewProjection = c.projection.Mul4(c.view)
}
