package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/hyako/common"
	"github.com/Carmen-Shannon/hyako/engine/animator"
	"github.com/Carmen-Shannon/hyako/engine/camera"
	"github.com/Carmen-Shannon/hyako/engine/game_object"
	"github.com/Carmen-Shannon/hyako/engine/light"
	"github.com/Carmen-Shannon/hyako/engine/model"
	"github.com/Carmen-Shannon/hyako/engine/renderer"
	"github.com/Carmen-Shannon/hyako/engine/renderer/material"
	"github.com/Carmen-Shannon/hyako/engine/shadow"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Drawable is a mesh, material and transform drawn by the scene.
type Drawable = game_object.GameObject

// scene is the implementation of the Scene interface.
type scene struct {
	mu   sync.RWMutex
	name string

	camera   camera.Camera
	light    light.Light
	lighting light.LightingModel
	animator animator.Animator

	shadowMap     *shadow.ShadowMap
	shadowPass    shadow.Pass
	sampler       *shadow.Sampler
	samplerConfig shadow.SamplerConfig
	shadowWorkers int
	shadowSize    int

	drawables []Drawable
	index     map[uuid.UUID]int

	gizmo     material.LightGizmoMaterial
	gizmoMesh model.Model

	logger *slog.Logger
}

// Scene owns everything one view of the world needs: a camera, a single point light, the
// lighting model, a CPU shadow pass with its map and sampler, the drawables and the light
// gizmo. It assembles the renderer.Frame consumed by the GPU renderer and carries a CPU
// reference of the lit fragment for host-side shading and tests.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Light returns the scene's point light.
	Light() light.Light

	// LightingModel returns the model used by ShadeFragment.
	LightingModel() light.LightingModel

	// SetLightingModel swaps the lighting model, e.g. after a config reload.
	//
	// Parameters:
	//   - m: the new lighting model
	SetLightingModel(m light.LightingModel)

	// Animator returns the animator advanced by Update.
	Animator() animator.Animator

	// Gizmo returns the light marker material.
	Gizmo() material.LightGizmoMaterial

	// ShadowMap returns the CPU shadow map written by RenderShadows.
	ShadowMap() *shadow.ShadowMap

	// SamplerConfig returns the CPU shadow sampler config.
	SamplerConfig() shadow.SamplerConfig

	// SetSamplerConfig replaces the CPU shadow sampler config.
	//
	// Parameters:
	//   - cfg: the new sampler config
	//
	// Returns:
	//   - error: an error if the config is invalid
	SetSamplerConfig(cfg shadow.SamplerConfig) error

	// Add appends a drawable. Draw order within a material kind follows insertion order.
	//
	// Parameters:
	//   - d: the drawable to add
	//
	// Returns:
	//   - error: an error if d is nil, has no mesh or material, or is already in the scene
	Add(d Drawable) error

	// Get returns the drawable with the given ID, or nil.
	Get(id uuid.UUID) Drawable

	// Remove drops the drawable with the given ID. Unknown IDs are ignored.
	Remove(id uuid.UUID)

	// Drawables returns the drawables in insertion order.
	Drawables() []Drawable

	// Count returns the number of drawables.
	Count() int

	// LightViewProjection returns the light's view-projection, fitted around every enabled
	// drawable so that receivers as well as casters fall inside the shadow map.
	//
	// Returns:
	//   - mgl32.Mat4: projection * view from the light
	LightViewProjection() mgl32.Mat4

	// RenderShadows runs the CPU shadow pass over every enabled caster from the light's
	// view-projection. ShadeFragment can only sample shadows after it has completed.
	//
	// Returns:
	//   - error: a pass error
	RenderShadows() error

	// ShadeFragment is the CPU reference of the lit fragment:
	// visibility * (albedo * diffuse) + visibility * specular, with alpha 1. The result is
	// always finite.
	//
	// Parameters:
	//   - worldPos: the fragment's world position
	//   - normal: the fragment's world normal
	//   - albedo: the surface color
	//
	// Returns:
	//   - mgl32.Vec4: the shaded color
	//   - error: shadow.ErrShadowPassIncomplete if the light casts shadows and RenderShadows has
	//     not completed since the map last changed
	ShadeFragment(worldPos, normal, albedo mgl32.Vec3) (mgl32.Vec4, error)

	// Frame assembles the per-frame uniforms and the ordered draw list: lit draws, then
	// unlit draws, then the light gizmo.
	//
	// Returns:
	//   - renderer.Frame: the frame for Renderer.RenderFrame
	Frame() renderer.Frame

	// Update advances the animator by dt seconds.
	Update(dt float32)

	// Close stops the shadow pass workers.
	Close()
}

var _ Scene = &scene{}

// NewScene creates a scene. Without options it has a default camera, a white light at
// (0, 5, 5), the default lighting model, a ShadowMapResolution CPU shadow map and the
// default gizmo.
//
// Parameters:
//   - options: variadic list of SceneBuilderOption functions
//
// Returns:
//   - Scene: the new scene
//   - error: an error if the sampler config is invalid
func NewScene(options ...SceneBuilderOption) (Scene, error) {
	s := &scene{
		name:          "scene",
		index:         make(map[uuid.UUID]int),
		samplerConfig: shadow.DefaultSamplerConfig(),
		shadowSize:    light.ShadowMapResolution,
		logger:        slog.Default(),
		gizmoMesh:     model.NewGizmoMarker(),
	}
	for _, option := range options {
		option(s)
	}
	s.logger = s.logger.With("component", "scene", "scene", s.name)

	if s.camera == nil {
		s.camera = camera.NewCamera()
	}
	if s.light == nil {
		s.light = light.NewLight(light.WithPosition(mgl32.Vec3{0, 5, 5}), light.WithLogger(s.logger))
	}
	if s.lighting == nil {
		s.lighting = light.NewLightingModel(light.DefaultLightingConfig(), s.logger)
	}
	if s.animator == nil {
		s.animator = animator.NewAnimator(animator.WithLogger(s.logger))
	}
	if s.gizmo == nil {
		s.gizmo = material.NewLightGizmoMaterial(material.DefaultGizmoConfig(), material.WithLogger(s.logger))
	}

	s.shadowMap = shadow.NewShadowMap(s.shadowSize, s.shadowSize)
	passOpts := []shadow.PassBuilderOption{shadow.WithLogger(s.logger)}
	if s.shadowWorkers > 0 {
		passOpts = append(passOpts, shadow.WithWorkers(s.shadowWorkers))
	}
	s.shadowPass = shadow.NewPass(s.shadowMap, passOpts...)

	sampler, err := shadow.NewSampler(s.shadowMap, s.samplerConfig)
	if err != nil {
		s.shadowPass.Close()
		return nil, fmt.Errorf("failed to create shadow sampler: %w", err)
	}
	s.sampler = sampler

	s.logger.Info("scene created", "shadow_map", s.shadowSize)
	return s, nil
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Camera() camera.Camera {
	return s.camera
}

func (s *scene) Light() light.Light {
	return s.light
}

func (s *scene) LightingModel() light.LightingModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lighting
}

func (s *scene) SetLightingModel(m light.LightingModel) {
	if m == nil {
		return
	}
	s.mu.Lock()
	s.lighting = m
	s.mu.Unlock()
}

func (s *scene) Animator() animator.Animator {
	return s.animator
}

func (s *scene) Gizmo() material.LightGizmoMaterial {
	return s.gizmo
}

func (s *scene) ShadowMap() *shadow.ShadowMap {
	return s.shadowMap
}

func (s *scene) SamplerConfig() shadow.SamplerConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.samplerConfig
}

func (s *scene) SetSamplerConfig(cfg shadow.SamplerConfig) error {
	sampler, err := shadow.NewSampler(s.shadowMap, cfg)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.samplerConfig = cfg
	s.sampler = sampler
	s.mu.Unlock()
	return nil
}

func (s *scene) Add(d Drawable) error {
	if d == nil || d.Model() == nil || d.Material() == nil {
		return errors.New("drawable needs a mesh and a material")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[d.ID()]; ok {
		return fmt.Errorf("drawable %s is already in the scene", d.ID())
	}
	s.index[d.ID()] = len(s.drawables)
	s.drawables = append(s.drawables, d)
	return nil
}

func (s *scene) Get(id uuid.UUID) Drawable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.index[id]; ok {
		return s.drawables[i]
	}
	return nil
}

func (s *scene) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return
	}
	s.drawables = append(s.drawables[:i], s.drawables[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.drawables); j++ {
		s.index[s.drawables[j].ID()] = j
	}
}

func (s *scene) Drawables() []Drawable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Drawable, len(s.drawables))
	copy(out, s.drawables)
	return out
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drawables)
}

// casters returns the enabled drawables rendered into the shadow map.
func (s *scene) casters() []Drawable {
	var out []Drawable
	if !s.light.CastsShadows() {
		return out
	}
	for _, d := range s.Drawables() {
		if d.Enabled() && d.CastsShadow() {
			out = append(out, d)
		}
	}
	return out
}

func (s *scene) LightViewProjection() mgl32.Mat4 {
	var enabled []Drawable
	for _, d := range s.Drawables() {
		if d.Enabled() {
			enabled = append(enabled, d)
		}
	}
	center, radius := bounds(enabled)
	return shadow.LightViewProjectionForBounds(s.light.Position(), center, radius)
}

// bounds returns a sphere enclosing every drawable's bounding sphere. With no drawables it is
// a unit sphere at the origin.
func bounds(drawables []Drawable) (mgl32.Vec3, float32) {
	if len(drawables) == 0 {
		return mgl32.Vec3{}, 1
	}
	var center mgl32.Vec3
	for _, d := range drawables {
		center = center.Add(d.Transform().Translation)
	}
	center = center.Mul(1 / float32(len(drawables)))

	var radius float32
	for _, d := range drawables {
		t := d.Transform()
		r := t.Translation.Sub(center).Len() + worldRadius(d)
		radius = max(radius, r)
	}
	return center, max(radius, 1e-3)
}

// worldRadius is the drawable's bounding radius scaled by its largest axis scale.
func worldRadius(d Drawable) float32 {
	sc := d.Transform().Scale
	return d.Model().BoundingRadius() * max(math32.Abs(sc.X()), math32.Abs(sc.Y()), math32.Abs(sc.Z()))
}

func (s *scene) RenderShadows() error {
	casters := s.casters()
	s.shadowPass.SetViewProjection(s.LightViewProjection())
	if err := s.shadowPass.Begin(); err != nil {
		return fmt.Errorf("failed to begin shadow pass: %w", err)
	}
	var errs []error
	for _, d := range casters {
		m := d.Model()
		if err := s.shadowPass.Draw(d.ModelMatrix(), m.Positions(), m.Indices()); err != nil {
			errs = append(errs, fmt.Errorf("drawable %s: %w", d.ID(), err))
		}
	}
	if err := s.shadowPass.End(); err != nil {
		errs = append(errs, fmt.Errorf("failed to end shadow pass: %w", err))
	}
	return errors.Join(errs...)
}

func (s *scene) ShadeFragment(worldPos, normal, albedo mgl32.Vec3) (mgl32.Vec4, error) {
	s.mu.RLock()
	lighting, sampler := s.lighting, s.sampler
	s.mu.RUnlock()

	contribution := lighting.Shade(light.ShadeInput{
		FragmentPosition: worldPos,
		Normal:           normal,
		CameraPosition:   s.camera.Position(),
		LightPosition:    s.light.Position(),
		LightColor:       s.light.Color(),
		Albedo:           albedo,
	})

	if s.light.CastsShadows() {
		visibility, err := sampler.Visibility(s.shadowPass.ViewProjection(), worldPos)
		if err != nil {
			return mgl32.Vec4{0, 0, 0, 1}, err
		}
		contribution = contribution.Scale(visibility)
	}
	return contribution.Color().Vec4(1), nil
}

func (s *scene) Frame() renderer.Frame {
	s.mu.RLock()
	lighting, samplerCfg := s.lighting, s.samplerConfig
	s.mu.RUnlock()

	eye := s.camera.Position()
	size := uint32(s.shadowMap.Width())
	frame := renderer.Frame{
		Camera:  s.camera.GPU(),
		Light:   s.light.GPU(),
		Shading: light.NewGPUShadingParams(lighting.Config(), eye, samplerCfg.Bias, samplerCfg.PCFRadius, size, size),
		Shadow:  light.GPUShadowUniform{LightVP: s.LightViewProjection()},
	}

	// Non-casters outside the view are dropped; casters stay since they may shadow visible geometry.
	frustum := common.ExtractFrustum(s.camera.ViewProjection())
	castShadows := s.light.CastsShadows()
	drawables := s.Drawables()
	for _, kind := range []material.Kind{material.KindLit, material.KindUnlit} {
		for _, d := range drawables {
			if !d.Enabled() || d.Material().Kind() != kind {
				continue
			}
			casts := castShadows && d.CastsShadow()
			if !casts && !frustum.IntersectsSphere(d.Transform().Translation, worldRadius(d)) {
				continue
			}
			frame.Draws = append(frame.Draws, renderer.Draw{
				Mesh:        d.Model(),
				Material:    d.Material(),
				Model:       d.ModelMatrix(),
				CastsShadow: casts,
			})
		}
	}

	params := s.gizmo.ParamsFor(s.light)
	frame.Draws = append(frame.Draws, renderer.Draw{
		Mesh:     s.gizmoMesh,
		Material: s.gizmo,
		Model:    s.gizmo.ModelMatrix(s.light),
		Params:   &params,
	})
	return frame
}

func (s *scene) Update(dt float32) {
	s.animator.Update(dt)
}

func (s *scene) Close() {
	s.shadowPass.Close()
}
