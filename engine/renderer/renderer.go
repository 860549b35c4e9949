package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/hyako/common"
	"github.com/Carmen-Shannon/hyako/engine/light"
	"github.com/Carmen-Shannon/hyako/engine/model"
	"github.com/Carmen-Shannon/hyako/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/hyako/engine/renderer/material"
	"github.com/Carmen-Shannon/hyako/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/hyako/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
)

// Surface is the output the renderer presents to. window.Window satisfies it.
type Surface interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// frameUniforms lists the per-frame structs held by each ring slot, in upload order.
var frameUniforms = []shader.AnnotationArg{
	shader.AnnotationArgCamera,
	shader.AnnotationArgLight,
	shader.AnnotationArgShadingParams,
	shader.AnnotationArgShadowUniform,
}

// frameSlot is one ring entry: the per-frame uniform buffers, the draw stream and its buffer,
// and one frame and one draw bind group per pipeline, all sharing the slot's buffers.
type frameSlot struct {
	uniforms    map[shader.AnnotationArg]*wgpu.Buffer
	drawBuffer  *wgpu.Buffer
	stream      *DrawStream
	frameGroups map[string]bind_group_provider.BindGroupProvider
	drawGroups  map[string]bind_group_provider.BindGroupProvider
}

func (s *frameSlot) release() {
	for _, p := range s.frameGroups {
		p.Release()
	}
	for _, p := range s.drawGroups {
		p.Release()
	}
	for _, buf := range s.uniforms {
		buf.Release()
	}
	if s.drawBuffer != nil {
		s.drawBuffer.Release()
	}
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend
	logger      *slog.Logger

	ring *FrameRing[*frameSlot]

	// shadowProvider owns the shadow map texture, its view and the comparison sampler. It is
	// bound as the shadow group of every pipeline that declares one.
	shadowProvider bind_group_provider.BindGroupProvider
	shadowLayout   wgpu.BindGroupLayoutDescriptor
	shadowMapRole  int
	shadowWidth    int
	shadowHeight   int

	// resizeMu guards pendingSize. Resize runs on the window thread; the size is applied by the
	// next RenderFrame so surface and shadow resources only change on the render goroutine.
	resizeMu    sync.Mutex
	pendingSize *[2]int

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	clearColor           wgpu.Color
	framesInFlight       int
	maxDrawsPerFrame     int
	shadowResolution     int
	shadowFollowOutput   bool
}

// Renderer draws Frames to a surface.
//
// Setup registers the pipelines, validates GPU struct layouts and device limits, and builds
// the frame ring and shadow resources. After that, RenderFrame runs the shadow pass and the
// main pass for each frame, uploading meshes and materials on first use.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key, or nil.
	//
	// Parameters:
	//   - key: the pipeline key
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines retrieves the entire cache of Pipelines.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: pipeline keys to Pipelines
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines creates the GPU objects of render and shadow pipelines and caches them by
	// PipelineKey. Keys that are already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if validation or pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Setup validates and registers the pipelines, then builds the frame ring and the shadow
	// resources. With no arguments the built-in lit, unlit, gizmo and shadow pipelines are used.
	// Every layout and limit problem is reported here; nothing is checked per draw.
	//
	// Parameters:
	//   - pipelines: the pipelines to render with
	//
	// Returns:
	//   - error: wraps ErrLayoutMismatch or ErrDeviceLimit on validation failure
	Setup(pipelines ...pipeline.Pipeline) error

	// PrepareMesh uploads a model's vertex and index buffers if it has none yet.
	//
	// Parameters:
	//   - m: the model
	//
	// Returns:
	//   - error: an error if the buffers could not be created
	PrepareMesh(m model.Model) error

	// PrepareMaterial builds a material's bind group against its pipeline's material layout and
	// uploads its params. Materials without a texture bind a 1x1 white texture.
	//
	// Parameters:
	//   - m: the material
	//
	// Returns:
	//   - error: an error if the pipeline is unknown or a resource could not be created
	PrepareMaterial(m material.Material) error

	// RenderFrame draws one frame: uniforms into the current ring slot, model matrices into the
	// draw stream, the shadow pass, then the main pass, then present. Draws that do not fit the
	// draw stream are skipped and reported through the returned error after the frame is drawn.
	//
	// Parameters:
	//   - frame: the per-frame data and ordered draw list
	//
	// Returns:
	//   - error: an error if the frame could not be drawn or some draws were skipped
	RenderFrame(frame Frame) error

	// Resize requests a new output size. It is safe to call from any goroutine; the surface is
	// reconfigured at the start of the next RenderFrame, and when the shadow map follows the
	// output it is recreated there too, clamped to the device's max texture dimension.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: always nil; failures are reported by the RenderFrame that applies the size
	Resize(width, height int) error

	// SetPresentMode sets the surface present mode. Takes effect at the next Resize.
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the main pass clear color.
	SetClearColor(c wgpu.Color)

	// Limits returns the device limits.
	Limits() DeviceLimits

	// ShadowResolution returns the current shadow map size in texels.
	ShadowResolution() (int, int)

	// FramesInFlight returns the number of frame ring slots.
	FramesInFlight() int

	// InitMeshBuffers creates GPU vertex and index buffers and stores them on the provider.
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates missing buffers and the bind group for a provider from a layout descriptor.
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// InitTextureView creates a texture from staging data and stores its view on the provider.
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error

	// InitSampler creates a sampler and stores it on the provider.
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers queues every staged buffer write.
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// Release releases every GPU resource the renderer owns, then the device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer for the given surface. It acquires the adapter and device and
// configures the surface; call Setup before rendering.
//
// Parameters:
//   - backendType: the rendering backend to use
//   - surface: the output surface, usually a window.Window
//   - options: RendererBuilderOption functions applied before the device is requested
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if the adapter, device or surface could not be set up
func NewRenderer(backendType RendererBackendType, surface Surface, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:               &sync.Mutex{},
		pipelineCache:    make(map[string]pipeline.Pipeline),
		backendType:      backendType,
		logger:           slog.Default(),
		clearColor:       DefaultClearColor,
		framesInFlight:   DefaultFramesInFlight,
		maxDrawsPerFrame: DefaultMaxDrawsPerFrame,
		shadowResolution: light.ShadowMapResolution,
	}

	// Options first, so flags such as forceFallbackAdapter apply to the adapter request.
	for _, opt := range options {
		opt(r)
	}
	r.logger = r.logger.With("component", "renderer")

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}
	if !msaa.Valid() {
		return nil, fmt.Errorf("unsupported MSAA sample count %d", uint32(msaa))
	}

	var err error
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend, err = newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	}
	if err != nil {
		return nil, err
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	r.backend.SetClearColor(r.clearColor)

	if err := r.backend.ConfigureSurface(surface.Width(), surface.Height()); err != nil {
		r.backend.Release()
		return nil, err
	}
	r.logger.Info("device ready",
		"msaa", int(msaa),
		"width", surface.Width(),
		"height", surface.Height())
	return r, nil
}

func (r *renderer) Setup(pipelines ...pipeline.Pipeline) error {
	if len(pipelines) == 0 {
		var err error
		pipelines, err = DefaultPipelines()
		if err != nil {
			return err
		}
	}

	if err := ValidateLayouts(pipelines, HostStructSizes()); err != nil {
		return err
	}

	limits := r.backend.Limits()
	width, height := r.shadowTargetSize()
	if err := ValidateLimits(limits, LimitRequirements{
		ShadowResolution:   uint32(max(width, height)),
		MaxDrawsPerFrame:   r.maxDrawsPerFrame,
		UniformBindingSize: uint64(slices.Max(mapValues(HostStructSizes()))),
	}); err != nil {
		return err
	}
	r.logger.Info("layouts and limits validated",
		"pipelines", len(pipelines),
		"uniform_alignment", limits.MinUniformBufferOffsetAlignment,
		"max_draws", r.maxDrawsPerFrame)

	if err := r.RegisterPipelines(pipelines...); err != nil {
		return err
	}

	if err := r.initShadowResources(width, height); err != nil {
		return err
	}

	ring, err := NewFrameRing(r.framesInFlight, func(i int) (*frameSlot, error) {
		return r.newFrameSlot(i, limits.MinUniformBufferOffsetAlignment)
	})
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.ring = ring
	r.mu.Unlock()

	r.logger.Info("renderer ready",
		"frames_in_flight", ring.Len(),
		"shadow_width", width,
		"shadow_height", height)
	return nil
}

func mapValues(m map[string]int) []int {
	out := make([]int, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

// shadowTargetSize returns the shadow map size for the current configuration.
func (r *renderer) shadowTargetSize() (int, int) {
	if r.shadowFollowOutput {
		if w, h := r.backend.SurfaceSize(); w > 0 && h > 0 {
			return w, h
		}
	}
	return r.shadowResolution, r.shadowResolution
}

// shadowGroupPipeline returns the first registered pipeline, by key, that declares a shadow group.
func (r *renderer) shadowGroupPipeline() pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.pipelineCache))
	for k := range r.pipelineCache {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		p := r.pipelineCache[k]
		if slices.Contains(p.Groups(), GroupShadow) {
			return p
		}
	}
	return nil
}

// initShadowResources creates the shadow map, the comparison sampler and the shadow bind group.
func (r *renderer) initShadowResources(width, height int) error {
	p := r.shadowGroupPipeline()
	if p == nil {
		return nil
	}
	roles := providerRoles(p, shader.AnnotationArgShadow)
	mapRole, okMap := roles[shader.AnnotationArgShadowMap]
	samplerRole, okSampler := roles[shader.AnnotationArgShadowSampler]
	if !okMap || !okSampler || mapRole[0] != GroupShadow || samplerRole[0] != GroupShadow {
		return fmt.Errorf("pipeline %s: shadow group must declare shadow_map and shadow_sampler providers", p.PipelineKey())
	}

	provider := bind_group_provider.NewBindGroupProvider("shadow")
	samp, err := r.backend.CreateComparisonSampler()
	if err != nil {
		return err
	}
	provider.SetSampler(samplerRole[1], samp)

	r.shadowProvider = provider
	r.shadowLayout = p.BindGroupLayoutDescriptor(GroupShadow)
	r.shadowMapRole = mapRole[1]
	return r.createShadowTarget(width, height)
}

// createShadowTarget (re)creates the shadow map at the given size and rebuilds the shadow bind group.
func (r *renderer) createShadowTarget(width, height int) error {
	view, tex, err := r.backend.CreateShadowDepthTexture(width, height)
	if err != nil {
		return err
	}

	provider := r.shadowProvider
	provider.ResetBindGroup()
	if old := provider.TextureView(r.shadowMapRole); old != nil {
		old.Release()
	}
	if old := provider.Texture(r.shadowMapRole); old != nil {
		old.Release()
	}
	provider.SetTexture(r.shadowMapRole, tex)
	provider.SetTextureView(r.shadowMapRole, view)

	if err := r.backend.InitBindGroup(provider, r.shadowLayout, nil, nil); err != nil {
		return fmt.Errorf("shadow bind group: %w", err)
	}
	r.mu.Lock()
	r.shadowWidth, r.shadowHeight = width, height
	r.mu.Unlock()
	return nil
}

// newFrameSlot creates the buffers of one ring slot and a frame and draw bind group for every
// registered pipeline, bound to those buffers.
func (r *renderer) newFrameSlot(index int, alignment uint32) (*frameSlot, error) {
	stream, err := NewDrawStream(r.maxDrawsPerFrame, alignment)
	if err != nil {
		return nil, err
	}
	slot := &frameSlot{
		uniforms:    make(map[shader.AnnotationArg]*wgpu.Buffer, len(frameUniforms)),
		stream:      stream,
		frameGroups: make(map[string]bind_group_provider.BindGroupProvider),
		drawGroups:  make(map[string]bind_group_provider.BindGroupProvider),
	}

	sizes := HostStructSizes()
	structNames := map[shader.AnnotationArg]string{
		shader.AnnotationArgCamera:        "Camera",
		shader.AnnotationArgLight:         "Light",
		shader.AnnotationArgShadingParams: "ShadingParams",
		shader.AnnotationArgShadowUniform: "ShadowUniform",
	}
	for _, key := range frameUniforms {
		buf, err := r.backend.CreateBuffer(fmt.Sprintf("frame %d %s", index, key), uint64(sizes[structNames[key]]), wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
		if err != nil {
			slot.release()
			return nil, err
		}
		slot.uniforms[key] = buf
	}
	slot.drawBuffer, err = r.backend.CreateBuffer(fmt.Sprintf("frame %d draw stream", index), stream.BufferSize(), wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	if err != nil {
		slot.release()
		return nil, err
	}

	for key, p := range r.Pipelines() {
		frameStructs := groupStructs(p, GroupFrame)
		frameProvider := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("frame %d %s", index, key))
		for binding, structKey := range frameStructs {
			buf, ok := slot.uniforms[structKey]
			if !ok {
				slot.release()
				return nil, fmt.Errorf("pipeline %s: group %d binding %d declares %s, which is not a per-frame uniform", key, GroupFrame, binding, structKey)
			}
			frameProvider.SetSharedBuffer(binding, buf)
		}
		if err := r.backend.InitBindGroup(frameProvider, p.BindGroupLayoutDescriptor(GroupFrame), nil, nil); err != nil {
			slot.release()
			return nil, fmt.Errorf("pipeline %s frame group: %w", key, err)
		}
		slot.frameGroups[key] = frameProvider

		drawStructs := groupStructs(p, GroupDraw)
		if len(drawStructs) != 1 || len(p.DynamicBindings(GroupDraw)) != 1 {
			slot.release()
			return nil, fmt.Errorf("%w: pipeline %s must declare exactly one dynamic %s binding in group %d",
				ErrLayoutMismatch, key, shader.AnnotationArgModelData, GroupDraw)
		}
		drawProvider := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("draw %d %s", index, key))
		for binding := range drawStructs {
			drawProvider.SetSharedBuffer(binding, slot.drawBuffer)
		}
		if err := r.backend.InitBindGroup(drawProvider, p.BindGroupLayoutDescriptor(GroupDraw), nil, nil); err != nil {
			slot.release()
			return nil, fmt.Errorf("pipeline %s draw group: %w", key, err)
		}
		slot.drawGroups[key] = drawProvider
	}
	return slot, nil
}

func (r *renderer) PrepareMesh(m model.Model) error {
	if p := m.MeshProvider(); p != nil && p.VertexBuffer() != nil {
		return nil
	}
	provider := m.MeshProvider()
	if provider == nil {
		provider = bind_group_provider.NewBindGroupProvider(fmt.Sprintf("mesh %s %s", m.Name(), uuid.NewString()[:8]))
	}
	if err := r.backend.InitMeshBuffers(provider, m.VertexData(), m.IndexData(), m.IndexCount()); err != nil {
		return fmt.Errorf("mesh %s: %w", m.Name(), err)
	}
	m.SetMeshProvider(provider)
	return nil
}

// whiteTexel is bound in place of a missing albedo texture.
var whiteTexel = common.TextureStagingData{Pixels: []byte{255, 255, 255, 255}, Width: 1, Height: 1}

func (r *renderer) PrepareMaterial(m material.Material) error {
	provider := m.BindGroupProvider()
	if provider.BindGroup() != nil {
		return nil
	}
	p := r.Pipeline(m.PipelineKey())
	if p == nil {
		return fmt.Errorf("material %s: pipeline %q is not registered", m.Name(), m.PipelineKey())
	}
	if !slices.Contains(p.Groups(), GroupMaterial) {
		return nil
	}

	roles := providerRoles(p, shader.AnnotationArgMaterial)
	if role, ok := roles[shader.AnnotationArgAlbedoTexture]; ok && provider.TextureView(role[1]) == nil {
		tex, ok := m.Texture()
		if !ok {
			tex = whiteTexel
		}
		if err := r.backend.InitTextureView(provider, role[1], tex); err != nil {
			return fmt.Errorf("material %s: %w", m.Name(), err)
		}
	}
	if role, ok := roles[shader.AnnotationArgAlbedoSampler]; ok && provider.Sampler(role[1]) == nil {
		if err := r.backend.InitSampler(provider, role[1], m.SamplerStagingData()); err != nil {
			return fmt.Errorf("material %s: %w", m.Name(), err)
		}
	}

	if err := r.backend.InitBindGroup(provider, p.BindGroupLayoutDescriptor(GroupMaterial), nil, nil); err != nil {
		return fmt.Errorf("material %s: %w", m.Name(), err)
	}

	params := m.Params()
	r.backend.WriteBuffers(materialParamWrites(p, provider, params.Marshal()))
	r.logger.Info("material prepared", "material", m.Name(), "pipeline", m.PipelineKey())
	return nil
}

// materialParamWrites targets every material_params binding of the pipeline's material group.
func materialParamWrites(p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider, data []byte) []bind_group_provider.BufferWrite {
	var writes []bind_group_provider.BufferWrite
	for binding, key := range groupStructs(p, GroupMaterial) {
		if key == shader.AnnotationArgMaterialParams {
			writes = append(writes, bind_group_provider.BufferWrite{Provider: provider, Binding: binding, Data: data})
		}
	}
	return writes
}

// stagedDraw is a draw with its slot in the draw stream.
type stagedDraw struct {
	Draw
	offset uint32
}

// stageDraws pushes the model matrix of every shadow caster, then of every draw, into the
// stream. Casters get their own slots so the shadow pass and main pass never share one.
//
// Returns:
//   - []stagedDraw: the shadow pass draws
//   - []stagedDraw: the main pass draws, in frame order
//   - int: the number of draws dropped because the stream was full
func stageDraws(stream *DrawStream, frame Frame) ([]stagedDraw, []stagedDraw, int) {
	var shadow, main []stagedDraw
	dropped := 0
	for _, d := range frame.ShadowCasters() {
		offset, err := stream.Push(d.Model)
		if err != nil {
			dropped++
			continue
		}
		shadow = append(shadow, stagedDraw{Draw: d, offset: offset})
	}
	for _, d := range frame.Draws {
		offset, err := stream.Push(d.Model)
		if err != nil {
			dropped++
			continue
		}
		main = append(main, stagedDraw{Draw: d, offset: offset})
	}
	return shadow, main, dropped
}

func (r *renderer) RenderFrame(frame Frame) error {
	r.mu.Lock()
	ring := r.ring
	r.mu.Unlock()
	if ring == nil {
		return errors.New("renderer is not set up")
	}
	if width, height, ok := r.takePendingSize(); ok {
		if err := r.applySize(width, height); err != nil {
			return fmt.Errorf("resize: %w", err)
		}
	}
	slot := ring.Current()
	defer slot.stream.Reset()

	var errs []error

	// Upload and bind on first use.
	for _, d := range frame.Draws {
		if err := r.PrepareMesh(d.Mesh); err != nil {
			return err
		}
		if err := r.PrepareMaterial(d.Material); err != nil {
			return err
		}
	}

	shading := frame.Shading
	if sw, sh := r.ShadowResolution(); sw > 0 && sh > 0 {
		shading.ShadowTexel = [2]float32{1 / float32(sw), 1 / float32(sh)}
	}
	uploads := map[shader.AnnotationArg][]byte{
		shader.AnnotationArgCamera:        frame.Camera.Marshal(),
		shader.AnnotationArgLight:         frame.Light.Marshal(),
		shader.AnnotationArgShadingParams: shading.Marshal(),
		shader.AnnotationArgShadowUniform: frame.Shadow.Marshal(),
	}
	for _, key := range frameUniforms {
		r.backend.WriteBuffer(slot.uniforms[key], 0, uploads[key])
	}

	shadowDraws, mainDraws, dropped := stageDraws(slot.stream, frame)
	if dropped > 0 {
		r.logger.Warn("draw stream full, draws skipped",
			"dropped", dropped,
			"capacity", slot.stream.Capacity())
		errs = append(errs, fmt.Errorf("%w: %d draws skipped", ErrDrawStreamFull, dropped))
	}
	r.backend.WriteBuffer(slot.drawBuffer, 0, slot.stream.Bytes())

	var paramWrites []bind_group_provider.BufferWrite
	for _, d := range mainDraws {
		if d.Params == nil {
			continue
		}
		if p := r.Pipeline(d.Material.PipelineKey()); p != nil {
			paramWrites = append(paramWrites, materialParamWrites(p, d.Material.BindGroupProvider(), d.Params.Marshal())...)
		}
	}
	r.backend.WriteBuffers(paramWrites)

	if err := r.encodeShadowPass(slot, shadowDraws); err != nil {
		return errors.Join(append(errs, err)...)
	}

	if err := r.backend.BeginFrame(); err != nil {
		return errors.Join(append(errs, fmt.Errorf("begin frame: %w", err))...)
	}
	for _, d := range mainDraws {
		key := d.Material.PipelineKey()
		p := r.Pipeline(key)
		if p == nil {
			errs = append(errs, fmt.Errorf("draw %s: pipeline %q is not registered", d.Mesh.Name(), key))
			continue
		}
		groups := make([]bind_group_provider.BindGroupProvider, len(p.Groups()))
		groups[GroupFrame] = slot.frameGroups[key]
		groups[GroupDraw] = slot.drawGroups[key]
		if len(groups) > GroupMaterial {
			groups[GroupMaterial] = d.Material.BindGroupProvider()
		}
		if len(groups) > GroupShadow {
			groups[GroupShadow] = r.shadowProvider
		}
		r.backend.DrawCall(p, d.Mesh.MeshProvider(), groups, map[int][]uint32{GroupDraw: {d.offset}})
	}
	r.backend.EndFrame()
	r.backend.Present()
	ring.Advance()

	return errors.Join(errs...)
}

// encodeShadowPass clears the shadow map and draws every caster from the light. It is submitted
// before the main pass, so the main pass samples this frame's depth.
func (r *renderer) encodeShadowPass(slot *frameSlot, draws []stagedDraw) error {
	p := r.Pipeline(PipelineKeyShadow)
	if p == nil || r.shadowProvider == nil {
		return nil
	}
	if err := r.backend.BeginShadowFrame(); err != nil {
		return fmt.Errorf("begin shadow frame: %w", err)
	}
	r.backend.BeginShadowPass(r.shadowProvider.TextureView(r.shadowMapRole))
	groups := []bind_group_provider.BindGroupProvider{
		slot.frameGroups[PipelineKeyShadow],
		slot.drawGroups[PipelineKeyShadow],
	}
	for _, d := range draws {
		r.backend.ShadowDrawCall(p, d.Mesh.MeshProvider(), groups, map[int][]uint32{GroupDraw: {d.offset}})
	}
	r.backend.EndShadowPass()
	r.backend.EndShadowFrame()
	return nil
}

func (r *renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	r.resizeMu.Lock()
	r.pendingSize = &[2]int{width, height}
	r.resizeMu.Unlock()
	return nil
}

// takePendingSize returns and clears the latest size passed to Resize.
func (r *renderer) takePendingSize() (int, int, bool) {
	r.resizeMu.Lock()
	defer r.resizeMu.Unlock()
	if r.pendingSize == nil {
		return 0, 0, false
	}
	size := *r.pendingSize
	r.pendingSize = nil
	return size[0], size[1], true
}

// applySize reconfigures the surface and, when the shadow map follows the output, recreates it.
// Only RenderFrame calls it, so no frame is using the old shadow target.
func (r *renderer) applySize(width, height int) error {
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		return err
	}
	if !r.shadowFollowOutput || r.shadowProvider == nil {
		return nil
	}
	sw, sh, clamped := clampShadowSize(width, height, r.backend.Limits().MaxTextureDimension2D)
	if clamped {
		r.logger.Warn("shadow map clamped to max texture dimension",
			"width", width,
			"height", height,
			"max", r.backend.Limits().MaxTextureDimension2D)
	}
	if cw, ch := r.ShadowResolution(); cw == sw && ch == sh {
		return nil
	}
	if err := r.createShadowTarget(sw, sh); err != nil {
		return err
	}
	r.logger.Info("shadow map resized", "width", sw, "height", sh)
	return nil
}

// clampShadowSize limits each side of a shadow map to maxDim texels. A zero maxDim means the
// limit is unknown and the size is kept.
func clampShadowSize(width, height int, maxDim uint32) (int, int, bool) {
	if maxDim == 0 {
		return width, height, false
	}
	limit := int(maxDim)
	w, h := min(width, limit), min(height, limit)
	return w, h, w != width || h != height
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SetClearColor(c wgpu.Color) {
	r.backend.SetClearColor(c)
}

func (r *renderer) Limits() DeviceLimits {
	return r.backend.Limits()
}

func (r *renderer) ShadowResolution() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shadowWidth, r.shadowHeight
}

func (r *renderer) FramesInFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ring == nil {
		return r.framesInFlight
	}
	return r.ring.Len()
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]pipeline.Pipeline, len(r.pipelineCache))
	for k, p := range r.pipelineCache {
		out[k] = p
	}
	return out
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		switch p.Type() {
		case pipeline.PipelineTypeShadow:
			if err := r.backend.RegisterShadowPipeline(p); err != nil {
				return err
			}
		case pipeline.PipelineTypeRender:
			if err := r.backend.RegisterRenderPipeline(p); err != nil {
				return err
			}
		default:
			return fmt.Errorf("pipeline %s has unknown type %s", key, p.Type())
		}
		r.pipelineCache[key] = p
		r.logger.Info("pipeline registered", "pipeline", key, "type", p.Type().String())
	}
	return nil
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferUsageOverrides, bufferSizeOverrides)
}

func (r *renderer) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	return r.backend.InitTextureView(provider, bindingKey, stagingData)
}

func (r *renderer) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	return r.backend.InitSampler(provider, bindingKey, samplerStagingData)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.backend.WriteBuffers(writes)
}

func (r *renderer) Release() {
	r.mu.Lock()
	ring := r.ring
	r.ring = nil
	r.mu.Unlock()

	if ring != nil {
		ring.Each(func(_ int, slot *frameSlot) {
			slot.release()
		})
	}
	if r.shadowProvider != nil {
		r.shadowProvider.Release()
		r.shadowProvider = nil
	}
	r.backend.Release()
}
