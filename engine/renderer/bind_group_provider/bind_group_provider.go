package bind_group_provider

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	mu sync.RWMutex

	// label prefixes every GPU object label created for this provider.
	label string

	// GPU objects below are created by the Renderer, never by the component owning the provider.
	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout
	buffers         map[int]*wgpu.Buffer
	textures        map[int]*wgpu.Texture
	textureViews    map[int]*wgpu.TextureView
	samplers        map[int]*wgpu.Sampler

	// shared marks buffers, views and samplers owned by another provider. Release skips them.
	shared map[resourceKey]bool

	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   int
	vertexCount  int
}

type resourceKind int

const (
	resourceBuffer resourceKind = iota
	resourceTextureView
	resourceSampler
)

type resourceKey struct {
	kind    resourceKind
	binding int
}

// BindGroupProvider holds the GPU resources behind one bind group, plus the vertex and index
// buffers when it describes a mesh. Components (materials, meshes, the frame ring, the draw
// stream, the shadow resources) own a provider; the Renderer fills it in.
//
// Usage pattern:
//  1. The component creates a provider with a label.
//  2. The Renderer creates buffers, textures and samplers on it (InitBindGroup, InitTextureView,
//     InitSampler, InitMeshBuffers), or the component shares resources owned elsewhere.
//  3. The Renderer writes data with BufferWrite values and binds BindGroup() per draw.
type BindGroupProvider interface {
	// Release releases every GPU resource owned by this provider. Shared resources are
	// forgotten but not released.
	Release()

	// Label returns the debug label for this provider.
	Label() string

	// BindGroup returns the bind group, or nil before the Renderer has initialized it.
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the bind group layout, or nil before initialization.
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the buffer at a binding index, or nil.
	Buffer(binding int) *wgpu.Buffer

	// Buffers returns all buffers keyed by binding index.
	Buffers() map[int]*wgpu.Buffer

	// Texture returns the texture backing the view at a binding index, or nil.
	Texture(binding int) *wgpu.Texture

	// TextureView returns the texture view at a binding index, or nil.
	TextureView(binding int) *wgpu.TextureView

	// TextureViews returns all texture views keyed by binding index.
	TextureViews() map[int]*wgpu.TextureView

	// Sampler returns the sampler at a binding index, or nil.
	Sampler(binding int) *wgpu.Sampler

	// Samplers returns all samplers keyed by binding index.
	Samplers() map[int]*wgpu.Sampler

	// VertexBuffer returns the mesh vertex buffer, or nil.
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the mesh index buffer, or nil for non-indexed meshes.
	IndexBuffer() *wgpu.Buffer

	// IndexCount returns the number of indices for indexed draws.
	IndexCount() int

	// VertexCount returns the number of vertices for non-indexed draws.
	VertexCount() int

	// IsShared reports whether the buffer at binding is owned by another provider.
	IsShared(binding int) bool

	SetBindGroup(bg *wgpu.BindGroup)
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetSharedBuffer stores a buffer owned by another provider. InitBindGroup binds it
	// instead of allocating a new one, and Release leaves it alone.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer to bind
	SetSharedBuffer(binding int, buf *wgpu.Buffer)

	SetTexture(binding int, tex *wgpu.Texture)
	SetTextureView(binding int, tv *wgpu.TextureView)

	// SetSharedTextureView stores a view owned by another provider, such as the shadow map.
	SetSharedTextureView(binding int, tv *wgpu.TextureView)

	SetSampler(binding int, s *wgpu.Sampler)

	// SetSharedSampler stores a sampler owned by another provider.
	SetSharedSampler(binding int, s *wgpu.Sampler)

	SetVertexBuffer(buf *wgpu.Buffer)
	SetIndexBuffer(buf *wgpu.Buffer)
	SetIndexCount(count int)
	SetVertexCount(count int)

	// ResetBindGroup releases the bind group so it can be rebuilt against new resources,
	// for example after the shadow map is recreated on resize.
	ResetBindGroup()
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty provider with the given label and options applied.
//
// Parameters:
//   - label: the debug label used for every GPU object created for the provider
//   - options: functional options applied after the defaults
//
// Returns:
//   - BindGroupProvider: the new provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		buffers:      make(map[int]*wgpu.Buffer),
		textures:     make(map[int]*wgpu.Texture),
		textureViews: make(map[int]*wgpu.TextureView),
		samplers:     make(map[int]*wgpu.Sampler),
		shared:       make(map[resourceKey]bool),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.buffers[binding]
}

func (p *bindGroupProvider) Buffers() map[int]*wgpu.Buffer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.buffers
}

func (p *bindGroupProvider) Texture(binding int) *wgpu.Texture {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.textures[binding]
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.textureViews[binding]
}

func (p *bindGroupProvider) TextureViews() map[int]*wgpu.TextureView {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.textureViews
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.samplers[binding]
}

func (p *bindGroupProvider) Samplers() map[int]*wgpu.Sampler {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.samplers
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	return p.indexBuffer
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) VertexCount() int {
	return p.vertexCount
}

func (p *bindGroupProvider) IsShared(binding int) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.shared[resourceKey{resourceBuffer, binding}]
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buffers[binding] = buf
	delete(p.shared, resourceKey{resourceBuffer, binding})
}

func (p *bindGroupProvider) SetSharedBuffer(binding int, buf *wgpu.Buffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buffers[binding] = buf
	p.shared[resourceKey{resourceBuffer, binding}] = true
}

func (p *bindGroupProvider) SetTexture(binding int, tex *wgpu.Texture) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.textures[binding] = tex
}

func (p *bindGroupProvider) SetTextureView(binding int, tv *wgpu.TextureView) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.textureViews[binding] = tv
	delete(p.shared, resourceKey{resourceTextureView, binding})
}

func (p *bindGroupProvider) SetSharedTextureView(binding int, tv *wgpu.TextureView) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.textureViews[binding] = tv
	p.shared[resourceKey{resourceTextureView, binding}] = true
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.samplers[binding] = s
	delete(p.shared, resourceKey{resourceSampler, binding})
}

func (p *bindGroupProvider) SetSharedSampler(binding int, s *wgpu.Sampler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.samplers[binding] = s
	p.shared[resourceKey{resourceSampler, binding}] = true
}

func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer) {
	p.vertexBuffer = buf
}

func (p *bindGroupProvider) SetIndexBuffer(buf *wgpu.Buffer) {
	p.indexBuffer = buf
}

func (p *bindGroupProvider) SetIndexCount(count int) {
	p.indexCount = count
}

func (p *bindGroupProvider) SetVertexCount(count int) {
	p.vertexCount = count
}

func (p *bindGroupProvider) ResetBindGroup() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
}

func (p *bindGroupProvider) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	for i, tv := range p.textureViews {
		if tv != nil && !p.shared[resourceKey{resourceTextureView, i}] {
			tv.Release()
		}
		delete(p.textureViews, i)
	}
	for i, tex := range p.textures {
		if tex != nil {
			tex.Release()
		}
		delete(p.textures, i)
	}
	for i, s := range p.samplers {
		if s != nil && !p.shared[resourceKey{resourceSampler, i}] {
			s.Release()
		}
		delete(p.samplers, i)
	}
	for i, buf := range p.buffers {
		if buf != nil && !p.shared[resourceKey{resourceBuffer, i}] {
			buf.Release()
		}
		delete(p.buffers, i)
	}
	clear(p.shared)
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
}
