package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option applied by NewBindGroupProvider.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBindGroupLayout sets a pre-created bind group layout so InitBindGroup reuses it.
//
// Parameters:
//   - bgl: the layout to use
//
// Returns:
//   - BindGroupProviderOption: the option
func WithBindGroupLayout(bgl *wgpu.BindGroupLayout) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bindGroupLayout = bgl
	}
}

// WithSharedBuffer binds a buffer owned by another provider at the given binding.
//
// Parameters:
//   - binding: the binding index
//   - buf: the shared buffer
//
// Returns:
//   - BindGroupProviderOption: the option
func WithSharedBuffer(binding int, buf *wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = buf
		p.shared[resourceKey{resourceBuffer, binding}] = true
	}
}

// WithSharedBuffers binds several buffers owned by another provider.
func WithSharedBuffers(buffers map[int]*wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		for binding, buf := range buffers {
			p.buffers[binding] = buf
			p.shared[resourceKey{resourceBuffer, binding}] = true
		}
	}
}
