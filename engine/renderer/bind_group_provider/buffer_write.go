package bind_group_provider

// BufferWrite is one queued upload into a provider's buffer. The Renderer flushes a batch of
// them with a single lock on the queue before the frame's command buffers are submitted.
type BufferWrite struct {
	// Provider owns (or shares) the destination buffer.
	Provider BindGroupProvider
	// Binding selects the buffer on the provider.
	Binding int
	// Offset is the byte offset into the buffer.
	Offset uint64
	// Data is the bytes to upload.
	Data []byte
}
