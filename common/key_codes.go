package common

// Key codes delivered to window key callbacks. They match GLFW key codes, which use ASCII
// values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeySpace uint32 = 32  // Spacebar (ASCII)
	KeyL     uint32 = 76  // L key (ASCII)
	KeyR     uint32 = 82  // R key (ASCII)
	KeyEsc   uint32 = 256 // Escape key (GLFW)

	KeyUp   uint32 = 265 // Up arrow (GLFW)
	KeyDown uint32 = 264 // Down arrow (GLFW)
)
