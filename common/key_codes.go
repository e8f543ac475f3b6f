package common

// Key codes delivered by the window in input.Event. The values match GLFW key codes, which use
// ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyR   = 82  // R key (ASCII), resets the camera
	KeyEsc = 256 // Escape key (GLFW), closes the window
)
