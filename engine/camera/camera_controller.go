package camera

// Operation is the gesture a pointer drag drives.
type Operation int

const (
	// OperationNone means no drag is in progress; pointer motion is ignored.
	OperationNone Operation = iota

	// OperationRotate turns pointer motion into arcball rotation.
	OperationRotate

	// OperationPan turns pointer motion into a pan of the orbit center.
	OperationPan
)

// CameraController tracks pointer samples for an ArcballCamera and turns consecutive samples
// into rotate or pan operations while a drag is in progress.
type CameraController interface {
	// Begin starts a drag driving op. The previous pointer sample is cleared so the first move
	// after Begin is recorded without changing the camera.
	//
	// Parameters:
	//   - op: the operation the drag drives
	Begin(op Operation)

	// End stops the current drag.
	End()

	// Dragging reports whether a drag is in progress.
	//
	// Returns:
	//   - bool: true between Begin and End
	Dragging() bool

	// Operation returns the operation of the current drag, or OperationNone.
	//
	// Returns:
	//   - Operation: the active operation
	Operation() Operation

	// PointerMoved records a pointer sample. When a drag is in progress and a previous sample
	// exists, the motion between the two samples is applied to the camera.
	//
	// Parameters:
	//   - x: the pointer x position in pixels
	//   - y: the pointer y position in pixels
	//
	// Returns:
	//   - bool: true if the camera was changed
	PointerMoved(x, y float32) bool

	// Camera returns the controlled camera.
	//
	// Returns:
	//   - ArcballCamera: the camera
	Camera() ArcballCamera
}
