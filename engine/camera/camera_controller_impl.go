package camera

import "github.com/go-gl/mathgl/mgl32"

type cameraControllerImpl struct {
	camera ArcballCamera

	op       Operation
	previous *mgl32.Vec2

	// panScale multiplies pan deltas before they reach the camera.
	panScale float32
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a controller driving camera.
//
// Parameters:
//   - camera: the camera to drive
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(camera ArcballCamera, options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		camera:   camera,
		panScale: 1,
	}
	for _, opt := range options {
		opt(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) Begin(op Operation) {
	cc.op = op
	cc.previous = nil
}

func (cc *cameraControllerImpl) End() {
	cc.op = OperationNone
}

func (cc *cameraControllerImpl) Dragging() bool {
	return cc.op != OperationNone
}

func (cc *cameraControllerImpl) Operation() Operation {
	return cc.op
}

func (cc *cameraControllerImpl) PointerMoved(x, y float32) bool {
	curr := mgl32.Vec2{x, y}
	prev := cc.previous
	cc.previous = &curr

	if prev == nil || cc.op == OperationNone {
		return false
	}

	switch cc.op {
	case OperationRotate:
		cc.camera.Rotate(*prev, curr)
	case OperationPan:
		cc.camera.Pan(curr.Sub(*prev).Mul(cc.panScale))
	}
	return true
}

func (cc *cameraControllerImpl) Camera() ArcballCamera {
	return cc.camera
}
