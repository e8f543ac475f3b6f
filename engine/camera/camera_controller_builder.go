package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithPanScale sets the multiplier applied to pointer motion during a pan drag.
//
// Parameters:
//   - scale: the pan multiplier
//
// Returns:
//   - CameraControllerOption: functional option to set the pan scale
func WithPanScale(scale float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.panScale = scale
	}
}
