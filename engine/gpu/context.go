package gpu

// Context bundles the long-lived device handles. It is created once by a backend and passed
// by reference to every component that needs GPU access.
type Context struct {
	Device  Device
	Queue   Queue
	Surface Surface

	// release tears down backend-owned handles. Nil for contexts that own nothing.
	release func()
}

// NewContext bundles the provided handles. release is invoked once by Release and may be nil.
//
// Parameters:
//   - device: the device used for resource creation
//   - queue: the device queue
//   - surface: the presentable surface, or nil for headless use
//   - release: an optional teardown function for backend-owned handles
//
// Returns:
//   - *Context: the bundled context
func NewContext(device Device, queue Queue, surface Surface, release func()) *Context {
	return &Context{
		Device:  device,
		Queue:   queue,
		Surface: surface,
		release: release,
	}
}

// Release tears down backend-owned handles. Safe to call more than once.
func (c *Context) Release() {
	if c.release != nil {
		c.release()
		c.release = nil
	}
}
