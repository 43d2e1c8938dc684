package compute

import (
	"errors"
	"fmt"

	"github.com/san-kum/mbsim/internal/particle"
)

var ErrNoDevice = errors.New("compute: no suitable device available")

// Device runs the simulation passes over particle buffers it owns. Each call
// is a barrier: every lane of the pass has finished when it returns.
type Device interface {
	Name() string
	Available() bool
	// Load copies (or adopts) the store into device memory.
	Load(s *particle.Store) error
	Wall(radius, bounds float64)
	// Collide clears the claim counters, runs the pairwise pass and returns
	// the number of resolved pairs.
	Collide(radius float64) int
	Integrate(dt float64)
	SumSq() float64
	// Fetch copies device buffers back into dst.
	Fetch(dst *particle.Store) error
	Close()
}

const (
	DeviceAuto = "auto"
	DeviceCPU  = "cpu"
	DeviceGL   = "gl"
)

// Select returns the named device. "gl" needs a current OpenGL context and
// is only reachable through NewGLDevice from a window owner, so outside of
// one it reports ErrNoDevice. "auto" falls back to the CPU.
func Select(name string, workers int) (Device, error) {
	switch name {
	case DeviceCPU, DeviceAuto, "":
		return NewCPUDevice(workers), nil
	case DeviceGL:
		return nil, fmt.Errorf("%w: gl needs a window context (use the gui command)", ErrNoDevice)
	default:
		return nil, fmt.Errorf("%w: unknown device %q", ErrNoDevice, name)
	}
}

// Names lists selectable device names.
func Names() []string {
	return []string{DeviceAuto, DeviceCPU, DeviceGL}
}
