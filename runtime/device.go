// Package runtime provides a host SPMD execution runtime: devices, queues,
// sub-group identity, and barrier-scoped boolean group reductions. It is the
// reference system under test for the conformance harness in package verify.
package runtime

import (
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Capability identifies an optional device feature. Unsupported capabilities
// cause the corresponding conformance checks to be skipped, not failed.
type Capability int

const (
	CapBallotGroups Capability = iota
	CapChunkGroups
	CapTangleGroups
	CapOpportunisticGroups
)

func (c Capability) String() string {
	switch c {
	case CapBallotGroups:
		return "ballot-groups"
	case CapChunkGroups:
		return "chunk-groups"
	case CapTangleGroups:
		return "tangle-groups"
	case CapOpportunisticGroups:
		return "opportunistic-groups"
	}
	return "unknown"
}

// AllCapabilities lists every capability a device can report.
func AllCapabilities() []Capability {
	return []Capability{
		CapBallotGroups,
		CapChunkGroups,
		CapTangleGroups,
		CapOpportunisticGroups,
	}
}

// Config holds device construction parameters
type Config struct {
	// WorkGroupSize is the maximum number of lanes per launch. Zero selects
	// the backend default.
	WorkGroupSize int

	// SubGroupSize is the wavefront width. Zero selects the backend default.
	SubGroupSize int

	// Disable lists capabilities the device should report as unsupported.
	Disable []Capability
}

const (
	defaultWorkGroupSize = 64
	defaultSubGroupSize  = 16
)

// Device models one execution target. Lanes submitted to a Device run as
// goroutines; the sub-group width and capability set come from Config.
type Device struct {
	name          string
	mode          string
	workGroupSize int
	subGroupSize  int
	caps          map[Capability]bool
}

// Name returns the backend name the device was constructed under.
func (d *Device) Name() string { return d.name }

// Mode returns a short description of the execution mode, in the spirit of
// OCCA device modes ("Serial", "OpenMP", ...).
func (d *Device) Mode() string { return d.mode }

// MaxWorkGroupSize returns the largest lane count a single Submit accepts.
func (d *Device) MaxWorkGroupSize() int { return d.workGroupSize }

// SubGroupSize returns the wavefront width.
func (d *Device) SubGroupSize() int { return d.subGroupSize }

// Supports reports whether the device implements the given capability.
func (d *Device) Supports(c Capability) bool { return d.caps[c] }

// NewQueue returns a submission queue bound to the device.
func (d *Device) NewQueue() *Queue { return &Queue{device: d} }

// Constructor builds a Device from a Config.
type Constructor func(cfg Config) (*Device, error)

var constructors = make(map[string]Constructor)

// Register makes a backend constructor available under the given name.
// Call during package initialization.
func Register(name string, ctor Constructor) {
	constructors[name] = ctor
}

// BackendEnvVar selects the default backend, format "<name>".
const BackendEnvVar = "GROUPCHECK_BACKEND"

// New constructs a device from a registered backend.
func New(name string, cfg Config) (*Device, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, errors.Errorf("unknown backend %q (registered: %s)",
			name, strings.Join(registeredNames(), ", "))
	}
	d, err := ctor(cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "constructing backend %q", name)
	}
	return d, nil
}

// NewDefault constructs a device from the backend named by BackendEnvVar,
// falling back to "host".
func NewDefault(cfg Config) (*Device, error) {
	name := os.Getenv(BackendEnvVar)
	if name == "" {
		name = "host"
	}
	return New(name, cfg)
}

func registeredNames() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register("host", newHostDevice)
}

func newHostDevice(cfg Config) (*Device, error) {
	wg := cfg.WorkGroupSize
	if wg == 0 {
		wg = defaultWorkGroupSize
	}
	sg := cfg.SubGroupSize
	if sg == 0 {
		sg = defaultSubGroupSize
	}
	if wg < 1 || sg < 1 {
		return nil, errors.Errorf("invalid device shape: work-group %d, sub-group %d", wg, sg)
	}
	if sg > wg {
		return nil, errors.Errorf("sub-group size %d exceeds work-group size %d", sg, wg)
	}

	caps := make(map[Capability]bool)
	for _, c := range AllCapabilities() {
		caps[c] = true
	}
	for _, c := range cfg.Disable {
		caps[c] = false
	}

	return &Device{
		name:          "host",
		mode:          "Goroutine",
		workGroupSize: wg,
		subGroupSize:  sg,
		caps:          caps,
	}, nil
}
