package utils

import (
	"fmt"

	"github.com/notargets/gocca"
	"github.com/pkg/errors"

	"github.com/wavelane/groupcheck/runtime"
)

// CreateHostDevice creates a host device with the given configuration.
// Panics on failure, since the host backend only fails on malformed
// configuration.
func CreateHostDevice(cfg runtime.Config) *runtime.Device {
	device, err := runtime.New("host", cfg)
	if err != nil {
		panic(fmt.Sprintf("failed to create host device: %v", err))
	}
	return device
}

// CreateOCCADevice creates an OCCA device for the cross-check path,
// preferring parallel backends. Callers treat an error as "no OCCA backend
// available" and skip.
func CreateOCCADevice() (*gocca.OCCADevice, error) {
	// Try OpenMP, then CUDA, then fall back to Serial
	backends := []string{
		`{"mode": "OpenMP"}`,
		`{"mode": "CUDA", "device_id": 0}`,
		`{"mode": "Serial"}`,
	}

	for _, props := range backends {
		device, err := gocca.NewDevice(props)
		if err == nil {
			fmt.Printf("Created %s Device\n", device.Mode())
			return device, nil
		}
	}

	return nil, errors.New("no OCCA backend available")
}
