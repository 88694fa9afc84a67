package swd

import (
	"context"
	"fmt"

	"github.com/google/gousb"
)

// ProbeKind categorizes probe families.
type ProbeKind string

const (
	ProbeKindCMSISDAP ProbeKind = "cmsis-dap"
	ProbeKindRPIO     ProbeKind = "rpio"
	ProbeKindSim      ProbeKind = "simulator"
)

// ProbeEntry describes a detected probe transport.
type ProbeEntry struct {
	Kind        ProbeKind
	Description string
	VendorID    uint16
	ProductID   uint16
	Serial      string
}

// Label returns a user-friendly description for the probe.
func (p ProbeEntry) Label() string {
	if p.Description != "" {
		return p.Description
	}
	if p.Kind != "" {
		return fmt.Sprintf("%s (%04X:%04X)", string(p.Kind), p.VendorID, p.ProductID)
	}
	return fmt.Sprintf("Probe %04X:%04X", p.VendorID, p.ProductID)
}

// DiscoverProbes enumerates connected USB devices that match known CMSIS-DAP
// VID/PID pairs. It always returns at least the simulator entry so the CLI
// can run without hardware connected.
func DiscoverProbes(ctx context.Context) ([]ProbeEntry, error) {
	var results []ProbeEntry
	usb := gousb.NewContext()
	defer usb.Close()

	_, err := usb.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		if entry, ok := classifyUSBDevice(desc); ok {
			results = append(results, entry)
		}
		return false
	})
	if err != nil && err != gousb.ErrorAccess {
		return results, err
	}

	results = append(results, ProbeEntry{
		Kind:        ProbeKindSim,
		Description: "Simulator (no hardware)",
	})

	return results, nil
}

func classifyUSBDevice(desc *gousb.DeviceDesc) (ProbeEntry, bool) {
	for _, known := range knownProbes {
		if desc.Vendor == known.vid && desc.Product == known.pid {
			return ProbeEntry{
				Kind:        ProbeKindCMSISDAP,
				Description: known.name,
				VendorID:    uint16(known.vid),
				ProductID:   uint16(known.pid),
			}, true
		}
	}
	return ProbeEntry{}, false
}
