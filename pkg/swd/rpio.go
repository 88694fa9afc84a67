package swd

import (
	"fmt"

	"github.com/stianeikeland/go-rpio"
)

// RPIOProbe bit-bangs the SWD lines directly on Raspberry Pi GPIO headers
// through /dev/gpiomem. Wire the target's SWCLK and SWDIO to two free BCM
// pins; no level shifting is needed for 3.3V targets.
type RPIOProbe struct {
	clock rpio.Pin
	data  rpio.Pin

	open bool
}

// OpenRPIO maps the GPIO registers and claims the two BCM pin numbers.
func OpenRPIO(clockPin, dataPin uint8) (*RPIOProbe, error) {
	if clockPin == dataPin {
		return nil, fmt.Errorf("clock and data must use distinct pins (both %d)", clockPin)
	}
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("failed to map GPIO registers: %w", err)
	}
	return &RPIOProbe{
		clock: rpio.Pin(clockPin),
		data:  rpio.Pin(dataPin),
		open:  true,
	}, nil
}

// ClockLine returns the SWCLK line.
func (p *RPIOProbe) ClockLine() Line {
	return rpioLine{pin: p.clock}
}

// DataLine returns the SWDIO line.
func (p *RPIOProbe) DataLine() Line {
	return rpioLine{pin: p.data}
}

// Close releases the GPIO register mapping. Both pins are returned to inputs
// first so the target's debug lines are not left driven.
func (p *RPIOProbe) Close() error {
	if !p.open {
		return nil
	}
	p.clock.Input()
	p.data.Input()
	p.open = false
	return rpio.Close()
}

type rpioLine struct {
	pin rpio.Pin
}

func (l rpioLine) SetMode(mode LineMode) {
	switch mode {
	case LineModeOutput:
		l.pin.Output()
	case LineModeInputPullUp:
		l.pin.Input()
		l.pin.PullUp()
	}
}

func (l rpioLine) Set(high bool) {
	if high {
		l.pin.Write(rpio.High)
	} else {
		l.pin.Write(rpio.Low)
	}
}

func (l rpioLine) Get() bool {
	return l.pin.Read() == rpio.High
}
