package swd

import (
	"github.com/sirupsen/logrus"
)

// wire is the lowest protocol layer: raw bits clocked over the two lines.
// It owns the pin directions and the software-generated clock. All transfers
// are LSB-first; every bit costs exactly one clock pulse.
type wire struct {
	clock Line
	data  Line

	log   logrus.FieldLogger
	trace bool
}

func newWire(clock, data Line, log logrus.FieldLogger, trace bool) *wire {
	return &wire{clock: clock, data: data, log: log, trace: trace}
}

// pulse generates one low-to-high clock transition.
func (w *wire) pulse() {
	w.clock.Set(false)
	w.clock.Set(true)
}

// writeBits transmits the low n bits of value, least significant bit first.
// The data line must already be in output mode.
func (w *wire) writeBits(value uint32, n int) {
	if w.trace {
		w.log.WithFields(logrus.Fields{
			"value": hex32(value),
			"bits":  n,
		}).Trace("SWD write")
	}
	for i := 0; i < n; i++ {
		w.data.Set(value&1 != 0)
		value >>= 1
		w.pulse()
	}
}

// readBits samples n bits LSB-first, pulsing the clock once per bit. The
// sample is taken before the pulse, so the target presents each bit on the
// preceding rising edge.
func (w *wire) readBits(n int) uint32 {
	var value uint32
	for i := 0; i < n; i++ {
		if w.data.Get() {
			value |= 1 << i
		}
		w.pulse()
	}
	if w.trace {
		w.log.WithFields(logrus.Fields{
			"value": hex32(value),
			"bits":  n,
		}).Trace("SWD read")
	}
	return value
}

// readTurnaround hands the data line to the target: release to pull-up and
// burn one clock cycle so both ends agree on who drives next.
func (w *wire) readTurnaround() {
	if w.trace {
		w.log.Trace("SWD read trn")
	}
	w.data.Set(true)
	w.data.SetMode(LineModeInputPullUp)
	w.pulse()
}

// writeTurnaround takes the data line back from the target, again consuming
// exactly one clock cycle before the line is driven.
func (w *wire) writeTurnaround() {
	if w.trace {
		w.log.Trace("SWD write trn")
	}
	w.data.Set(true)
	w.data.SetMode(LineModeInputPullUp)
	w.pulse()
	w.data.SetMode(LineModeOutput)
}
