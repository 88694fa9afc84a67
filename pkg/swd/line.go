package swd

// LineMode selects how a signal line is driven.
type LineMode uint8

const (
	// LineModeOutput drives the line push-pull.
	LineModeOutput LineMode = iota
	// LineModeInputPullUp releases the line and reads it through a pull-up,
	// so an undriven bus floats high.
	LineModeInputPullUp
)

// Line abstracts a single GPIO-like signal line. The protocol engine owns two
// of these (clock and data) and never touches hardware through any other
// path, so a simulated line can stand in for real pins in tests.
//
// Implementations must complete each call before returning; the SWD clock is
// generated in software and every Set is one half of a clock edge or one data
// bit. None of the methods report errors: a wire-level fault is not
// observable at this layer, backends surface transport problems out of band.
type Line interface {
	SetMode(mode LineMode)
	Set(high bool)
	Get() bool
}
