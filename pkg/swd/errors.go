package swd

import "errors"

// Every failure the engine can report maps onto one of these sentinels so
// callers can branch with errors.Is. The wrapping message carries the failing
// register address, direction and payload.
var (
	// ErrNoDevice means the very first IDCODE read failed: nothing answered
	// on the bus at all.
	ErrNoDevice = errors.New("swd: no device detected")

	// ErrUnrecognizedPart means a device answered but its IDCODE does not
	// carry the ARM debug port designer/part number.
	ErrUnrecognizedPart = errors.New("swd: debug port has an unrecognized part number")

	// ErrPowerUpTimeout means the system/debug power-up acknowledge bits
	// never appeared in CTRL/STAT.
	ErrPowerUpTimeout = errors.New("swd: debug port failed to power on")

	// ErrUnexpectedPortType means the default access port is not an AHB
	// memory bus port.
	ErrUnexpectedPortType = errors.New("swd: default access port is not an AHB-AP")

	// ErrFault is returned when the target answers a request with FAULT.
	ErrFault = errors.New("swd: FAULT response")

	// ErrProtocol is returned for an acknowledge code that is neither OK,
	// WAIT nor FAULT.
	ErrProtocol = errors.New("swd: protocol error")

	// ErrWaitTimeout means the transaction retry budget was exhausted while
	// the target kept answering WAIT.
	ErrWaitTimeout = errors.New("swd: WAIT retries exhausted")

	// ErrParity means the data read back failed its even-parity check.
	ErrParity = errors.New("swd: read parity mismatch")
)
