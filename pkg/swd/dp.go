package swd

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Debug port transaction layer: one complete request/acknowledge/data cycle
// per call. Every non-success path still drains the trailing idle bits so the
// bus stays framed correctly for the next attempt; skipping the drain
// corrupts all subsequent transactions.

func (l *Link) dpWrite(addr uint32, apNDP bool, data uint32) error {
	if l.cfg.Verbosity >= VerbosityTrace {
		l.log.WithFields(logrus.Fields{
			"addr": fmt.Sprintf("%#x", addr),
			"ap":   apNDP,
			"data": hex32(data),
		}).Trace("DP write")
	}

	for attempt := 0; attempt < transferAttempts; attempt++ {
		l.wire.writeBits(packHeader(addr, apNDP, false), 8)
		l.wire.readTurnaround()
		code := Ack(l.wire.readBits(3))
		l.wire.writeTurnaround()

		switch code {
		case AckOK:
			l.wire.writeBits(data, 32)
			l.wire.writeBits(evenParity(data), 1)
			l.wire.writeBits(0, 8)
			return nil

		case AckWait:
			l.wire.writeBits(0, 8)

		case AckFault:
			l.wire.writeBits(0, 8)
			l.writeFailure(addr, apNDP, data, "FAULT response during write")
			return fmt.Errorf("write %#x (ap=%v) data %s: %w", addr, apNDP, hex32(data), ErrFault)

		default:
			l.wire.writeBits(0, 8)
			l.writeFailure(addr, apNDP, data, fmt.Sprintf("unexpected acknowledge %#x during write", uint32(code)))
			return fmt.Errorf("write %#x (ap=%v) ack %#x: %w", addr, apNDP, uint32(code), ErrProtocol)
		}
	}

	l.writeFailure(addr, apNDP, data, "WAIT timeout during write")
	return fmt.Errorf("write %#x (ap=%v): %w", addr, apNDP, ErrWaitTimeout)
}

func (l *Link) dpRead(addr uint32, apNDP bool) (uint32, error) {
	for attempt := 0; attempt < transferAttempts; attempt++ {
		l.wire.writeBits(packHeader(addr, apNDP, true), 8)
		l.wire.readTurnaround()
		code := Ack(l.wire.readBits(3))

		switch code {
		case AckOK:
			data := l.wire.readBits(32)
			parity := l.wire.readBits(1)
			if parity != evenParity(data) {
				// Complete the turnaround and idle drain before failing so
				// the bus is consistent for the next transaction.
				l.wire.writeTurnaround()
				l.wire.writeBits(0, 8)
				l.readFailure(addr, apNDP, "parity error during read")
				return 0, fmt.Errorf("read %#x (ap=%v): %w", addr, apNDP, ErrParity)
			}
			l.wire.writeTurnaround()
			l.wire.writeBits(0, 8)
			if l.cfg.Verbosity >= VerbosityTrace {
				l.log.WithFields(logrus.Fields{
					"addr": fmt.Sprintf("%#x", addr),
					"ap":   apNDP,
					"data": hex32(data),
				}).Trace("DP read")
			}
			return data, nil

		case AckWait:
			l.wire.writeTurnaround()
			l.wire.writeBits(0, 8)

		case AckFault:
			l.wire.writeTurnaround()
			l.wire.writeBits(0, 8)
			l.readFailure(addr, apNDP, "FAULT response during read")
			return 0, fmt.Errorf("read %#x (ap=%v): %w", addr, apNDP, ErrFault)

		default:
			l.wire.writeTurnaround()
			l.wire.writeBits(0, 8)
			l.readFailure(addr, apNDP, fmt.Sprintf("unexpected acknowledge %#x during read", uint32(code)))
			return 0, fmt.Errorf("read %#x (ap=%v) ack %#x: %w", addr, apNDP, uint32(code), ErrProtocol)
		}
	}

	l.readFailure(addr, apNDP, "WAIT timeout during read")
	return 0, fmt.Errorf("read %#x (ap=%v): %w", addr, apNDP, ErrWaitTimeout)
}

func (l *Link) writeFailure(addr uint32, apNDP bool, data uint32, msg string) {
	l.log.WithFields(logrus.Fields{
		"addr": fmt.Sprintf("%#x", addr),
		"ap":   apNDP,
		"data": hex32(data),
	}).Error(msg)
}

func (l *Link) readFailure(addr uint32, apNDP bool, msg string) {
	l.log.WithFields(logrus.Fields{
		"addr": fmt.Sprintf("%#x", addr),
		"ap":   apNDP,
	}).Error(msg)
}
