package swd

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Memory facade: linear 32-bit loads and stores over the default AHB access
// port. The target address register is written once per call; the AP then
// auto-increments it after every data access, so back-to-back words cost one
// DRW transaction each.

// MemStore writes a single 32-bit word at addr.
func (l *Link) MemStore(addr, data uint32) error {
	return l.MemStoreMulti(addr, []uint32{data})
}

// MemLoad reads a single 32-bit word at addr.
func (l *Link) MemLoad(addr uint32) (uint32, error) {
	buf := make([]uint32, 1)
	if err := l.MemLoadMulti(addr, buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// MemStoreMulti writes len(data) consecutive words starting at addr. The
// first failing word aborts the whole operation; the device's address
// pointer is then unspecified, but the next call rewrites it unconditionally.
func (l *Link) MemStoreMulti(addr uint32, data []uint32) error {
	if err := l.apWrite(defaultMemPort, memTAR, addr); err != nil {
		return fmt.Errorf("set target address %s: %w", hex32(addr), err)
	}

	for _, word := range data {
		if l.cfg.Verbosity >= VerbosityTrace {
			l.log.WithFields(logrus.Fields{
				"addr": hex32(addr),
				"data": hex32(word),
			}).Trace("MEM store")
		}
		if err := l.apWrite(defaultMemPort, memDRW, word); err != nil {
			return fmt.Errorf("store %s at %s: %w", hex32(word), hex32(addr), err)
		}
		// The AP increments its own address pointer; this shadow is only for
		// diagnostics.
		addr += 4
	}
	return nil
}

// MemLoadMulti reads len(data) consecutive words starting at addr.
func (l *Link) MemLoadMulti(addr uint32, data []uint32) error {
	if err := l.apWrite(defaultMemPort, memTAR, addr); err != nil {
		return fmt.Errorf("set target address %s: %w", hex32(addr), err)
	}

	for i := range data {
		word, err := l.apRead(defaultMemPort, memDRW)
		if err != nil {
			return fmt.Errorf("load at %s: %w", hex32(addr), err)
		}
		data[i] = word
		if l.cfg.Verbosity >= VerbosityTrace {
			l.log.WithFields(logrus.Fields{
				"addr": hex32(addr),
				"data": hex32(word),
			}).Trace("MEM load")
		}
		addr += 4
	}
	return nil
}
