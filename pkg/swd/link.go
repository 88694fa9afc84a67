package swd

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Verbosity selects how much diagnostic output the link emits through its
// logger. Filtering happens at the call site so disabled levels cost nothing
// on the timing-sensitive paths.
type Verbosity int

const (
	// VerbosityError logs failures only.
	VerbosityError Verbosity = iota
	// VerbosityInfo adds milestones such as a successful bring-up.
	VerbosityInfo
	// VerbosityTrace adds per-transaction and per-primitive wire detail.
	VerbosityTrace
)

// Config identifies the two signal lines the link drives and how chatty it
// should be. Set once at construction; only the verbosity may change later.
type Config struct {
	// Clock and Data are the two physical lines of the SWD bus.
	Clock Line
	Data  Line

	// Verbosity gates the diagnostic output. Log defaults to the logrus
	// standard logger when nil.
	Verbosity Verbosity
	Log       logrus.FieldLogger
}

// Link is one exclusive debug connection to a target's SWD port. It is not
// safe for concurrent use: the protocol has no addressing for interleaved
// transactions and the data line turnarounds are stateful, so callers must
// serialize at transaction granularity.
type Link struct {
	cfg  Config
	wire *wire
	log  logrus.FieldLogger

	// selectCache holds the last value written to the DP SELECT register so
	// redundant selects are skipped. Note the cache survives a target-side
	// reset: if the device power cycles mid-session the cache can go stale
	// and the link must be re-initialized.
	selectCache uint32

	idcode uint32
	ready  bool
}

// NewLink wires up a link over the given lines. The target is not touched
// until Initialize.
func NewLink(cfg Config) (*Link, error) {
	if cfg.Clock == nil || cfg.Data == nil {
		return nil, errors.New("swd: config must provide both clock and data lines")
	}
	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Link{
		cfg:         cfg,
		wire:        newWire(cfg.Clock, cfg.Data, log, cfg.Verbosity >= VerbosityTrace),
		log:         log,
		selectCache: invalidSelect,
	}, nil
}

// IDCode reports the debug port identification code read during the last
// successful Initialize.
func (l *Link) IDCode() uint32 {
	return l.idcode
}

// Ready reports whether the last Initialize completed.
func (l *Link) Ready() bool {
	return l.ready
}

// Initialize brings the link up from an unknown bus state: line reset plus
// JTAG-to-SWD switch, IDCODE check, debug power-up and AHB-AP configuration.
// Any failure leaves the link unusable; call Initialize again to retry from
// scratch.
func (l *Link) Initialize() error {
	l.ready = false
	l.cfg.Clock.SetMode(LineModeOutput)
	l.cfg.Data.SetMode(LineModeInputPullUp)
	l.selectCache = invalidSelect

	// Put the bus in a known state and trigger the JTAG-to-SWD transition:
	// line reset, switch code, line reset, then idle cycles.
	l.wire.writeTurnaround()
	l.wire.writeBits(0xFFFFFFFF, 32)
	l.wire.writeBits(0xFFFFFFFF, 32)
	l.wire.writeBits(jtagToSWD, 16)
	l.wire.writeBits(0xFFFFFFFF, 32)
	l.wire.writeBits(0xFFFFFFFF, 32)
	l.wire.writeBits(0, 32)
	l.wire.writeBits(0, 32)

	idcode, err := l.dpRead(regIDCode, false)
	if err != nil {
		l.log.Error("No ARM processor detected. Check power and cables?")
		return fmt.Errorf("%w: %w", ErrNoDevice, err)
	}

	// The debug port part number is not allowed to change, which makes it a
	// good early sanity check before anything target-specific runs.
	if idcode&idCodeMask != idCodeARM {
		l.log.WithField("idcode", hex32(idcode)).Error("debug port has an incorrect part number")
		return fmt.Errorf("idcode %s: %w", hex32(idcode), ErrUnrecognizedPart)
	}
	l.idcode = idcode
	if l.cfg.Verbosity >= VerbosityInfo {
		l.log.WithField("idcode", hex32(idcode)).Info("Found ARM processor debug port")
	}

	if err := l.powerUp(); err != nil {
		return err
	}

	// Make sure the default access port bridges to the memory bus like we
	// expect before configuring it.
	idr, err := l.apRead(defaultMemPort, memIDR)
	if err != nil {
		return err
	}
	if idr&0xF != ahbPortClass {
		l.log.WithField("idr", hex32(idr)).Error("default access port is not an AHB-AP")
		return fmt.Errorf("idr %s: %w", hex32(idr), ErrUnexpectedPortType)
	}

	csw := cswDeviceEnable | cswIncrementWord | cswSize32
	if err := l.apWrite(defaultMemPort, memCSW, csw); err != nil {
		return err
	}

	l.ready = true
	return nil
}

// powerUpAttempts bounds the CTRL/STAT polls waiting for the power-up
// acknowledge bits.
const powerUpAttempts = 4

func (l *Link) powerUp() error {
	if err := l.dpWrite(regCtrlStat, false, csysPwrUpReq|cdbgPwrUpReq); err != nil {
		return err
	}

	const powerAck = csysPwrUpAck | cdbgPwrUpAck
	var ctrlStat uint32
	for attempt := 0; attempt < powerUpAttempts; attempt++ {
		var err error
		ctrlStat, err = l.dpRead(regCtrlStat, false)
		if err != nil {
			return err
		}
		if ctrlStat&powerAck == powerAck {
			return nil
		}
	}

	l.log.WithField("ctrlstat", hex32(ctrlStat)).Error("debug port failed to power on")
	return fmt.Errorf("ctrlstat %s: %w", hex32(ctrlStat), ErrPowerUpTimeout)
}
