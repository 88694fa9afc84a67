package swd

import (
	"fmt"
	"sync"

	"github.com/boljen/go-bitmap"
)

// ProbeInfo describes a debug probe's identity and capabilities.
type ProbeInfo struct {
	Name         string
	Vendor       string
	Model        string
	SerialNumber string
	Firmware     string
	SupportsSWD  bool
	SupportsJTAG bool
}

// CMSISDAPProbe drives the SWD lines of a CMSIS-DAP probe one pin update at
// a time through DAP_SWJ_Pins. Each Set or Get is a USB round trip, so the
// effective clock rate is low; the upside is that the probe needs no SWD
// transfer support at all, only the mandatory SWJ pin access.
type CMSISDAPProbe struct {
	transport *USBTransport
	protocol  *CMSISDAPProtocol

	info ProbeInfo
	caps bitmap.Bitmap

	// Shadow of the host-driven pin levels, resent with every pin command.
	clockHigh  bool
	dataHigh   bool
	dataOutput bool

	connected bool

	// The Line interface has no error returns; the first transport failure
	// is latched here and every later pin operation becomes a no-op.
	err error

	mu sync.Mutex
}

// NewCMSISDAPProbe opens the probe at vid/pid, verifies it supports SWD and
// connects its SWD port.
func NewCMSISDAPProbe(vid, pid uint16) (*CMSISDAPProbe, error) {
	transport, err := NewUSBTransport(vid, pid)
	if err != nil {
		return nil, fmt.Errorf("failed to open USB probe: %w", err)
	}

	probe := &CMSISDAPProbe{
		transport: transport,
		protocol:  NewCMSISDAPProtocol(transport.GetPacketSize()),
	}

	if err := probe.queryInfo(); err != nil {
		transport.Close()
		return nil, fmt.Errorf("failed to query probe info: %w", err)
	}
	if !probe.info.SupportsSWD {
		transport.Close()
		return nil, fmt.Errorf("probe %q has no SWD support", probe.info.Model)
	}

	if err := probe.connect(); err != nil {
		transport.Close()
		return nil, fmt.Errorf("failed to connect SWD port: %w", err)
	}

	return probe, nil
}

// queryInfo retrieves device information and the capabilities byte from the
// probe
func (p *CMSISDAPProbe) queryInfo() error {
	cmd := p.protocol.EncodeInfo(InfoVendorID)
	resp, err := p.transport.WriteRead(cmd)
	if err != nil {
		return err
	}
	vendor, _ := p.protocol.DecodeInfo(resp)

	cmd = p.protocol.EncodeInfo(InfoProductID)
	resp, _ = p.transport.WriteRead(cmd)
	product, _ := p.protocol.DecodeInfo(resp)

	cmd = p.protocol.EncodeInfo(InfoSerialNum)
	resp, _ = p.transport.WriteRead(cmd)
	serial, _ := p.protocol.DecodeInfo(resp)

	cmd = p.protocol.EncodeInfo(InfoFirmwareVer)
	resp, _ = p.transport.WriteRead(cmd)
	firmware, _ := p.protocol.DecodeInfo(resp)

	cmd = p.protocol.EncodeInfo(InfoCapabilities)
	resp, err = p.transport.WriteRead(cmd)
	if err != nil {
		return err
	}
	capByte, err := p.protocol.DecodeInfoByte(resp)
	if err != nil {
		return err
	}

	flags := bitmap.New(8)
	for i := 0; i < 8; i++ {
		flags.Set(i, capByte&(1<<uint(i)) != 0)
	}
	p.caps = flags

	p.info = ProbeInfo{
		Name:         "CMSIS-DAP Probe",
		Vendor:       vendor,
		Model:        product,
		SerialNumber: serial,
		Firmware:     firmware,
		SupportsSWD:  flags.Get(CapSWD),
		SupportsJTAG: flags.Get(CapJTAG),
	}

	return nil
}

// connect selects the probe's SWD port
func (p *CMSISDAPProbe) connect() error {
	cmd := p.protocol.EncodeConnect(PortSWD)
	resp, err := p.transport.WriteRead(cmd)
	if err != nil {
		return err
	}

	port, err := p.protocol.DecodeConnect(resp)
	if err != nil {
		return err
	}
	if port != PortSWD {
		return fmt.Errorf("failed to connect SWD (got port %d)", port)
	}

	p.connected = true
	return nil
}

// Info returns probe identity and capabilities
func (p *CMSISDAPProbe) Info() ProbeInfo {
	return p.info
}

// Capability reports one flag from the probe's DAP_Info capabilities byte,
// e.g. Capability(CapAtomicCommands).
func (p *CMSISDAPProbe) Capability(flag int) bool {
	return p.caps.Get(flag)
}

// Err reports the first transport failure seen by a pin operation. Callers
// should check it after a failed Initialize to distinguish a dead probe from
// a dead target.
func (p *CMSISDAPProbe) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// ClockLine returns the SWCLK line.
func (p *CMSISDAPProbe) ClockLine() Line {
	return &dapLine{probe: p, pin: PinSWCLK}
}

// DataLine returns the SWDIO line.
func (p *CMSISDAPProbe) DataLine() Line {
	return &dapLine{probe: p, pin: PinSWDIO}
}

// pinCommand sends one DAP_SWJ_Pins transaction reflecting the current
// shadow state and returns the sampled levels.
func (p *CMSISDAPProbe) pinCommand() byte {
	if p.err != nil {
		return 0
	}

	var output, selected byte
	selected = PinSWCLK
	if p.clockHigh {
		output |= PinSWCLK
	}
	if p.dataOutput {
		selected |= PinSWDIO
		if p.dataHigh {
			output |= PinSWDIO
		}
	}

	cmd := p.protocol.EncodeSWJPins(output, selected, 0)
	resp, err := p.transport.WriteRead(cmd)
	if err != nil {
		p.err = fmt.Errorf("pin update: %w", err)
		return 0
	}
	state, err := p.protocol.DecodeSWJPins(resp)
	if err != nil {
		p.err = fmt.Errorf("pin update: %w", err)
		return 0
	}
	return state
}

// dapLine adapts one probe pin to the Line interface.
type dapLine struct {
	probe *CMSISDAPProbe
	pin   byte
}

func (l *dapLine) SetMode(mode LineMode) {
	l.probe.mu.Lock()
	defer l.probe.mu.Unlock()

	// Only SWDIO changes direction; SWCLK is always host driven.
	if l.pin == PinSWDIO {
		l.probe.dataOutput = mode == LineModeOutput
		l.probe.pinCommand()
	}
}

func (l *dapLine) Set(high bool) {
	l.probe.mu.Lock()
	defer l.probe.mu.Unlock()

	switch l.pin {
	case PinSWCLK:
		l.probe.clockHigh = high
	case PinSWDIO:
		l.probe.dataHigh = high
	}
	l.probe.pinCommand()
}

func (l *dapLine) Get() bool {
	l.probe.mu.Lock()
	defer l.probe.mu.Unlock()

	state := l.probe.pinCommand()
	return state&l.pin != 0
}

// SetClock asks the probe for a specific SWCLK frequency. Only meaningful
// for probe-side sequence generation; the pin-level wire layer is bounded by
// USB latency instead.
func (p *CMSISDAPProbe) SetClock(hz uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cmd := p.protocol.EncodeSetClock(hz)
	resp, err := p.transport.WriteRead(cmd)
	if err != nil {
		return fmt.Errorf("set clock failed: %w", err)
	}
	return p.protocol.DecodeSetClock(resp)
}

// Close disconnects the probe and releases the USB device.
func (p *CMSISDAPProbe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.connected {
		cmd := p.protocol.EncodeDisconnect()
		p.transport.WriteRead(cmd)
		p.connected = false
	}

	return p.transport.Close()
}
