package swd

// In-memory SWD target for unit tests and for running the CLI without
// hardware. The simulator sits on the far side of two SimLines and speaks the
// wire protocol bit by bit: it watches rising clock edges, parses line resets
// and request headers, drives acknowledge/data/parity bits, and models the
// debug port registers plus one bank-selected AHB access port backed by a
// sparse memory map.

// SimLine is an in-memory Line. Host writes only take effect in output mode;
// switching to input releases the line to its pull-up until the simulated
// target drives it.
type SimLine struct {
	mode  LineMode
	level bool

	// onRise fires on a low-to-high transition, used by SimTarget to observe
	// clock edges.
	onRise func()
}

func (s *SimLine) SetMode(mode LineMode) {
	s.mode = mode
	if mode == LineModeInputPullUp {
		s.level = true
	}
}

func (s *SimLine) Set(high bool) {
	if s.mode != LineModeOutput {
		return
	}
	rise := high && !s.level
	s.level = high
	if rise && s.onRise != nil {
		s.onRise()
	}
}

func (s *SimLine) Get() bool {
	return s.level
}

// drive sets the line level from the target side, regardless of mode.
func (s *SimLine) drive(high bool) {
	s.level = high
}

type simState uint8

const (
	// simReset: desynchronized (or just line-reset); wait for an idle low
	// bit before accepting request headers.
	simReset simState = iota
	// simIdle: between transactions, waiting for a start bit.
	simIdle
	// simHeader: collecting the remaining request header bits.
	simHeader
	// simDrive: target drives acknowledge (and read data/parity) bits.
	simDrive
	// simPause: the two clock cycles after the target releases the line
	// (host's final read pulse plus the write turnaround).
	simPause
	// simCollect: sampling the 32 data bits and parity bit of a write.
	simCollect
)

// lineResetBits is the minimum run of high bits that resets the wire
// protocol state.
const lineResetBits = 50

// SimTarget emulates a single ARM debug port with a default AHB-AP. The
// exported fields configure responses and expose state and counters for
// assertions; they must not be mutated while the host is mid-transaction.
type SimTarget struct {
	Clock *SimLine
	Data  *SimLine

	// IDCode is returned for DP register 0 reads. APIDR is the access port
	// identification register; its low nybble 1 marks an AHB-AP.
	IDCode uint32
	APIDR  uint32

	// PowerUpPolls is how many CTRL/STAT reads are answered without the
	// power-up acknowledge bits after a power-up request.
	PowerUpPolls int

	// Register and memory state.
	CtrlStat    uint32
	SelectValue uint32
	CSW         uint32
	TAR         uint32
	Memory      map[uint32]uint32

	// Counters for assertions.
	Pulses       int
	SelectWrites int
	TARWrites    int
	DRWAccesses  int

	ackScript     []Ack
	corruptParity bool

	state    simState
	shift    uint64
	bitCount int
	onesRun  int

	driveBits  uint64
	driveCount int
	pauseLeft  int

	collectWrite bool
	pendingAP    bool
	pendingAddr  uint32
	powerPolls   int
}

// NewSimTarget creates a powered simulated target wired to fresh clock and
// data lines, reporting the IDCODE of a Kinetis K20 SW-DP.
func NewSimTarget() *SimTarget {
	t := &SimTarget{
		Clock:  &SimLine{},
		Data:   &SimLine{},
		IDCode: 0x2BA01477,
		APIDR:  0x24770011,
		Memory: make(map[uint32]uint32),
		state:  simIdle,
	}
	t.Clock.onRise = t.edge
	return t
}

// QueueAck scripts the acknowledge for upcoming transactions: the next
// len(queued) valid request headers are answered with the queued codes in
// order, after which the target answers OK again.
func (t *SimTarget) QueueAck(code Ack, times int) {
	for i := 0; i < times; i++ {
		t.ackScript = append(t.ackScript, code)
	}
}

// CorruptNextReadParity makes the next read response carry an inverted
// parity bit.
func (t *SimTarget) CorruptNextReadParity() {
	t.corruptParity = true
}

func (t *SimTarget) nextAck() Ack {
	if len(t.ackScript) == 0 {
		return AckOK
	}
	code := t.ackScript[0]
	t.ackScript = t.ackScript[1:]
	return code
}

// edge advances the target by one rising clock edge.
func (t *SimTarget) edge() {
	t.Pulses++

	switch t.state {
	case simDrive:
		t.Data.drive(t.driveBits&1 != 0)
		t.driveBits >>= 1
		t.driveCount--
		if t.driveCount == 0 {
			t.state = simPause
			t.pauseLeft = 2
		}
		return

	case simPause:
		t.pauseLeft--
		if t.pauseLeft == 0 {
			if t.collectWrite {
				t.state = simCollect
				t.shift = 0
				t.bitCount = 0
			} else {
				t.state = simIdle
			}
		}
		return

	case simCollect:
		if t.Data.Get() {
			t.shift |= 1 << uint(t.bitCount)
		}
		t.bitCount++
		if t.bitCount == 33 {
			// 32 data bits and the parity bit; the idle drain that follows
			// is ignored in the idle state.
			t.writeRegister(t.pendingAP, t.pendingAddr, uint32(t.shift))
			t.state = simIdle
		}
		return
	}

	// Sampling states: simReset, simIdle, simHeader.
	bit := t.Data.Get()
	if bit {
		t.onesRun++
		if t.onesRun >= lineResetBits {
			t.state = simReset
			return
		}
	} else {
		t.onesRun = 0
	}

	switch t.state {
	case simReset:
		if !bit {
			t.state = simIdle
		}

	case simIdle:
		if bit {
			// Start bit.
			t.shift = 1
			t.bitCount = 1
			t.state = simHeader
		}

	case simHeader:
		if bit {
			t.shift |= 1 << uint(t.bitCount)
		}
		t.bitCount++
		if t.bitCount == 8 {
			t.handleHeader(uint32(t.shift))
		}
	}
}

// handleHeader validates a request header and stages the response. Invalid
// headers (including the ones seen inside the JTAG-to-SWD switch sequence)
// desynchronize the target until the next idle low bit.
func (t *SimTarget) handleHeader(hdr uint32) {
	apNDP := hdr&(1<<1) != 0
	rNW := hdr&(1<<2) != 0
	addr := (hdr >> 1) & 0xC

	if packHeader(addr, apNDP, rNW) != hdr {
		t.state = simReset
		return
	}

	code := t.nextAck()
	t.collectWrite = false

	if rNW && code == AckOK {
		data := t.readRegister(apNDP, addr)
		parity := uint64(evenParity(data))
		if t.corruptParity {
			parity ^= 1
			t.corruptParity = false
		}
		t.driveBits = uint64(code) | uint64(data)<<3 | parity<<35
		t.driveCount = 36
	} else {
		t.driveBits = uint64(code)
		t.driveCount = 3
		if !rNW && code == AckOK {
			t.collectWrite = true
			t.pendingAP = apNDP
			t.pendingAddr = addr
		}
	}
	t.state = simDrive
}

// apRegister resolves an AP header address against the selected bank.
func (t *SimTarget) apRegister(addr uint32) uint32 {
	return (t.SelectValue & 0xF0) | (addr & 0xC)
}

func (t *SimTarget) readRegister(apNDP bool, addr uint32) uint32 {
	if !apNDP {
		switch addr & 0xC {
		case regIDCode:
			return t.IDCode
		case regCtrlStat:
			value := t.CtrlStat
			if value&(csysPwrUpReq|cdbgPwrUpReq) != 0 {
				t.powerPolls++
				if t.powerPolls > t.PowerUpPolls {
					if value&csysPwrUpReq != 0 {
						value |= csysPwrUpAck
					}
					if value&cdbgPwrUpReq != 0 {
						value |= cdbgPwrUpAck
					}
				}
			}
			return value
		case regSelect:
			return t.SelectValue
		}
		return 0
	}

	switch t.apRegister(addr) {
	case memIDR:
		return t.APIDR
	case memCSW:
		return t.CSW
	case memTAR:
		return t.TAR
	case memDRW:
		t.DRWAccesses++
		value := t.Memory[t.TAR]
		if t.CSW&cswIncrementWord != 0 {
			t.TAR += 4
		}
		return value
	}
	return 0
}

func (t *SimTarget) writeRegister(apNDP bool, addr, data uint32) {
	if !apNDP {
		switch addr & 0xC {
		case regAbort:
			// Sticky error clearing is not modeled.
		case regCtrlStat:
			t.CtrlStat = data
			t.powerPolls = 0
		case regSelect:
			t.SelectValue = data
			t.SelectWrites++
		}
		return
	}

	switch t.apRegister(addr) {
	case memCSW:
		t.CSW = data
	case memTAR:
		t.TAR = data
		t.TARWrites++
	case memDRW:
		t.DRWAccesses++
		t.Memory[t.TAR] = data
		if t.CSW&cswIncrementWord != 0 {
			t.TAR += 4
		}
	}
}
