package swd

import (
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
)

func newTestLink(t *testing.T) (*Link, *SimTarget, *test.Hook) {
	t.Helper()
	target := NewSimTarget()
	logger, hook := test.NewNullLogger()
	link, err := NewLink(Config{
		Clock:     target.Clock,
		Data:      target.Data,
		Verbosity: VerbosityInfo,
		Log:       logger,
	})
	if err != nil {
		t.Fatalf("NewLink returned error: %v", err)
	}
	return link, target, hook
}

func logContains(hook *test.Hook, substr string) bool {
	for _, entry := range hook.AllEntries() {
		if strings.Contains(entry.Message, substr) {
			return true
		}
	}
	return false
}

func TestNewLinkRequiresLines(t *testing.T) {
	if _, err := NewLink(Config{}); err == nil {
		t.Fatalf("expected error for missing lines")
	}
	if _, err := NewLink(Config{Clock: &SimLine{}}); err == nil {
		t.Fatalf("expected error for missing data line")
	}
}

func TestInitializeFindsARMProcessor(t *testing.T) {
	link, target, hook := newTestLink(t)

	if err := link.Initialize(); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	if !link.Ready() {
		t.Fatalf("link not ready after Initialize")
	}
	if got := link.IDCode(); got != 0x2BA01477 {
		t.Errorf("IDCode() = %#08x, want 0x2ba01477", got)
	}
	if !logContains(hook, "Found ARM processor") {
		t.Errorf("missing bring-up milestone in log")
	}

	wantCSW := cswDeviceEnable | cswIncrementWord | cswSize32
	if target.CSW != wantCSW {
		t.Errorf("CSW = %#08x, want %#08x", target.CSW, wantCSW)
	}
}

func TestInitializeRejectsBadIDCode(t *testing.T) {
	link, target, _ := newTestLink(t)
	target.IDCode = 0xFFFFFFFF

	err := link.Initialize()
	if !errors.Is(err, ErrUnrecognizedPart) {
		t.Fatalf("Initialize error = %v, want ErrUnrecognizedPart", err)
	}
	if link.Ready() {
		t.Fatalf("link ready after failed Initialize")
	}
}

func TestInitializeNoDevice(t *testing.T) {
	link, target, _ := newTestLink(t)
	// Make the very first transaction (the IDCODE read) fail.
	target.QueueAck(AckFault, 1)

	err := link.Initialize()
	if !errors.Is(err, ErrNoDevice) {
		t.Fatalf("Initialize error = %v, want ErrNoDevice", err)
	}
	if !errors.Is(err, ErrFault) {
		t.Fatalf("Initialize error = %v, want wrapped ErrFault", err)
	}
}

func TestInitializePowerUpTimeout(t *testing.T) {
	link, target, _ := newTestLink(t)
	target.PowerUpPolls = powerUpAttempts + 1

	err := link.Initialize()
	if !errors.Is(err, ErrPowerUpTimeout) {
		t.Fatalf("Initialize error = %v, want ErrPowerUpTimeout", err)
	}
}

func TestInitializeRejectsNonAHBPort(t *testing.T) {
	link, target, _ := newTestLink(t)
	target.APIDR = 0x24770010 // port class 0

	err := link.Initialize()
	if !errors.Is(err, ErrUnexpectedPortType) {
		t.Fatalf("Initialize error = %v, want ErrUnexpectedPortType", err)
	}
}

func TestWaitRetrySucceedsOnLastAttempt(t *testing.T) {
	link, target, _ := newTestLink(t)
	target.QueueAck(AckWait, transferAttempts-1)

	if err := link.dpWrite(regCtrlStat, false, 0x12345678); err != nil {
		t.Fatalf("dpWrite returned error: %v", err)
	}
	if target.CtrlStat != 0x12345678 {
		t.Errorf("CtrlStat = %#08x after retried write", target.CtrlStat)
	}
}

func TestWaitRetryExhausted(t *testing.T) {
	link, target, _ := newTestLink(t)
	target.QueueAck(AckWait, transferAttempts)

	err := link.dpWrite(regCtrlStat, false, 0x12345678)
	if !errors.Is(err, ErrWaitTimeout) {
		t.Fatalf("dpWrite error = %v, want ErrWaitTimeout", err)
	}

	target.QueueAck(AckWait, transferAttempts)
	if _, err := link.dpRead(regIDCode, false); !errors.Is(err, ErrWaitTimeout) {
		t.Fatalf("dpRead error = %v, want ErrWaitTimeout", err)
	}
}

func TestProtocolErrorOnBogusAck(t *testing.T) {
	link, target, _ := newTestLink(t)
	target.QueueAck(Ack(7), 1)

	err := link.dpWrite(regCtrlStat, false, 0)
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("dpWrite error = %v, want ErrProtocol", err)
	}
}

func TestFaultResponse(t *testing.T) {
	link, target, _ := newTestLink(t)
	target.QueueAck(AckFault, 1)

	if _, err := link.dpRead(regIDCode, false); !errors.Is(err, ErrFault) {
		t.Fatalf("dpRead error = %v, want ErrFault", err)
	}
}

// A complete read transaction costs 8 header + 1 turnaround + 3 ack + 32 data
// + 1 parity + 1 turnaround + 8 idle = 54 clock pulses.
const readPulses = 54

func TestParityErrorStillDrainsIdleBits(t *testing.T) {
	link, target, _ := newTestLink(t)
	target.CorruptNextReadParity()

	before := target.Pulses
	_, err := link.dpRead(regIDCode, false)
	if !errors.Is(err, ErrParity) {
		t.Fatalf("dpRead error = %v, want ErrParity", err)
	}
	if got := target.Pulses - before; got != readPulses {
		t.Errorf("parity failure consumed %d pulses, want %d (turnaround and idle drain must complete)", got, readPulses)
	}

	// The bus must still be framed correctly for the next transaction.
	idcode, err := link.dpRead(regIDCode, false)
	if err != nil {
		t.Fatalf("follow-up read returned error: %v", err)
	}
	if idcode != target.IDCode {
		t.Errorf("follow-up read = %#08x, want %#08x", idcode, target.IDCode)
	}
}

func TestSelectCaching(t *testing.T) {
	link, target, _ := newTestLink(t)

	// First access to bank 0 of port 0 must select it.
	if err := link.apWrite(0, memTAR, 0x20000000); err != nil {
		t.Fatalf("apWrite TAR returned error: %v", err)
	}
	if target.SelectWrites != 1 {
		t.Fatalf("SelectWrites = %d after first access, want 1", target.SelectWrites)
	}

	// Same port and bank: no new SELECT transaction.
	if err := link.apWrite(0, memDRW, 0x11111111); err != nil {
		t.Fatalf("apWrite DRW returned error: %v", err)
	}
	if target.SelectWrites != 1 {
		t.Errorf("SelectWrites = %d after same-bank access, want 1", target.SelectWrites)
	}

	// Different bank: exactly one new SELECT transaction.
	if _, err := link.apRead(0, memIDR); err != nil {
		t.Fatalf("apRead IDR returned error: %v", err)
	}
	if target.SelectWrites != 2 {
		t.Errorf("SelectWrites = %d after bank change, want 2", target.SelectWrites)
	}
}

func TestFailedSelectLeavesCacheUntouched(t *testing.T) {
	link, target, _ := newTestLink(t)

	// Select bank 0xF0 so the next access needs a new SELECT.
	if _, err := link.apRead(0, memIDR); err != nil {
		t.Fatalf("apRead IDR returned error: %v", err)
	}

	// Fail the SELECT write itself.
	target.QueueAck(AckFault, 1)
	if err := link.apWrite(0, memCSW, cswSize32); !errors.Is(err, ErrFault) {
		t.Fatalf("apWrite error = %v, want ErrFault", err)
	}
	if target.SelectWrites != 1 {
		t.Fatalf("SelectWrites = %d after faulted select, want 1", target.SelectWrites)
	}

	// The cache must not claim the select took effect: the retry reissues it.
	if err := link.apWrite(0, memCSW, cswSize32); err != nil {
		t.Fatalf("retried apWrite returned error: %v", err)
	}
	if target.SelectWrites != 2 {
		t.Errorf("SelectWrites = %d after retry, want 2", target.SelectWrites)
	}
	if target.CSW != cswSize32 {
		t.Errorf("CSW = %#08x, want %#08x", target.CSW, cswSize32)
	}
}

func TestMemStoreMultiWritesTAROnce(t *testing.T) {
	link, target, _ := newTestLink(t)
	if err := link.Initialize(); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	target.TARWrites = 0
	target.DRWAccesses = 0

	words := []uint32{0x11, 0x22, 0x33}
	if err := link.MemStoreMulti(0x20000000, words); err != nil {
		t.Fatalf("MemStoreMulti returned error: %v", err)
	}

	if target.TARWrites != 1 {
		t.Errorf("TARWrites = %d, want 1", target.TARWrites)
	}
	if target.DRWAccesses != 3 {
		t.Errorf("DRWAccesses = %d, want 3", target.DRWAccesses)
	}
	for i, want := range words {
		addr := uint32(0x20000000 + 4*i)
		if got := target.Memory[addr]; got != want {
			t.Errorf("Memory[%#08x] = %#08x, want %#08x", addr, got, want)
		}
	}
}

func TestMemStoreMultiAbortsOnFailure(t *testing.T) {
	link, target, _ := newTestLink(t)
	if err := link.Initialize(); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	target.TARWrites = 0
	target.DRWAccesses = 0

	// TAR write and first DRW succeed, second DRW faults.
	target.QueueAck(AckOK, 2)
	target.QueueAck(AckFault, 1)

	err := link.MemStoreMulti(0x20000000, []uint32{0x11, 0x22, 0x33})
	if !errors.Is(err, ErrFault) {
		t.Fatalf("MemStoreMulti error = %v, want ErrFault", err)
	}

	if target.DRWAccesses != 1 {
		t.Errorf("DRWAccesses = %d, want 1 (operation must abort at the failing word)", target.DRWAccesses)
	}
	if got := target.Memory[0x20000000]; got != 0x11 {
		t.Errorf("Memory[0x20000000] = %#08x, want 0x11", got)
	}
	if _, ok := target.Memory[0x20000008]; ok {
		t.Errorf("third word written despite abort")
	}
}

func TestMemLoadRoundTrip(t *testing.T) {
	link, target, _ := newTestLink(t)
	if err := link.Initialize(); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	target.Memory[0x1FFF0000] = 0xCAFEBABE
	target.Memory[0x1FFF0004] = 0xDEADBEEF

	word, err := link.MemLoad(0x1FFF0000)
	if err != nil {
		t.Fatalf("MemLoad returned error: %v", err)
	}
	if word != 0xCAFEBABE {
		t.Errorf("MemLoad = %#08x, want 0xcafebabe", word)
	}

	buf := make([]uint32, 2)
	if err := link.MemLoadMulti(0x1FFF0000, buf); err != nil {
		t.Fatalf("MemLoadMulti returned error: %v", err)
	}
	if buf[0] != 0xCAFEBABE || buf[1] != 0xDEADBEEF {
		t.Errorf("MemLoadMulti = %#08x %#08x, want 0xcafebabe 0xdeadbeef", buf[0], buf[1])
	}

	if err := link.MemStore(0x1FFF0008, 0x0BADF00D); err != nil {
		t.Fatalf("MemStore returned error: %v", err)
	}
	if got := target.Memory[0x1FFF0008]; got != 0x0BADF00D {
		t.Errorf("Memory[0x1fff0008] = %#08x, want 0x0badf00d", got)
	}
}

func TestReinitializeAfterFailure(t *testing.T) {
	link, target, _ := newTestLink(t)
	target.IDCode = 0xFFFFFFFF

	if err := link.Initialize(); err == nil {
		t.Fatalf("expected Initialize to fail")
	}

	target.IDCode = 0x2BA01477
	if err := link.Initialize(); err != nil {
		t.Fatalf("re-Initialize returned error: %v", err)
	}
	if !link.Ready() {
		t.Fatalf("link not ready after re-Initialize")
	}
}
