package swd

import (
	"math/bits"
	"testing"
)

func TestEvenParity(t *testing.T) {
	words := []uint32{
		0x00000000,
		0xFFFFFFFF,
		0x2BA01477,
		0xE79E,
		0xDEADBEEF,
		0x00000001,
		0x80000000,
		0x55555555,
		0xAAAAAAAA,
		0x12345678,
	}
	// Every single-bit word has odd population count.
	for i := 0; i < 32; i++ {
		words = append(words, 1<<uint(i))
	}

	for _, w := range words {
		want := uint32(bits.OnesCount32(w) & 1)
		if got := evenParity(w); got != want {
			t.Errorf("evenParity(%#08x) = %d, want %d", w, got, want)
		}
	}
}

func TestPackHeader(t *testing.T) {
	for _, apNDP := range []bool{false, true} {
		for _, rNW := range []bool{false, true} {
			for _, addr := range []uint32{0x0, 0x4, 0x8, 0xC} {
				hdr := packHeader(addr, apNDP, rNW)

				if hdr&1 == 0 {
					t.Errorf("packHeader(%#x, %v, %v): start bit clear", addr, apNDP, rNW)
				}
				if hdr&(1<<7) == 0 {
					t.Errorf("packHeader(%#x, %v, %v): park bit clear", addr, apNDP, rNW)
				}
				if hdr&(1<<6) != 0 {
					t.Errorf("packHeader(%#x, %v, %v): stop bit set", addr, apNDP, rNW)
				}

				wantParity := false
				if apNDP {
					wantParity = !wantParity
				}
				if rNW {
					wantParity = !wantParity
				}
				if addr&(1<<2) != 0 {
					wantParity = !wantParity
				}
				if addr&(1<<3) != 0 {
					wantParity = !wantParity
				}
				if got := hdr&(1<<5) != 0; got != wantParity {
					t.Errorf("packHeader(%#x, %v, %v): parity bit = %v, want %v", addr, apNDP, rNW, got, wantParity)
				}

				if got := (hdr >> 1) & 0xC; got != addr&0xC {
					t.Errorf("packHeader(%#x, %v, %v): address bits = %#x", addr, apNDP, rNW, got)
				}
				if got := hdr&(1<<1) != 0; got != apNDP {
					t.Errorf("packHeader(%#x, %v, %v): APnDP bit = %v", addr, apNDP, rNW, got)
				}
				if got := hdr&(1<<2) != 0; got != rNW {
					t.Errorf("packHeader(%#x, %v, %v): RnW bit = %v", addr, apNDP, rNW, got)
				}
			}
		}
	}
}

func TestAckString(t *testing.T) {
	tests := []struct {
		code Ack
		want string
	}{
		{AckOK, "OK"},
		{AckWait, "WAIT"},
		{AckFault, "FAULT"},
		{Ack(7), "Ack(0x7)"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("Ack(%d).String() = %q, want %q", uint32(tt.code), got, tt.want)
		}
	}
}
