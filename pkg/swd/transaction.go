package swd

import "fmt"

// Ack is the 3-bit acknowledge code the target returns after every request
// header.
type Ack uint32

const (
	AckOK    Ack = 1
	AckWait  Ack = 2
	AckFault Ack = 4
)

func (a Ack) String() string {
	switch a {
	case AckOK:
		return "OK"
	case AckWait:
		return "WAIT"
	case AckFault:
		return "FAULT"
	}
	return fmt.Sprintf("Ack(%#x)", uint32(a))
}

// transferAttempts bounds the retry loop for transactions answered with WAIT.
const transferAttempts = 10

// packHeader builds the 8-bit request header: start, APnDP, RnW, address bits
// 2-3, header parity, stop, park.
func packHeader(addr uint32, apNDP, rNW bool) uint32 {
	hdr := uint32(1) // start
	parity := false
	if apNDP {
		hdr |= 1 << 1
		parity = !parity
	}
	if rNW {
		hdr |= 1 << 2
		parity = !parity
	}
	hdr |= (addr & 0xC) << 1
	if addr&(1<<2) != 0 {
		parity = !parity
	}
	if addr&(1<<3) != 0 {
		parity = !parity
	}
	if parity {
		hdr |= 1 << 5
	}
	hdr |= 1 << 7 // park
	return hdr
}

// evenParity folds a 32-bit word down to a single bit by successive XOR
// halving. The result is 1 when the word has an odd number of set bits, i.e.
// the bit that makes the total population count even.
func evenParity(word uint32) uint32 {
	word = (word & 0xFFFF) ^ (word >> 16)
	word = (word & 0xFF) ^ (word >> 8)
	word = (word & 0xF) ^ (word >> 4)
	word = (word & 0x3) ^ (word >> 2)
	word = (word & 0x1) ^ (word >> 1)
	return word
}

func hex32(v uint32) string {
	return fmt.Sprintf("0x%08x", v)
}
