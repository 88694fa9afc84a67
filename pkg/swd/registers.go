package swd

// Debug port registers. IDCODE and ABORT share address 0: reads return the
// identification code, writes go to ABORT.
const (
	regAbort    uint32 = 0x0
	regIDCode   uint32 = 0x0
	regCtrlStat uint32 = 0x4
	regSelect   uint32 = 0x8
	regRDBuff   uint32 = 0xC
)

// CTRL/STAT bits
const (
	csysPwrUpAck uint32 = 1 << 31
	csysPwrUpReq uint32 = 1 << 30
	cdbgPwrUpAck uint32 = 1 << 29
	cdbgPwrUpReq uint32 = 1 << 28
)

// Memory access port registers, addressed through SELECT's bank nybble.
const (
	memCSW uint32 = 0x00
	memTAR uint32 = 0x04
	memDRW uint32 = 0x0C
	memIDR uint32 = 0xFC
)

// CSW fields used for the default AHB-AP setup: device enable, address
// auto-increment by one word, 32-bit transfer size.
const (
	cswDeviceEnable  uint32 = 1 << 6
	cswIncrementWord uint32 = 1 << 4
	cswSize32        uint32 = 2 << 0
)

const (
	// defaultMemPort is the access port index of the AHB (memory bus) AP.
	defaultMemPort uint32 = 0

	// ahbPortClass is the expected low nybble of the AHB-AP's IDR.
	ahbPortClass uint32 = 1

	// invalidSelect forces the first AP access to transmit a SELECT write.
	invalidSelect uint32 = 0xFFFFFFFF

	// jtagToSWD is the 16-bit switch code that moves a dual-mode debug port
	// from JTAG to SWD when sent between two line resets.
	jtagToSWD uint32 = 0xE79E

	// idCodeMask/idCodeARM pick out the designer and part number fields that
	// every ARM debug port reports, e.g. the K20 reads 0x2BA01477 over SWD.
	idCodeMask uint32 = 0x0FF00001
	idCodeARM  uint32 = 0x0BA00001
)
