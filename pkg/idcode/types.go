package idcode

// DPIDR represents a parsed ADIv5 debug port identification register
type DPIDR struct {
	Raw        uint32 // full register value
	Revision   uint8  // [31:28] implementation revision
	PartNumber uint8  // [27:20] designer-assigned part number
	Min        bool   // [16] minimal debug port (no pushed operations)
	Version    uint8  // [15:12] debug port architecture version
	Designer   uint16 // [11:1] JEP106 designer code, continuation included
}

// Manufacturer represents a JEP106 manufacturer entry
type Manufacturer struct {
	Code         uint16 // JEP106 code
	Name         string // "NXP Semiconductors"
	Abbreviation string // "NXP"
	Country      string // optional
}
