package idcode

// DesignerARM is the JEP106 designer code of ARM Ltd (bank 4, identity 0x3B).
const DesignerARM = 0x23B

// ParseDPIDR parses a raw 32-bit DPIDR value into its component fields
func ParseDPIDR(raw uint32) DPIDR {
	return DPIDR{
		Raw:        raw,
		Revision:   uint8((raw >> 28) & 0xF),
		PartNumber: uint8((raw >> 20) & 0xFF),
		Min:        (raw>>16)&0x1 == 0x1,
		Version:    uint8((raw >> 12) & 0xF),
		Designer:   uint16((raw >> 1) & 0x7FF),
	}
}

// IsARM reports whether the debug port was designed by ARM
func (d DPIDR) IsARM() bool {
	return d.Designer == DesignerARM
}
