package swd

// Access port layer: routes register accesses through the DP SELECT register,
// caching the last selection so back-to-back accesses to the same port and
// bank cost a single DP transaction each.

// selectAccessPort makes port/bank the current SELECT target. The cache is
// only updated after the write succeeds, so a failed select is retried on the
// next access instead of being assumed to have taken effect.
func (l *Link) selectAccessPort(port, addr uint32) error {
	sel := port<<24 | (addr & 0xF0)
	if sel == l.selectCache {
		return nil
	}
	if err := l.dpWrite(regSelect, false, sel); err != nil {
		return err
	}
	l.selectCache = sel
	return nil
}

// apWrite writes an access port register. addr is the register offset within
// the port; its high nybble selects the bank.
func (l *Link) apWrite(port, addr uint32, data uint32) error {
	if err := l.selectAccessPort(port, addr); err != nil {
		return err
	}
	return l.dpWrite(addr, true, data)
}

// apRead reads an access port register.
func (l *Link) apRead(port, addr uint32) (uint32, error) {
	if err := l.selectAccessPort(port, addr); err != nil {
		return 0, err
	}
	return l.dpRead(addr, true)
}
