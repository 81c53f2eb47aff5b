package bank

// MemoryBank is a flat byte-addressable data space.
type MemoryBank struct {
	Data []uint8
}

var _ Memory = (*MemoryBank)(nil)

// NewMemoryBank creates a zeroed data space of size bytes, clamped to
// the 16-bit address range.
func NewMemoryBank(size int) (mb *MemoryBank) {
	size = min(max(size, 0), DATA_LIMIT)
	mb = &MemoryBank{
		Data: make([]uint8, size),
	}

	return
}

// Reset zeroes the data space.
func (mb *MemoryBank) Reset() {
	clear(mb.Data)
}

// DataByte reads a byte; addresses past the capacity read as 0.
func (mb *MemoryBank) DataByte(address uint16) uint8 {
	if int(address) >= len(mb.Data) {
		return 0
	}
	return mb.Data[address]
}

// SetDataByte writes a byte; addresses past the capacity are dropped.
func (mb *MemoryBank) SetDataByte(address uint16, value uint8) {
	if int(address) >= len(mb.Data) {
		return
	}
	mb.Data[address] = value
}

func (mb *MemoryBank) DataSize() int {
	return len(mb.Data)
}
