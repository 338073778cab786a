// Package mem provides memory-backed responder models for the bus.
package mem

// pageSize is the allocation granule of the sparse store.
const pageSize = 4096

// Memory is a sparse byte-addressed store. Pages are allocated on first
// write; unbacked bytes read as zero. Words are little-endian.
type Memory struct {
	pages map[uint32][]byte
}

// NewMemory creates an empty sparse memory.
func NewMemory() *Memory {
	return &Memory{
		pages: make(map[uint32][]byte),
	}
}

// page returns the page holding addr, allocating it when requested.
func (m *Memory) page(addr uint32, allocate bool) []byte {
	id := addr / pageSize
	p, ok := m.pages[id]
	if !ok && allocate {
		p = make([]byte, pageSize)
		m.pages[id] = p
	}
	return p
}

// Read8 returns the byte at addr.
func (m *Memory) Read8(addr uint32) uint8 {
	p := m.page(addr, false)
	if p == nil {
		return 0
	}
	return p[addr%pageSize]
}

// Write8 stores one byte at addr.
func (m *Memory) Write8(addr uint32, v uint8) {
	m.page(addr, true)[addr%pageSize] = v
}

// Read32 returns the little-endian word at addr.
func (m *Memory) Read32(addr uint32) uint32 {
	var v uint32
	for i := uint32(0); i < 4; i++ {
		v |= uint32(m.Read8(addr+i)) << (8 * i)
	}
	return v
}

// Write32 stores a little-endian word at addr.
func (m *Memory) Write32(addr uint32, v uint32) {
	for i := uint32(0); i < 4; i++ {
		m.Write8(addr+i, uint8(v>>(8*i)))
	}
}
