package vm

const MemorySize = 1 << 16

const (
	TrapVectorTableStart       = 0x0000
	InterruptVectorTableStart  = 0x0100
	SystemSpaceStart           = 0x0200
	UserSpaceStart             = 0x3000
	MemoryMappedRegistersStart = 0xFE00
)

// memory mapped register addresses
const (
	KBSR = MemoryMappedRegistersStart          /* keyboard status register */
	KBDR = MemoryMappedRegistersStart + 0x0002 /* keyboard data register */
	DSR  = MemoryMappedRegistersStart + 0x0004 /* display status register */
	DDR  = MemoryMappedRegistersStart + 0x0006 /* display data register */
)

// device is a register exposed at a fixed address. Reads may block and may
// fail, which aborts the instruction performing them.
type device struct {
	addr  word
	read  func() (word, error)
	write func(value word) error
}

type memory struct {
	ram    [MemorySize]word
	mapped []device
}

// mapDevice routes reads and writes at addr to the device. A nil read or
// write falls through to plain storage.
func (mem *memory) mapDevice(addr word, read func() (word, error), write func(word) error) {
	mem.mapped = append(mem.mapped, device{addr: addr, read: read, write: write})
}

func (mem *memory) lookup(addr word) *device {
	if addr < MemoryMappedRegistersStart {
		return nil
	}
	for i := range mem.mapped {
		if mem.mapped[i].addr == addr {
			return &mem.mapped[i]
		}
	}
	return nil
}

func (mem *memory) read(addr word) (word, error) {
	if dev := mem.lookup(addr); dev != nil && dev.read != nil {
		return dev.read()
	}
	return mem.ram[addr], nil
}

func (mem *memory) write(addr, value word) error {
	if dev := mem.lookup(addr); dev != nil && dev.write != nil {
		return dev.write(value)
	}
	mem.ram[addr] = value
	return nil
}

// peek and poke bypass the device registers.
func (mem *memory) peek(addr word) word {
	return mem.ram[addr]
}

func (mem *memory) poke(addr, value word) {
	mem.ram[addr] = value
}
