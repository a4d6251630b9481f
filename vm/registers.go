package vm

import "fmt"

// general purpose registers
const (
	R0 = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	RegisterCount
)

// Flag is the condition code register. Exactly one bit is set after every
// flag-updating instruction.
type Flag uint16

// flags
const (
	FlagPositive Flag = 0b001
	FlagZero     Flag = 0b010
	FlagNegative Flag = 0b100
)

func (fl Flag) String() string {
	switch fl {
	case FlagPositive:
		return "P"
	case FlagZero:
		return "Z"
	case FlagNegative:
		return "N"
	}
	return fmt.Sprintf("Flag(%03b)", uint16(fl))
}

type registers struct {
	gpr  [RegisterCount]word
	pc   word
	cond Flag
}

func (r *registers) get(index word) word {
	return r.gpr[index&0b111]
}

func (r *registers) set(index, value word) {
	r.gpr[index&0b111] = value
}

// updateFlags sets the condition register from the value held in register index.
func (r *registers) updateFlags(index word) {
	r.cond = flagFor(r.get(index))
}
