package vm

import (
	"errors"

	"github.com/aryanA101a/lc3-vm-go/translate"
)

var f = translate.From

var (
	// image errors
	ErrImageHeader = errors.New(f("image too short for origin"))

	// run errors
	ErrOpcodeReserved = errors.New(f("reserved opcode"))
	ErrTrapUnknown    = errors.New(f("unknown trap vector"))
	ErrInputClosed    = errors.New(f("console input closed"))
	ErrHalted         = errors.New(f("machine halted"))
)

// ErrImageLoad reports an image that could not be placed in memory.
type ErrImageLoad struct {
	Path string
	Err  error
}

func (err *ErrImageLoad) Error() string {
	if err.Path == "" {
		return f("load image: %v", err.Err)
	}
	return f("load image %v: %v", err.Path, err.Err)
}

func (err *ErrImageLoad) Unwrap() error {
	return err.Err
}

// ErrIllegalInstruction is a fatal fault raised by a reserved opcode or an
// unknown trap vector. PC is the address of the faulting instruction.
type ErrIllegalInstruction struct {
	PC          uint16
	Instruction uint16
	Err         error
}

func (err *ErrIllegalInstruction) Error() string {
	op := opcode(err.Instruction >> 12)
	if errors.Is(err.Err, ErrTrapUnknown) {
		return f("0x%04x: %v 0x%02x (instruction 0x%04x)", err.PC, err.Err, err.Instruction&0xFF, err.Instruction)
	}
	return f("0x%04x: %v %v (instruction 0x%04x)", err.PC, err.Err, op, err.Instruction)
}

func (err *ErrIllegalInstruction) Unwrap() error {
	return err.Err
}

// Opcode returns the 4-bit opcode of the faulting instruction.
func (err *ErrIllegalInstruction) Opcode() uint16 {
	return err.Instruction >> 12
}
