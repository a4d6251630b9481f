package vm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

type opcode word

// opcodes
const (
	OP_BR opcode = iota
	OP_ADD
	OP_LD
	OP_ST
	OP_JSR
	OP_AND
	OP_LDR
	OP_STR
	OP_RTI
	OP_NOT
	OP_LDI
	OP_STI
	OP_JMP
	OP_RES
	OP_LEA
	OP_TRAP
)

var opcodeNames = [16]string{
	"BR", "ADD", "LD", "ST", "JSR", "AND", "LDR", "STR",
	"RTI", "NOT", "LDI", "STI", "JMP", "RES", "LEA", "TRAP",
}

func (op opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return fmt.Sprintf("opcode(%d)", uint16(op))
}

type handler func(cpu *cpu, instruction word) error

// every slot is filled; RTI and RES fault
var dispatch = [16]handler{
	OP_BR:   (*cpu).br,
	OP_ADD:  (*cpu).add,
	OP_LD:   (*cpu).ld,
	OP_ST:   (*cpu).st,
	OP_JSR:  (*cpu).jsr,
	OP_AND:  (*cpu).and,
	OP_LDR:  (*cpu).ldr,
	OP_STR:  (*cpu).str,
	OP_RTI:  (*cpu).reserved,
	OP_NOT:  (*cpu).not,
	OP_LDI:  (*cpu).ldi,
	OP_STI:  (*cpu).sti,
	OP_JMP:  (*cpu).jmp,
	OP_RES:  (*cpu).reserved,
	OP_LEA:  (*cpu).lea,
	OP_TRAP: (*cpu).trap,
}

type cpu struct {
	running bool
	halted  bool
	fault   error
	count   uint64

	memory   memory
	regs     registers
	keyboard keyboard
	console  Console

	verbose bool
	log     logrus.FieldLogger

	// context of the step in progress, consulted by blocking console reads
	ctx context.Context
}

func newCpu(console Console, log logrus.FieldLogger) *cpu {
	cpu := &cpu{
		console:  console,
		keyboard: keyboard{console: console},
		log:      log,
		ctx:      context.Background(),
	}
	cpu.regs.pc = UserSpaceStart
	cpu.regs.cond = FlagZero
	cpu.mapDevices()
	return cpu
}

// step fetches, decodes and executes one instruction.
func (cpu *cpu) step(ctx context.Context) error {
	if cpu.fault != nil {
		return cpu.fault
	}
	if cpu.halted {
		return ErrHalted
	}

	cpu.ctx = ctx
	defer func() { cpu.ctx = context.Background() }()

	addr := cpu.regs.pc
	instruction, err := cpu.memory.read(addr)
	if err != nil {
		cpu.fault = err
		return err
	}
	cpu.regs.pc++
	cpu.count++

	op := opcode(instruction >> 12)
	if cpu.verbose {
		cpu.log.WithFields(logrus.Fields{
			"pc": fmt.Sprintf("0x%04x", addr),
			"op": op.String(),
		}).Debugf("0x%04x", instruction)
	}

	if err := dispatch[op](cpu, instruction); err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			// interrupted key wait: rewind so the instruction runs again
			cpu.regs.pc = addr
			cpu.count--
			cpu.running = false
			return err
		}

		var illegal *ErrIllegalInstruction
		if errors.As(err, &illegal) {
			illegal.PC = addr
			illegal.Instruction = instruction
		}
		cpu.fault = err
		cpu.running = false
		return err
	}
	return nil
}

func (cpu *cpu) stop() {
	cpu.running = false
	cpu.halted = true
}

func (cpu *cpu) trace(format string, args ...any) {
	if cpu.verbose {
		cpu.log.Debugf(format, args...)
	}
}

func dr(instruction word) word {
	return (instruction >> 9) & 0b111
}

func sr1(instruction word) word {
	return (instruction >> 6) & 0b111
}

func pcoffset9(instruction word) word {
	return sext(instruction&0x1FF, 9)
}

func (cpu *cpu) add(instruction word) error {
	dst, src := dr(instruction), sr1(instruction)

	if (instruction>>5)&0b1 == 1 {
		imm5 := sext(instruction&0x1F, 5)
		cpu.trace("ADD: dr=%03b sr1=%03b imm5=0x%04x", dst, src, imm5)
		cpu.regs.set(dst, cpu.regs.get(src)+imm5)
	} else {
		sr2 := instruction & 0b111
		cpu.trace("ADD: dr=%03b sr1=%03b sr2=%03b", dst, src, sr2)
		cpu.regs.set(dst, cpu.regs.get(src)+cpu.regs.get(sr2))
	}

	cpu.regs.updateFlags(dst)
	return nil
}

func (cpu *cpu) and(instruction word) error {
	dst, src := dr(instruction), sr1(instruction)

	if (instruction>>5)&0b1 == 1 {
		imm5 := sext(instruction&0x1F, 5)
		cpu.trace("AND: dr=%03b sr1=%03b imm5=0x%04x", dst, src, imm5)
		cpu.regs.set(dst, cpu.regs.get(src)&imm5)
	} else {
		sr2 := instruction & 0b111
		cpu.trace("AND: dr=%03b sr1=%03b sr2=%03b", dst, src, sr2)
		cpu.regs.set(dst, cpu.regs.get(src)&cpu.regs.get(sr2))
	}

	cpu.regs.updateFlags(dst)
	return nil
}

func (cpu *cpu) not(instruction word) error {
	dst, src := dr(instruction), sr1(instruction)
	cpu.trace("NOT: dr=%03b sr=%03b", dst, src)

	cpu.regs.set(dst, ^cpu.regs.get(src))
	cpu.regs.updateFlags(dst)
	return nil
}

func (cpu *cpu) br(instruction word) error {
	nzp := (instruction >> 9) & 0b111
	offset := pcoffset9(instruction)
	cpu.trace("BR: nzp=%03b pcoffset9=0x%04x", nzp, offset)

	if nzp&word(cpu.regs.cond) != 0 {
		cpu.regs.pc += offset
	}
	return nil
}

// JMP with base register R7 is RET.
func (cpu *cpu) jmp(instruction word) error {
	base := sr1(instruction)
	cpu.trace("JMP: br=%03b", base)

	cpu.regs.pc = cpu.regs.get(base)
	return nil
}

func (cpu *cpu) jsr(instruction word) error {
	ret := cpu.regs.pc

	if (instruction>>11)&0b1 == 1 {
		offset := sext(instruction&0x7FF, 11)
		cpu.trace("JSR: pcoffset11=0x%04x", offset)
		cpu.regs.pc += offset
	} else {
		base := sr1(instruction)
		cpu.trace("JSRR: br=%03b", base)
		// read the base before R7 is overwritten so JSRR R7 works
		cpu.regs.pc = cpu.regs.get(base)
	}

	cpu.regs.set(R7, ret)
	return nil
}

func (cpu *cpu) ld(instruction word) error {
	dst, offset := dr(instruction), pcoffset9(instruction)
	cpu.trace("LD: dr=%03b pcoffset9=0x%04x", dst, offset)

	value, err := cpu.memory.read(cpu.regs.pc + offset)
	if err != nil {
		return err
	}
	cpu.regs.set(dst, value)
	cpu.regs.updateFlags(dst)
	return nil
}

func (cpu *cpu) ldi(instruction word) error {
	dst, offset := dr(instruction), pcoffset9(instruction)
	cpu.trace("LDI: dr=%03b pcoffset9=0x%04x", dst, offset)

	addr, err := cpu.memory.read(cpu.regs.pc + offset)
	if err != nil {
		return err
	}
	value, err := cpu.memory.read(addr)
	if err != nil {
		return err
	}
	cpu.regs.set(dst, value)
	cpu.regs.updateFlags(dst)
	return nil
}

func (cpu *cpu) ldr(instruction word) error {
	dst, base := dr(instruction), sr1(instruction)
	offset := sext(instruction&0x3F, 6)
	cpu.trace("LDR: dr=%03b br=%03b offset6=0x%04x", dst, base, offset)

	value, err := cpu.memory.read(cpu.regs.get(base) + offset)
	if err != nil {
		return err
	}
	cpu.regs.set(dst, value)
	cpu.regs.updateFlags(dst)
	return nil
}

func (cpu *cpu) lea(instruction word) error {
	dst, offset := dr(instruction), pcoffset9(instruction)
	cpu.trace("LEA: dr=%03b pcoffset9=0x%04x", dst, offset)

	cpu.regs.set(dst, cpu.regs.pc+offset)
	cpu.regs.updateFlags(dst)
	return nil
}

func (cpu *cpu) st(instruction word) error {
	src, offset := dr(instruction), pcoffset9(instruction)
	cpu.trace("ST: sr=%03b pcoffset9=0x%04x", src, offset)

	return cpu.memory.write(cpu.regs.pc+offset, cpu.regs.get(src))
}

func (cpu *cpu) sti(instruction word) error {
	src, offset := dr(instruction), pcoffset9(instruction)
	cpu.trace("STI: sr=%03b pcoffset9=0x%04x", src, offset)

	addr, err := cpu.memory.read(cpu.regs.pc + offset)
	if err != nil {
		return err
	}
	return cpu.memory.write(addr, cpu.regs.get(src))
}

func (cpu *cpu) str(instruction word) error {
	src, base := dr(instruction), sr1(instruction)
	offset := sext(instruction&0x3F, 6)
	cpu.trace("STR: sr=%03b br=%03b offset6=0x%04x", src, base, offset)

	return cpu.memory.write(cpu.regs.get(base)+offset, cpu.regs.get(src))
}

func (cpu *cpu) trap(instruction word) error {
	vector := instruction & 0xFF
	cpu.trace("TRAP: 0x%02x", vector)

	cpu.regs.set(R7, cpu.regs.pc)

	routine, ok := trapTable[vector]
	if !ok {
		return &ErrIllegalInstruction{Err: ErrTrapUnknown}
	}
	return routine(cpu)
}

func (cpu *cpu) reserved(instruction word) error {
	return &ErrIllegalInstruction{Err: ErrOpcodeReserved}
}
