package vm

const (
	TRAP_GETC  word = 0x20 /* get character from keyboard, not echoed onto the terminal */
	TRAP_OUT   word = 0x21 /* output a character */
	TRAP_PUTS  word = 0x22 /* output a word string */
	TRAP_IN    word = 0x23 /* get character from keyboard, echoed onto the terminal */
	TRAP_PUTSP word = 0x24 /* output a byte string */
	TRAP_HALT  word = 0x25 /* halt the program */
)

type trapRoutine func(cpu *cpu) error

var trapTable = map[word]trapRoutine{
	TRAP_GETC:  (*cpu).getc,
	TRAP_OUT:   (*cpu).out,
	TRAP_PUTS:  (*cpu).putsTrap,
	TRAP_IN:    (*cpu).in,
	TRAP_PUTSP: (*cpu).putsp,
	TRAP_HALT:  (*cpu).halt,
}

func (cpu *cpu) getc() error {
	c, err := cpu.keyboard.next(cpu.ctx)
	if err != nil {
		return err
	}
	cpu.regs.set(R0, c)
	return nil
}

func (cpu *cpu) out() error {
	return cpu.putc(byte(cpu.regs.get(R0)))
}

// putsTrap writes one character per word from the address in R0 up to a
// zero word.
func (cpu *cpu) putsTrap() error {
	for addr := cpu.regs.get(R0); ; addr++ {
		c, err := cpu.memory.read(addr)
		if err != nil {
			return err
		}
		if c == 0 {
			return nil
		}
		if err := cpu.putc(byte(c)); err != nil {
			return err
		}
	}
}

func (cpu *cpu) in() error {
	if err := cpu.puts(f("Enter a character: ")); err != nil {
		return err
	}
	c, err := cpu.keyboard.next(cpu.ctx)
	if err != nil {
		return err
	}
	if err := cpu.putc(byte(c)); err != nil {
		return err
	}
	cpu.regs.set(R0, c)
	return nil
}

// putsp writes two packed characters per word, low byte first. A zero high
// byte ends the word early; a zero word ends the string.
func (cpu *cpu) putsp() error {
	for addr := cpu.regs.get(R0); ; addr++ {
		w, err := cpu.memory.read(addr)
		if err != nil {
			return err
		}
		if w == 0 {
			return nil
		}
		if err := cpu.putc(byte(w)); err != nil {
			return err
		}
		if hi := byte(w >> 8); hi != 0 {
			if err := cpu.putc(hi); err != nil {
				return err
			}
		}
	}
}

func (cpu *cpu) halt() error {
	cpu.stop()
	return cpu.puts(f("HALT\n"))
}
