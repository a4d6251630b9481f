package vm

import (
	"context"
	goIO "io"
)

// Console is the character device behind the keyboard and display
// registers and the console traps.
type Console interface {
	goIO.Writer

	// ReadKey blocks until one input character is available.
	ReadKey(ctx context.Context) (byte, error)

	// PollKey returns a pending input character without blocking.
	PollKey() (byte, bool)
}

type streamConsole struct {
	goIO.Writer
	keyBuffer chan byte
}

// NewConsole returns a Console that reads keys from in and writes output to
// out. in is drained by a background goroutine one byte at a time, so at most
// one key is buffered ahead of the program.
func NewConsole(in goIO.Reader, out goIO.Writer) Console {
	c := &streamConsole{
		Writer:    out,
		keyBuffer: make(chan byte, 1),
	}
	go c.pollKeyboard(in)
	return c
}

func (c *streamConsole) pollKeyboard(in goIO.Reader) {
	defer close(c.keyBuffer)

	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			c.keyBuffer <- buf[0]
		}
		if err != nil {
			return
		}
	}
}

func (c *streamConsole) ReadKey(ctx context.Context) (byte, error) {
	select {
	case key, ok := <-c.keyBuffer:
		if !ok {
			return 0, ErrInputClosed
		}
		return key, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (c *streamConsole) PollKey() (byte, bool) {
	select {
	case key, ok := <-c.keyBuffer:
		return key, ok
	default:
		return 0, false
	}
}

// keyboard holds at most one character between KBSR reporting it and a
// KBDR read or GETC/IN consuming it.
type keyboard struct {
	console Console
	pending bool
	key     word
}

func (kb *keyboard) status() (word, error) {
	if !kb.pending {
		if c, ok := kb.console.PollKey(); ok {
			kb.pending = true
			kb.key = word(c)
		}
	}
	if kb.pending {
		return 0x8000, nil
	}
	return 0, nil
}

// next consumes the pending character, waiting for one if none is pending.
func (kb *keyboard) next(ctx context.Context) (word, error) {
	if !kb.pending {
		c, err := kb.console.ReadKey(ctx)
		if err != nil {
			return 0, err
		}
		kb.key = word(c)
	}
	kb.pending = false
	return kb.key, nil
}

func (cpu *cpu) mapDevices() {
	ignore := func(word) error { return nil }

	cpu.memory.mapDevice(KBSR, cpu.keyboard.status, ignore)
	cpu.memory.mapDevice(KBDR, func() (word, error) {
		return cpu.keyboard.next(cpu.ctx)
	}, ignore)
	cpu.memory.mapDevice(DSR, func() (word, error) {
		return 0x8000, nil
	}, ignore)
	cpu.memory.mapDevice(DDR, nil, func(value word) error {
		return cpu.putc(byte(value))
	})
}

func (cpu *cpu) putc(c byte) error {
	_, err := cpu.console.Write([]byte{c})
	return err
}

func (cpu *cpu) puts(s string) error {
	_, err := goIO.WriteString(cpu.console, s)
	return err
}
