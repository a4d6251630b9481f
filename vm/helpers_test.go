package vm

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

// scriptConsole replays keys and records everything written.
type scriptConsole struct {
	bytes.Buffer
	keys  []byte
	reads int
}

func (c *scriptConsole) ReadKey(ctx context.Context) (byte, error) {
	if len(c.keys) == 0 {
		return 0, ErrInputClosed
	}
	c.reads++
	key := c.keys[0]
	c.keys = c.keys[1:]
	return key, nil
}

func (c *scriptConsole) PollKey() (byte, bool) {
	if len(c.keys) == 0 {
		return 0, false
	}
	c.reads++
	key := c.keys[0]
	c.keys = c.keys[1:]
	return key, true
}

func newTestVM(t *testing.T, keys string) (*VM, *scriptConsole) {
	t.Helper()

	console := &scriptConsole{keys: []byte(keys)}
	machine := NewVM(console)

	log := logrus.New()
	log.SetOutput(io.Discard)
	machine.Log = log

	return machine, console
}

// program pokes code at origin and points PC at it.
func program(machine *VM, origin word, code ...word) {
	for i, w := range code {
		machine.Poke(origin+word(i), w)
	}
	machine.SetPC(origin)
}

// instruction encoders

func opADDimm(dst, src word, imm int) word {
	return 0x1000 | dst<<9 | src<<6 | 1<<5 | word(imm)&0x1F
}

func opADD(dst, src1, src2 word) word {
	return 0x1000 | dst<<9 | src1<<6 | src2
}

func opANDimm(dst, src word, imm int) word {
	return 0x5000 | dst<<9 | src<<6 | 1<<5 | word(imm)&0x1F
}

func opAND(dst, src1, src2 word) word {
	return 0x5000 | dst<<9 | src1<<6 | src2
}

func opNOT(dst, src word) word {
	return 0x9000 | dst<<9 | src<<6 | 0x3F
}

func opBR(nzp word, offset int) word {
	return nzp<<9 | word(offset)&0x1FF
}

func opJMP(base word) word {
	return 0xC000 | base<<6
}

func opJSR(offset int) word {
	return 0x4800 | word(offset)&0x7FF
}

func opJSRR(base word) word {
	return 0x4000 | base<<6
}

func pcRelative(op, reg word, offset int) word {
	return op<<12 | reg<<9 | word(offset)&0x1FF
}

func baseRelative(op, reg, base word, offset int) word {
	return op<<12 | reg<<9 | base<<6 | word(offset)&0x3F
}

func opTRAP(vector word) word {
	return 0xF000 | vector&0xFF
}
