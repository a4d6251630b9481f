package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSext(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		value    word
		bits     uint
		expected word
	}){
		{0b10000, 5, 0xFFF0},
		{0b01111, 5, 0x000F},
		{0b11111, 5, 0xFFFF},
		{0, 5, 0},
		{0x100, 9, 0xFF00},
		{0x0FF, 9, 0x00FF},
		{0x400, 11, 0xFC00},
		{0x3FF, 11, 0x03FF},
		{0x20, 6, 0xFFE0},
		{0x1F, 6, 0x001F},
		{0xFFFF, 16, 0xFFFF},
	}

	for _, entry := range table {
		assert.Equal(entry.expected, sext(entry.value, entry.bits), "sext(%#x, %d)", entry.value, entry.bits)
	}
}

func TestSextAllWidths(t *testing.T) {
	for n := uint(1); n < 16; n++ {
		for x := word(0); x < 1<<n; x++ {
			got := sext(x, n)
			low := word(1<<n - 1)
			if x>>(n-1) == 0 {
				if got != x {
					t.Fatalf("sext(%#x, %d) = %#x, want unchanged", x, n, got)
				}
			} else if got&low != x || got|low != 0xFFFF {
				t.Fatalf("sext(%#x, %d) = %#x, upper bits not set", x, n, got)
			}
		}
	}
}

func TestFlagFor(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(FlagZero, flagFor(0))
	assert.Equal(FlagNegative, flagFor(0x8000))
	assert.Equal(FlagNegative, flagFor(0xFFFF))
	assert.Equal(FlagPositive, flagFor(0x0001))
	assert.Equal(FlagPositive, flagFor(0x7FFF))

	for _, v := range []word{0, 1, 0x7FFF, 0x8000, 0xFFFF} {
		fl := flagFor(v)
		assert.Equal(1, popcount(uint16(fl)), "flag for %#x", v)
	}
}

func popcount(v uint16) (n int) {
	for ; v != 0; v &= v - 1 {
		n++
	}
	return
}
