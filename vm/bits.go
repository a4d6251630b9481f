package vm

type word = uint16

// sign extend the low bitCount bits of x to a full word
func sext(x word, bitCount uint) word {
	x &= 0xFFFF >> (16 - bitCount)
	if (x>>(bitCount-1))&0b1 != 0 {
		x |= 0xFFFF << bitCount
	}
	return x
}

// flagFor derives the condition flag a result register should produce.
func flagFor(value word) Flag {
	switch {
	case value == 0:
		return FlagZero
	case value>>15 != 0:
		return FlagNegative
	default:
		return FlagPositive
	}
}
