package npu

// Opcode selects the operation of a run. The control register reserves four
// bits; only the matrix-vector multiply-accumulate is defined.
type Opcode uint8

const (
	// OpcodeNone is the reset value and is never a valid operation.
	OpcodeNone Opcode = 0x0

	// OpcodeMatVec multiplies an activation vector with the loaded weight
	// matrix and requantizes the column sums.
	OpcodeMatVec Opcode = 0x1
)

// Valid reports whether the opcode names an implemented operation.
func (o Opcode) Valid() bool {
	return o == OpcodeMatVec
}

// Name returns the mnemonic of the opcode.
func (o Opcode) Name() string {
	switch o {
	case OpcodeNone:
		return "NONE"
	case OpcodeMatVec:
		return "MATVEC"
	default:
		return "UNDEF"
	}
}
