package api

import "github.com/sarchlab/npusim/npu"

// An Instruction is one step of a host program.
type Instruction interface {
	Name() string
}

// LoadWeights selects the weight matrix for the following MatMul
// instructions. Addr is the row-major base of the matrix in driver memory.
type LoadWeights struct {
	Addr int
}

// Name returns the mnemonic of the instruction.
func (LoadWeights) Name() string { return "LOAD_WEIGHTS" }

// MatMul multiplies Rows activation vectors with the selected weight
// matrix. Vector r is read from Src+r*N and its requantized result written
// to Dst+r*N, one device run per vector.
type MatMul struct {
	Src  int
	Dst  int
	Rows int

	Requant npu.RequantParams
}

// Name returns the mnemonic of the instruction.
func (MatMul) Name() string { return "MATMUL" }

// Halt ends the program.
type Halt struct{}

// Name returns the mnemonic of the instruction.
func (Halt) Name() string { return "HALT" }

// A Program is the instruction sequence the driver executes.
type Program []Instruction
