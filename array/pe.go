// Package array implements the output-stationary systolic grid of the NPU.
package array

import "github.com/sarchlab/npusim/npu"

// PE is one processing element. It keeps a local accumulator and forwards
// the operands it receives to the east and south neighbors with one cycle
// of delay.
type PE struct {
	row, col int

	west  int8
	north int8
	acc   int64

	nextWest  int8
	nextNorth int8
	nextAcc   int64
}

// EastOut returns the registered activation forwarded to the east neighbor.
func (p *PE) EastOut() int8 {
	return p.west
}

// SouthOut returns the registered weight forwarded to the south neighbor.
func (p *PE) SouthOut() int8 {
	return p.north
}

// Acc returns the latched accumulator value.
func (p *PE) Acc() int64 {
	return p.acc
}

// stage computes the next register values from the current inputs. Clear
// takes priority over accumulation. When the element is not enabled the
// accumulator holds its value and nothing moves.
func (p *PE) stage(
	westIn, northIn int8,
	en, clear bool,
	accLimit int64,
	accWidth int,
) error {
	p.nextWest = p.west
	p.nextNorth = p.north
	p.nextAcc = p.acc

	if !en {
		return nil
	}

	p.nextWest = westIn
	p.nextNorth = northIn

	if clear {
		p.nextAcc = 0
		return nil
	}

	p.nextAcc = p.acc + int64(westIn)*int64(northIn)
	if p.nextAcc >= accLimit || p.nextAcc < -accLimit {
		return &npu.OverflowError{
			Row: p.row, Col: p.col,
			Acc: p.nextAcc, AccWidth: accWidth,
		}
	}

	return nil
}

// commit latches the staged values.
func (p *PE) commit() {
	p.west = p.nextWest
	p.north = p.nextNorth
	p.acc = p.nextAcc
}

func (p *PE) reset() {
	p.west, p.north, p.acc = 0, 0, 0
	p.nextWest, p.nextNorth, p.nextAcc = 0, 0, 0
}
