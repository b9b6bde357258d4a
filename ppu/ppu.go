// Package ppu implements the post-processing stage that requantizes wide
// accumulators back to stream elements.
package ppu

import "github.com/sarchlab/npusim/npu"

// Quantize maps one accumulator value to an element. The steps follow the
// hardware pipeline: optional ReLU, arithmetic right shift, zero-point
// offset, then saturation to [elemMin, elemMax].
func Quantize(acc int64, p npu.RequantParams, elemMin, elemMax int) int8 {
	if p.ReluEn && acc < 0 {
		acc = 0
	}

	acc >>= p.Shift
	acc += int64(p.ZeroPoint)

	if acc > int64(elemMax) {
		acc = int64(elemMax)
	}
	if acc < int64(elemMin) {
		acc = int64(elemMin)
	}

	return int8(acc)
}

// Unit is one requantization lane with a single register stage: a value
// latched in one cycle is available at the output on the next.
type Unit struct {
	params  npu.RequantParams
	elemMin int
	elemMax int

	in      int64
	inValid bool

	out      int8
	outValid bool
}

// Latch captures an accumulator value for the next cycle.
func (u *Unit) Latch(acc int64) {
	u.in = acc
	u.inValid = true
}

// Cycle advances the register stage.
func (u *Unit) Cycle(en bool) {
	if !en {
		return
	}

	if u.inValid {
		u.out = Quantize(u.in, u.params, u.elemMin, u.elemMax)
		u.outValid = true
		u.inValid = false
	}
}

// Out returns the registered output and whether it is valid.
func (u *Unit) Out() (int8, bool) {
	return u.out, u.outValid
}

func (u *Unit) reset() {
	u.in, u.inValid = 0, false
	u.out, u.outValid = 0, false
}

// Bank groups one Unit per array column.
type Bank struct {
	units []Unit
}

// NewBank builds a bank of n lanes sized for the given element range.
func NewBank(n, elemMin, elemMax int) *Bank {
	b := &Bank{units: make([]Unit, n)}
	for i := range b.units {
		b.units[i].elemMin = elemMin
		b.units[i].elemMax = elemMax
	}

	return b
}

// SetParams installs the requantization parameters on every lane. The
// driver may change them between runs but not while one is in flight.
func (b *Bank) SetParams(p npu.RequantParams) {
	for i := range b.units {
		b.units[i].params = p
	}
}

// Latch captures the accumulator for lane col.
func (b *Bank) Latch(col int, acc int64) {
	b.units[col].Latch(acc)
}

// Cycle advances every lane.
func (b *Bank) Cycle(en bool) {
	for i := range b.units {
		b.units[i].Cycle(en)
	}
}

// Out returns the registered output of lane col.
func (b *Bank) Out(col int) (int8, bool) {
	return b.units[col].Out()
}

// Reset returns every lane to the power-on state. The installed parameters
// survive, matching configuration registers that are not touched by reset.
func (b *Bank) Reset() {
	for i := range b.units {
		b.units[i].reset()
	}
}
