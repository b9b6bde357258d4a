// Package npu defines the commonly used data structures for the NPU.
package npu

import (
	"github.com/sarchlab/akita/v4/sim"
)

// A Device is an NPU accelerator. It terminates one inbound and one outbound
// INT8 stream and exposes the control-register view that a host driver
// programs between runs.
type Device interface {
	// DataIn returns the port that accepts weight/activation packets.
	DataIn() sim.Port

	// DataOut returns the port that produces result packets.
	DataOut() sim.Port

	// Config returns the instantiation-time parameters of the device.
	Config() Config

	SetOpcode(op Opcode)
	SetRequant(p RequantParams)

	// Start pulses the start register. Starting while busy or with an
	// unrecognized opcode raises the status flag instead of corrupting the
	// run in flight.
	Start()

	Busy() bool
	Done() bool

	// StatusErr returns the protocol-error flag. The flag is cleared by the
	// next accepted Start.
	StatusErr() error

	// Fault returns the fatal error that stopped the device, if any.
	Fault() error

	Reset()
}

// RequantParams configures the post-processing pipeline for a run.
type RequantParams struct {
	// Shift is the arithmetic right shift applied to the accumulator.
	Shift uint

	// ZeroPoint is added after the shift.
	ZeroPoint int

	// ReluEn clamps negative accumulator values to zero before the shift.
	ReluEn bool
}
