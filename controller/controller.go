// Package controller implements the run-control state machine of the NPU.
package controller

import "github.com/sarchlab/npusim/npu"

// Inputs carries the per-cycle status signals the datapath reports back.
type Inputs struct {
	// LoadBeat is true when one stream beat was accepted this cycle.
	LoadBeat bool

	// StoreComplete is true when the last result beat left the device.
	StoreComplete bool
}

// Signals carries the per-cycle control outputs.
type Signals struct {
	SramEn   bool
	ArrayEn  bool
	ClearAcc bool
	PpuEn    bool
	Busy     bool
	Done     bool
}

// Controller sequences one run through LOAD, COMPUTE, DRAIN and STORE. The
// compute phase lasts exactly 2N-1 cycles for an N x N array; the first of
// them clears the accumulators. The array and the post-processing stage
// stay enabled through DRAIN and STORE so that the trailing wavefronts can
// finish while results are shipped out.
type Controller struct {
	loadBeats     int
	computeCycles int

	phase        npu.Phase
	startPending bool
	loadCount    int
	computeCount int

	protoErr error
}

// NewController builds a controller for the given geometry.
func NewController(arraySize, loadBeats int) *Controller {
	return &Controller{
		loadBeats:     loadBeats,
		computeCycles: 2*arraySize - 1,
		phase:         npu.PhaseIdle,
	}
}

// Phase returns the current phase.
func (c *Controller) Phase() npu.Phase {
	return c.phase
}

// Busy reports whether a run is in flight. A start that has been accepted
// but not yet sequenced already counts as busy.
func (c *Controller) Busy() bool {
	return c.startPending || c.phase != npu.PhaseIdle
}

// Err returns the sticky protocol error flag.
func (c *Controller) Err() error {
	return c.protoErr
}

// Start requests one run. A start while busy or with an invalid opcode is
// rejected without touching the machine state; the error stays readable
// until the next accepted start or a reset.
func (c *Controller) Start(op npu.Opcode) error {
	if c.Busy() {
		c.protoErr = &npu.ProtocolError{Reason: "start while busy"}
		return c.protoErr
	}

	if !op.Valid() {
		c.protoErr = &npu.ProtocolError{
			Reason: "unknown opcode " + op.Name(),
		}
		return c.protoErr
	}

	c.protoErr = nil
	c.startPending = true

	return nil
}

// Cycle advances the state machine by one clock.
func (c *Controller) Cycle(in Inputs) Signals {
	var sig Signals

	switch c.phase {
	case npu.PhaseIdle:
		if c.startPending {
			c.startPending = false
			c.loadCount = 0
			c.phase = npu.PhaseLoad
			sig.Busy = true
		}
	case npu.PhaseLoad:
		sig.Busy = true
		sig.SramEn = true
		if in.LoadBeat {
			c.loadCount++
		}
		if c.loadCount == c.loadBeats {
			c.computeCount = 0
			c.phase = npu.PhaseCompute
		}
	case npu.PhaseCompute:
		sig.Busy = true
		sig.ArrayEn = true
		sig.ClearAcc = c.computeCount == 0
		c.computeCount++
		if c.computeCount == c.computeCycles {
			c.phase = npu.PhaseDrain
		}
	case npu.PhaseDrain:
		sig.Busy = true
		sig.ArrayEn = true
		sig.PpuEn = true
		c.phase = npu.PhaseStore
	case npu.PhaseStore:
		sig.Busy = true
		sig.ArrayEn = true
		sig.PpuEn = true
		if in.StoreComplete {
			c.phase = npu.PhaseIdle
			sig.Busy = false
			sig.Done = true
		}
	}

	return sig
}

// Reset returns the machine to IDLE and clears the error flag.
func (c *Controller) Reset() {
	c.phase = npu.PhaseIdle
	c.startPending = false
	c.loadCount = 0
	c.computeCount = 0
	c.protoErr = nil
}
