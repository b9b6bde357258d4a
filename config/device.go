// Package config assembles NPU devices and exposes their builders.
package config

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/npusim/array"
	"github.com/sarchlab/npusim/controller"
	"github.com/sarchlab/npusim/npu"
	"github.com/sarchlab/npusim/ppu"
	"github.com/sarchlab/npusim/sram"
)

// Comp is one NPU device. It terminates the inbound and outbound INT8
// streams and steps the controller, the systolic array and the
// post-processing bank in lockstep, one cycle per tick.
type Comp struct {
	*sim.TickingComponent

	cfg npu.Config

	dataIn  npu.Port
	dataOut npu.Port

	ctrl *controller.Controller
	arr  *array.SystolicArray
	bank *ppu.Bank
	mem  *sram.Memory

	opcode  npu.Opcode
	replyTo sim.RemotePort

	loadCount  int
	runCycle   int
	latched    []bool
	storeCol   int
	storeDone  bool
	donePulse  bool
	fault      error
}

// DataIn returns the port that accepts weight/activation packets.
func (c *Comp) DataIn() sim.Port {
	return c.dataIn
}

// DataOut returns the port that produces result packets.
func (c *Comp) DataOut() sim.Port {
	return c.dataOut
}

// Config returns the instantiation-time parameters of the device.
func (c *Comp) Config() npu.Config {
	return c.cfg
}

// SetOpcode writes the operation register.
func (c *Comp) SetOpcode(op npu.Opcode) {
	c.opcode = op
}

// SetRequant writes the post-processing registers. They must not change
// while a run is in flight.
func (c *Comp) SetRequant(p npu.RequantParams) {
	c.bank.SetParams(p)
}

// Start pulses the start register. A rejected start raises the status flag
// and leaves the device state untouched.
func (c *Comp) Start() {
	if err := c.ctrl.Start(c.opcode); err != nil {
		npu.Trace("StartRejected",
			"Device", c.Name(),
			"Err", err.Error(),
		)
		return
	}

	npu.Trace("StartAccepted",
		"Device", c.Name(),
		"Opcode", c.opcode.Name(),
	)
	c.TickLater()
}

// Busy reports whether a run is in flight.
func (c *Comp) Busy() bool {
	return c.ctrl.Busy()
}

// Done reports the one-cycle completion pulse of the latest tick.
func (c *Comp) Done() bool {
	return c.donePulse
}

// StatusErr returns the protocol-error flag.
func (c *Comp) StatusErr() error {
	return c.ctrl.Err()
}

// Fault returns the fatal error that halted the device, if any.
func (c *Comp) Fault() error {
	return c.fault
}

// Phase returns the current controller phase.
func (c *Comp) Phase() npu.Phase {
	return c.ctrl.Phase()
}

// Accumulators returns a snapshot of the array accumulators.
func (c *Comp) Accumulators() [][]int64 {
	return c.arr.Accumulators()
}

// ArrayStateTable renders the accumulator grid for debugging output.
func (c *Comp) ArrayStateTable() string {
	return c.arr.StateTable()
}

// Reset returns the device to the power-on state. The opcode and
// requantization registers survive.
func (c *Comp) Reset() {
	c.ctrl.Reset()
	c.arr.Reset()
	c.mem.Clear()
	c.clearRunState()
	c.donePulse = false
	c.fault = nil
}

// Tick advances the device by one cycle.
func (c *Comp) Tick() bool {
	if c.fault != nil {
		return false
	}

	c.donePulse = false

	madeProgress := false
	madeProgress = c.doSend() || madeProgress
	madeProgress = c.step() || madeProgress

	return madeProgress
}

// doSend ships the next result beat when the post-processing lane holds a
// valid output. A full downstream buffer leaves the beat in place for the
// next cycle.
func (c *Comp) doSend() bool {
	if c.ctrl.Phase() != npu.PhaseStore || c.storeCol >= c.cfg.ArraySize {
		return false
	}

	v, valid := c.bank.Out(c.storeCol)
	if !valid {
		return false
	}

	last := c.storeCol == c.cfg.ArraySize-1
	msg := npu.StreamMsgBuilder{}.
		WithSrc(c.dataOut.AsRemote()).
		WithDst(c.replyTo).
		WithData(v).
		WithLast(last).
		Build()

	if err := c.dataOut.Send(msg); err != nil {
		npu.Trace("StoreStalled",
			"Device", c.Name(),
			"Col", c.storeCol,
		)
		return false
	}

	npu.Trace("StoreBeat",
		"Device", c.Name(),
		"Col", c.storeCol,
		"Data", v,
		"Last", last,
	)

	c.storeCol++
	if last {
		c.storeDone = true
	}

	return true
}

// step advances the controller and the datapath by one cycle.
func (c *Comp) step() bool {
	var in controller.Inputs

	if c.ctrl.Phase() == npu.PhaseLoad {
		in.LoadBeat = c.recvBeat()
	}
	in.StoreComplete = c.storeDone

	prevPhase := c.ctrl.Phase()
	sig := c.ctrl.Cycle(in)

	if phase := c.ctrl.Phase(); phase != prevPhase {
		npu.Trace("PhaseChange",
			"Device", c.Name(),
			"From", prevPhase.Name(),
			"To", phase.Name(),
		)
	}

	if sig.ArrayEn {
		if sig.ClearAcc {
			c.armArray()
		}

		if err := c.arr.Cycle(true, sig.ClearAcc); err != nil {
			c.fault = err
			npu.Trace("Fault", "Device", c.Name(), "Err", err.Error())
			return false
		}

		if !sig.ClearAcc {
			c.runCycle++
		}
	}

	if sig.PpuEn {
		c.bank.Cycle(true)
	}
	c.latchFinalColumns(sig)

	if sig.Done {
		c.donePulse = true
		c.clearRunState()
		npu.Trace("RunDone", "Device", c.Name())
	}

	// A device stalled in LOAD makes no progress. It goes back to sleep and
	// NotifyRecv wakes it when the next beat arrives.
	return sig.ArrayEn || sig.PpuEn || sig.Done || in.LoadBeat ||
		c.ctrl.Phase() != prevPhase
}

// recvBeat accepts one inbound stream beat and stages it into the
// scratchpad. Beats arriving outside LOAD stay buffered in the port.
func (c *Comp) recvBeat() bool {
	item := c.dataIn.RetrieveIncoming()
	if item == nil {
		return false
	}

	msg := item.(*npu.StreamMsg)
	c.replyTo = msg.Src

	if c.loadCount < c.mem.Depth() {
		c.mem.Write(c.loadCount, msg.Data)
	}
	c.loadCount++

	return true
}

// armArray builds the skewed injection schedule from the scratchpad. The
// first ArraySize*ArraySize cells hold the weight matrix row-major; the
// ArraySize cells after them hold the activation vector, which every row
// stream replays.
func (c *Comp) armArray() {
	n := c.cfg.ArraySize

	vec := c.mem.ReadBlock(n*n, n)
	westRows := make([][]int8, n)
	for r := 0; r < n; r++ {
		westRows[r] = vec
	}

	northCols := make([][]int8, n)
	for col := 0; col < n; col++ {
		northCols[col] = make([]int8, n)
		for k := 0; k < n; k++ {
			northCols[col][k] = c.mem.Read(k*n + col)
		}
	}

	c.arr.LoadSchedule(westRows, northCols)
	c.runCycle = 0
}

// latchFinalColumns moves each column sum into its post-processing lane
// once the last product of that column has committed. Column c completes
// 2N-1+c data cycles after the clear.
func (c *Comp) latchFinalColumns(sig controller.Signals) {
	if !sig.ArrayEn {
		return
	}

	n := c.cfg.ArraySize
	for col := 0; col < n; col++ {
		if c.latched[col] || c.runCycle < 2*n-1+col {
			continue
		}

		c.bank.Latch(col, c.arr.ColumnAcc(col))
		c.latched[col] = true
	}
}

func (c *Comp) clearRunState() {
	c.bank.Reset()
	c.loadCount = 0
	c.runCycle = 0
	c.storeCol = 0
	c.storeDone = false
	for i := range c.latched {
		c.latched[i] = false
	}
}
