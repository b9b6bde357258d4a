// Package api defines the host driver API for the NPU.
package api

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/akita/v4/sim/directconnection"

	"github.com/sarchlab/npusim/npu"
	"github.com/sarchlab/npusim/sram"
)

// Driver provides the interface to control an accelerator.
type Driver interface {
	// RegisterDevice registers a device to the driver. The driver will
	// establish a connection to the device.
	RegisterDevice(device npu.Device)

	// Memory returns the driver-side memory that programs read their
	// operands from and write their results to.
	Memory() *sram.Memory

	// Submit queues a program for execution.
	Submit(prog Program)

	// Run executes the submitted program to completion.
	Run() error
}

type driverImpl struct {
	*sim.TickingComponent

	device npu.Device
	port   npu.Port
	mem    *sram.Memory

	prog       Program
	pc         int
	weightBase int

	inFlight  bool
	row       int
	collected int
	curMatMul MatMul
	sendQueue []int8
	halted    bool
	progErr   error
}

// Tick runs the driver for one cycle.
func (d *driverImpl) Tick() (madeProgress bool) {
	madeProgress = d.doSend() || madeProgress
	madeProgress = d.doCollect() || madeProgress
	madeProgress = d.progressProgram() || madeProgress

	return madeProgress
}

// doSend streams one queued beat to the device.
func (d *driverImpl) doSend() bool {
	if len(d.sendQueue) == 0 {
		return false
	}

	msg := npu.StreamMsgBuilder{}.
		WithSrc(d.port.AsRemote()).
		WithDst(d.device.DataIn().AsRemote()).
		WithData(d.sendQueue[0]).
		WithLast(len(d.sendQueue) == 1).
		Build()

	if err := d.port.Send(msg); err != nil {
		return false
	}

	d.sendQueue = d.sendQueue[1:]

	return true
}

// doCollect drains result beats into driver memory.
func (d *driverImpl) doCollect() bool {
	madeProgress := false

	for {
		item := d.port.RetrieveIncoming()
		if item == nil {
			return madeProgress
		}

		msg := item.(*npu.StreamMsg)
		n := d.device.Config().ArraySize
		addr := d.curMatMul.Dst + d.row*n + d.collected
		d.mem.Write(addr, msg.Data)
		d.collected++

		if msg.Last {
			d.collected = 0
			d.row++
			d.inFlight = false
		}

		madeProgress = true
	}
}

// progressProgram executes instructions until one has to wait for the
// device.
func (d *driverImpl) progressProgram() bool {
	if d.halted || d.progErr != nil {
		return false
	}
	if d.inFlight || len(d.sendQueue) > 0 {
		return false
	}
	if d.pc >= len(d.prog) {
		return false
	}

	switch instr := d.prog[d.pc].(type) {
	case LoadWeights:
		d.weightBase = instr.Addr
		d.pc++
	case MatMul:
		d.execMatMul(instr)
	case Halt:
		d.halted = true
		npu.Trace("ProgramHalt", "Driver", d.Name())
	default:
		d.progErr = fmt.Errorf("unknown instruction %s", d.prog[d.pc].Name())
	}

	return true
}

// execMatMul starts one device run for the next activation row.
func (d *driverImpl) execMatMul(instr MatMul) {
	if d.row >= instr.Rows {
		d.row = 0
		d.pc++
		return
	}

	d.curMatMul = instr
	d.device.SetRequant(instr.Requant)
	d.device.SetOpcode(npu.OpcodeMatVec)
	d.device.Start()

	if err := d.device.StatusErr(); err != nil {
		d.progErr = err
		return
	}

	n := d.device.Config().ArraySize
	d.sendQueue = append(
		d.mem.ReadBlock(d.weightBase, n*n),
		d.mem.ReadBlock(instr.Src+d.row*n, n)...)
	d.inFlight = true

	npu.Trace("RunIssued",
		"Driver", d.Name(),
		"Row", d.row,
		"Src", instr.Src,
		"Dst", instr.Dst,
	)
}

// RegisterDevice registers a device to the driver. The driver will
// establish a connection to the device.
func (d *driverImpl) RegisterDevice(device npu.Device) {
	d.device = device

	conn := directconnection.MakeBuilder().
		WithEngine(d.Engine).
		WithFreq(d.Freq).
		Build(d.Name() + ".Conn")
	conn.PlugIn(d.port)
	conn.PlugIn(device.DataIn())
	conn.PlugIn(device.DataOut())
}

// Memory returns the driver-side memory.
func (d *driverImpl) Memory() *sram.Memory {
	return d.mem
}

// Submit queues a program for execution.
func (d *driverImpl) Submit(prog Program) {
	d.prog = prog
	d.pc = 0
	d.row = 0
	d.halted = false
	d.progErr = nil
}

// Run executes the submitted program to completion.
func (d *driverImpl) Run() error {
	d.TickLater()

	if err := d.Engine.Run(); err != nil {
		return err
	}

	if err := d.device.Fault(); err != nil {
		return err
	}
	if d.progErr != nil {
		return d.progErr
	}
	if !d.halted {
		return fmt.Errorf("program stopped before HALT at pc %d", d.pc)
	}

	return nil
}
