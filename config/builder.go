package config

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/npusim/array"
	"github.com/sarchlab/npusim/controller"
	"github.com/sarchlab/npusim/npu"
	"github.com/sarchlab/npusim/ppu"
	"github.com/sarchlab/npusim/sram"
)

// NPUBuilder can create NPU devices.
type NPUBuilder struct {
	engine sim.Engine
	freq   sim.Freq
	cfg    npu.Config
}

// NewNPUBuilder returns a builder with the reference configuration.
func NewNPUBuilder() NPUBuilder {
	return NPUBuilder{
		freq: 1 * sim.GHz,
		cfg:  npu.DefaultConfig(),
	}
}

// WithEngine sets the engine.
func (b NPUBuilder) WithEngine(engine sim.Engine) NPUBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the device.
func (b NPUBuilder) WithFreq(freq sim.Freq) NPUBuilder {
	b.freq = freq
	return b
}

// WithConfig replaces the whole device configuration.
func (b NPUBuilder) WithConfig(cfg npu.Config) NPUBuilder {
	b.cfg = cfg
	return b
}

// WithArraySize sets the systolic grid dimension and the matching load
// length for one weight matrix plus one activation vector.
func (b NPUBuilder) WithArraySize(n int) NPUBuilder {
	b.cfg.ArraySize = n
	b.cfg.LoadBeats = n*n + n
	return b
}

// WithAccWidth sets the accumulator bit width.
func (b NPUBuilder) WithAccWidth(bits int) NPUBuilder {
	b.cfg.AccWidth = bits
	return b
}

// WithRequant sets the initial post-processing registers.
func (b NPUBuilder) WithRequant(p npu.RequantParams) NPUBuilder {
	b.cfg.Requant = p
	return b
}

// Build creates a device. An invalid configuration aborts construction.
func (b NPUBuilder) Build(name string) (*Comp, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Comp{cfg: b.cfg}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	c.dataIn = npu.NewStreamPort(c, b.cfg.LoadBeats, 1, name+".DataIn")
	c.dataOut = npu.NewStreamPort(c, 1, b.cfg.ArraySize, name+".DataOut")
	c.AddPort("DataIn", c.dataIn)
	c.AddPort("DataOut", c.dataOut)

	c.ctrl = controller.NewController(b.cfg.ArraySize, b.cfg.LoadBeats)
	c.arr = array.NewSystolicArray(b.cfg.ArraySize, b.cfg.AccWidth)
	c.bank = ppu.NewBank(b.cfg.ArraySize, b.cfg.ElemMin(), b.cfg.ElemMax())
	c.bank.SetParams(b.cfg.Requant)
	c.mem = sram.NewMemory(b.cfg.LoadBeats)
	c.latched = make([]bool, b.cfg.ArraySize)

	return c, nil
}
