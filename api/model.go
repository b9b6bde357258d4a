package api

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/npusim/npu"
	"github.com/sarchlab/npusim/sram"
)

// Driver memory layout used by compiled models. Weight matrices are packed
// from WeightBase; activations ping-pong between the two buffers so that
// each layer reads the previous layer's output.
const (
	WeightBase = 0x000
	ActBufA    = 0x100
	ActBufB    = 0x200
)

// A Layer is one fully connected stage of a model.
type Layer struct {
	Weights   [][]int8 `yaml:"weights"`
	Shift     uint     `yaml:"shift"`
	ZeroPoint int      `yaml:"zeroPoint"`
	Relu      bool     `yaml:"relu"`
}

// A Model is a sequence of layers that runs on one device.
type Model struct {
	Name   string  `yaml:"name"`
	Layers []Layer `yaml:"layers"`
}

// LoadModelFile reads a model description from a YAML file.
func LoadModelFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	m := &Model{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("model file %s: %w", path, err)
	}

	return m, nil
}

// Validate checks that every layer matches the device geometry.
func (m *Model) Validate(cfg npu.Config) error {
	n := cfg.ArraySize

	for i, layer := range m.Layers {
		if len(layer.Weights) != n {
			return fmt.Errorf("layer %d: %d weight rows, want %d",
				i, len(layer.Weights), n)
		}
		for k, row := range layer.Weights {
			if len(row) != n {
				return fmt.Errorf("layer %d row %d: %d columns, want %d",
					i, k, len(row), n)
			}
		}
	}

	if WeightBase+len(m.Layers)*n*n > ActBufA {
		return fmt.Errorf("%d layers do not fit the weight region", len(m.Layers))
	}

	return nil
}

// WriteWeights packs every layer's weight matrix row-major into driver
// memory, layer i at WeightBase + i*N*N.
func (m *Model) WriteWeights(mem *sram.Memory, cfg npu.Config) {
	n := cfg.ArraySize

	for i, layer := range m.Layers {
		for k, row := range layer.Weights {
			mem.WriteBlock(WeightBase+i*n*n+k*n, row)
		}
	}
}

// Compile emits the program that runs the model on rows activation
// vectors. The input batch must be stored at ActBufA before Run.
func (m *Model) Compile(cfg npu.Config, rows int) (Program, error) {
	if err := m.Validate(cfg); err != nil {
		return nil, err
	}

	n := cfg.ArraySize
	prog := Program{}
	src, dst := ActBufA, ActBufB

	for i, layer := range m.Layers {
		prog = append(prog,
			LoadWeights{Addr: WeightBase + i*n*n},
			MatMul{
				Src:  src,
				Dst:  dst,
				Rows: rows,
				Requant: npu.RequantParams{
					Shift:     layer.Shift,
					ZeroPoint: layer.ZeroPoint,
					ReluEn:    layer.Relu,
				},
			})
		src, dst = dst, src
	}

	prog = append(prog, Halt{})

	return prog, nil
}

// OutputAddr returns the buffer the final layer writes to.
func (m *Model) OutputAddr() int {
	if len(m.Layers)%2 == 1 {
		return ActBufB
	}
	return ActBufA
}
