package api

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/npusim/npu"
	"github.com/sarchlab/npusim/sram"
)

func identityLayer(n int) Layer {
	w := make([][]int8, n)
	for i := range w {
		w[i] = make([]int8, n)
		w[i][i] = 1
	}
	return Layer{Weights: w}
}

var _ = Describe("Model", func() {
	cfg := npu.DefaultConfig()

	It("should compile layers with ping-pong activation buffers", func() {
		m := &Model{
			Name:   "mlp",
			Layers: []Layer{identityLayer(4), identityLayer(4)},
		}

		prog, err := m.Compile(cfg, 3)
		Expect(err).ToNot(HaveOccurred())
		Expect(prog).To(HaveLen(5))

		Expect(prog[0]).To(Equal(LoadWeights{Addr: WeightBase}))

		mm0 := prog[1].(MatMul)
		Expect(mm0.Src).To(Equal(ActBufA))
		Expect(mm0.Dst).To(Equal(ActBufB))
		Expect(mm0.Rows).To(Equal(3))

		Expect(prog[2]).To(Equal(LoadWeights{Addr: WeightBase + 16}))

		mm1 := prog[3].(MatMul)
		Expect(mm1.Src).To(Equal(ActBufB))
		Expect(mm1.Dst).To(Equal(ActBufA))

		Expect(prog[4]).To(Equal(Halt{}))
		Expect(m.OutputAddr()).To(Equal(ActBufA))
	})

	It("should carry the requantization parameters of each layer", func() {
		layer := identityLayer(4)
		layer.Shift = 3
		layer.ZeroPoint = -5
		layer.Relu = true
		m := &Model{Layers: []Layer{layer}}

		prog, err := m.Compile(cfg, 1)
		Expect(err).ToNot(HaveOccurred())

		mm := prog[1].(MatMul)
		Expect(mm.Requant).To(Equal(npu.RequantParams{
			Shift: 3, ZeroPoint: -5, ReluEn: true,
		}))
		Expect(m.OutputAddr()).To(Equal(ActBufB))
	})

	It("should reject layers that do not match the array", func() {
		m := &Model{Layers: []Layer{identityLayer(3)}}

		_, err := m.Compile(cfg, 1)
		Expect(err).To(HaveOccurred())
	})

	It("should pack weights layer by layer", func() {
		l0 := identityLayer(4)
		l1 := identityLayer(4)
		l1.Weights[0][0] = 9
		m := &Model{Layers: []Layer{l0, l1}}

		mem := sram.NewMemory(1024)
		m.WriteWeights(mem, cfg)

		Expect(mem.Read(WeightBase)).To(Equal(int8(1)))
		Expect(mem.Read(WeightBase + 5)).To(Equal(int8(1)))
		Expect(mem.Read(WeightBase + 16)).To(Equal(int8(9)))
	})

	It("should load a model from YAML", func() {
		text := `
name: tiny
layers:
  - weights:
      - [1, 0, 0, 0]
      - [0, 1, 0, 0]
      - [0, 0, 1, 0]
      - [0, 0, 0, 1]
    shift: 2
    zeroPoint: 1
    relu: true
`
		path := filepath.Join(GinkgoT().TempDir(), "model.yaml")
		Expect(os.WriteFile(path, []byte(text), 0644)).To(Succeed())

		m, err := LoadModelFile(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(m.Name).To(Equal("tiny"))
		Expect(m.Layers).To(HaveLen(1))
		Expect(m.Layers[0].Shift).To(Equal(uint(2)))
		Expect(m.Layers[0].ZeroPoint).To(Equal(1))
		Expect(m.Layers[0].Relu).To(BeTrue())
		Expect(m.Layers[0].Weights[2][2]).To(Equal(int8(1)))
	})
})
