package array

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/npusim/npu"
)

var _ = Describe("PE", func() {
	var pe *PE

	BeforeEach(func() {
		pe = &PE{row: 1, col: 2}
	})

	step := func(west, north int8, en, clear bool) error {
		err := pe.stage(west, north, en, clear, 1<<23, 24)
		if err == nil {
			pe.commit()
		}
		return err
	}

	It("should accumulate products", func() {
		Expect(step(3, 4, true, false)).To(Succeed())
		Expect(step(-2, 5, true, false)).To(Succeed())

		Expect(pe.Acc()).To(Equal(int64(2)))
	})

	It("should forward operands with one cycle of delay", func() {
		Expect(step(7, -9, true, false)).To(Succeed())

		Expect(pe.EastOut()).To(Equal(int8(7)))
		Expect(pe.SouthOut()).To(Equal(int8(-9)))

		Expect(step(1, 1, true, false)).To(Succeed())

		Expect(pe.EastOut()).To(Equal(int8(1)))
		Expect(pe.SouthOut()).To(Equal(int8(1)))
	})

	It("should give clear priority over the MAC", func() {
		Expect(step(3, 4, true, false)).To(Succeed())
		Expect(step(5, 6, true, true)).To(Succeed())

		Expect(pe.Acc()).To(Equal(int64(0)))
		Expect(pe.EastOut()).To(Equal(int8(5)))
	})

	It("should hold all state when not enabled", func() {
		Expect(step(3, 4, true, false)).To(Succeed())
		Expect(step(9, 9, false, false)).To(Succeed())

		Expect(pe.Acc()).To(Equal(int64(12)))
		Expect(pe.EastOut()).To(Equal(int8(3)))
		Expect(pe.SouthOut()).To(Equal(int8(4)))
	})

	It("should report accumulator overflow", func() {
		err := pe.stage(100, 100, true, false, 8192, 14)

		Expect(err).To(HaveOccurred())

		var ovf *npu.OverflowError
		Expect(errors.As(err, &ovf)).To(BeTrue())
		Expect(ovf.Row).To(Equal(1))
		Expect(ovf.Col).To(Equal(2))
	})
})

var _ = Describe("SystolicArray", func() {
	run := func(a *SystolicArray, cycles int) {
		ExpectWithOffset(1, a.Cycle(true, true)).To(Succeed())
		for i := 0; i < cycles; i++ {
			ExpectWithOffset(1, a.Cycle(true, false)).To(Succeed())
		}
	}

	broadcast := func(vec []int8, n int) [][]int8 {
		rows := make([][]int8, n)
		for r := range rows {
			rows[r] = vec
		}
		return rows
	}

	columns := func(w [][]int8) [][]int8 {
		n := len(w)
		cols := make([][]int8, n)
		for c := 0; c < n; c++ {
			cols[c] = make([]int8, n)
			for k := 0; k < n; k++ {
				cols[c][k] = w[k][c]
			}
		}
		return cols
	}

	It("should compute a 2x2 vector-matrix product at the south row", func() {
		a := NewSystolicArray(2, 24)
		vec := []int8{1, 2}
		w := [][]int8{{3, 4}, {5, 6}}

		a.LoadSchedule(broadcast(vec, 2), columns(w))
		run(a, 2*2-1)

		Expect(a.ColumnAcc(0)).To(Equal(int64(13)))

		Expect(a.Cycle(true, false)).To(Succeed())
		Expect(a.ColumnAcc(1)).To(Equal(int64(16)))
	})

	It("should compute a 4x4 vector-matrix product", func() {
		a := NewSystolicArray(4, 24)
		vec := []int8{1, -2, 3, -4}
		w := [][]int8{
			{1, 2, 3, 4},
			{5, 6, 7, 8},
			{-1, -2, -3, -4},
			{9, 10, 11, 12},
		}

		a.LoadSchedule(broadcast(vec, 4), columns(w))
		run(a, 2*4-1+3)

		for c := 0; c < 4; c++ {
			want := int64(0)
			for k := 0; k < 4; k++ {
				want += int64(vec[k]) * int64(w[k][c])
			}
			Expect(a.ColumnAcc(c)).To(Equal(want))
		}
	})

	It("should select one column with a one-hot weight matrix", func() {
		a := NewSystolicArray(4, 24)
		vec := []int8{5, 0, 0, 0}
		w := [][]int8{
			{1, 0, 0, 0},
			{0, 0, 0, 0},
			{0, 0, 0, 0},
			{0, 0, 0, 0},
		}

		a.LoadSchedule(broadcast(vec, 4), columns(w))
		run(a, 2*4-1+3)

		Expect(a.ColumnAcc(0)).To(Equal(int64(5)))
		Expect(a.ColumnAcc(1)).To(Equal(int64(0)))
		Expect(a.ColumnAcc(2)).To(Equal(int64(0)))
		Expect(a.ColumnAcc(3)).To(Equal(int64(0)))
	})

	It("should hold results once the feeders are exhausted", func() {
		a := NewSystolicArray(2, 24)
		vec := []int8{1, 2}
		w := [][]int8{{3, 4}, {5, 6}}

		a.LoadSchedule(broadcast(vec, 2), columns(w))
		run(a, 2*2)

		before := a.Accumulators()
		for i := 0; i < 10; i++ {
			Expect(a.Cycle(true, false)).To(Succeed())
		}

		Expect(a.Accumulators()).To(Equal(before))
	})

	It("should produce identical results on identical runs", func() {
		a := NewSystolicArray(4, 24)
		vec := []int8{7, -3, 2, 1}
		w := [][]int8{
			{1, 1, 1, 1},
			{2, 2, 2, 2},
			{3, 3, 3, 3},
			{4, 4, 4, 4},
		}

		a.LoadSchedule(broadcast(vec, 4), columns(w))
		run(a, 2*4+2)
		first := a.Accumulators()

		a.Reset()
		a.LoadSchedule(broadcast(vec, 4), columns(w))
		run(a, 2*4+2)

		Expect(a.Accumulators()).To(Equal(first))
	})

	It("should zero every accumulator on clear", func() {
		a := NewSystolicArray(2, 24)
		a.LoadSchedule(broadcast([]int8{1, 2}, 2), broadcast([]int8{3, 4}, 2))
		run(a, 4)

		Expect(a.Cycle(true, true)).To(Succeed())

		for _, row := range a.Accumulators() {
			for _, acc := range row {
				Expect(acc).To(Equal(int64(0)))
			}
		}
	})

	It("should do nothing when not enabled", func() {
		a := NewSystolicArray(2, 24)
		a.LoadSchedule(broadcast([]int8{1, 2}, 2), broadcast([]int8{3, 4}, 2))
		run(a, 4)

		before := a.Accumulators()
		Expect(a.Cycle(false, false)).To(Succeed())

		Expect(a.Accumulators()).To(Equal(before))
	})
})
