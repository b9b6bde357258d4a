package array

// SystolicArray is an n x n output-stationary grid. Activations stream in
// from the west edge and weights from the north edge, each row and column
// skewed by its own index so that matching operands meet inside the grid.
// Results stay in the per-PE accumulators and are read from the south row.
type SystolicArray struct {
	n        int
	accLimit int64
	accWidth int

	pes [][]*PE

	westFeed  []feeder
	northFeed []feeder
}

// feeder replays one edge stream with its skew delay. An exhausted feeder
// keeps producing zeros, which leave the accumulators untouched.
type feeder struct {
	delay int
	data  []int8
	pos   int
}

func (f *feeder) next() int8 {
	if f.delay > 0 {
		f.delay--
		return 0
	}

	if f.pos >= len(f.data) {
		return 0
	}

	v := f.data[f.pos]
	f.pos++

	return v
}

// NewSystolicArray builds an empty size x size grid.
func NewSystolicArray(size, accWidth int) *SystolicArray {
	a := &SystolicArray{
		n:        size,
		accLimit: int64(1) << (accWidth - 1),
		accWidth: accWidth,
	}

	a.pes = make([][]*PE, size)
	for r := 0; r < size; r++ {
		a.pes[r] = make([]*PE, size)
		for c := 0; c < size; c++ {
			a.pes[r][c] = &PE{row: r, col: c}
		}
	}

	a.westFeed = make([]feeder, size)
	a.northFeed = make([]feeder, size)

	return a
}

// Size returns the grid dimension.
func (a *SystolicArray) Size() int {
	return a.n
}

// LoadSchedule arms the edge feeders for one run. westRows[r] is the
// activation stream for row r and northCols[c] the weight stream for column
// c; the skew of row r and column c is applied here so that the caller
// hands over plain vectors.
func (a *SystolicArray) LoadSchedule(westRows, northCols [][]int8) {
	for r := 0; r < a.n; r++ {
		a.westFeed[r] = feeder{delay: r, data: westRows[r]}
	}
	for c := 0; c < a.n; c++ {
		a.northFeed[c] = feeder{delay: c, data: northCols[c]}
	}
}

// Cycle advances the grid by one clock. With clear asserted every
// accumulator is zeroed and the feeders are left untouched, so injection
// begins on the following cycle. Every next-state value is computed from
// the current registers before anything latches.
func (a *SystolicArray) Cycle(en, clear bool) error {
	if !en {
		return nil
	}

	var firstErr error

	for r := 0; r < a.n; r++ {
		for c := 0; c < a.n; c++ {
			west := a.westIn(r, c, clear)
			north := a.northIn(r, c, clear)

			err := a.pes[r][c].stage(
				west, north, true, clear, a.accLimit, a.accWidth)
			if err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}

	if firstErr != nil {
		return firstErr
	}

	for r := 0; r < a.n; r++ {
		for c := 0; c < a.n; c++ {
			a.pes[r][c].commit()
		}
	}

	return nil
}

func (a *SystolicArray) westIn(r, c int, clear bool) int8 {
	if c > 0 {
		return a.pes[r][c-1].EastOut()
	}
	if clear {
		return 0
	}
	return a.westFeed[r].next()
}

func (a *SystolicArray) northIn(r, c int, clear bool) int8 {
	if r > 0 {
		return a.pes[r-1][c].SouthOut()
	}
	if clear {
		return 0
	}
	return a.northFeed[c].next()
}

// ColumnAcc returns the accumulator of the south-row element of column c,
// where one dot product completes.
func (a *SystolicArray) ColumnAcc(c int) int64 {
	return a.pes[a.n-1][c].Acc()
}

// Accumulators returns a snapshot of the full accumulator grid.
func (a *SystolicArray) Accumulators() [][]int64 {
	grid := make([][]int64, a.n)
	for r := 0; r < a.n; r++ {
		grid[r] = make([]int64, a.n)
		for c := 0; c < a.n; c++ {
			grid[r][c] = a.pes[r][c].Acc()
		}
	}

	return grid
}

// Reset returns the grid to the power-on state.
func (a *SystolicArray) Reset() {
	for r := 0; r < a.n; r++ {
		for c := 0; c < a.n; c++ {
			a.pes[r][c].reset()
		}
		a.westFeed[r] = feeder{}
		a.northFeed[r] = feeder{}
	}
}
