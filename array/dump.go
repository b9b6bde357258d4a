package array

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
)

// StateTable renders the accumulator grid for debugging output.
func (a *SystolicArray) StateTable() string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Accumulators (%dx%d)", a.n, a.n))

	header := table.Row{""}
	for c := 0; c < a.n; c++ {
		header = append(header, fmt.Sprintf("Col%d", c))
	}
	t.AppendHeader(header)

	for r := 0; r < a.n; r++ {
		row := table.Row{fmt.Sprintf("Row%d", r)}
		for c := 0; c < a.n; c++ {
			row = append(row, a.pes[r][c].Acc())
		}
		t.AppendRow(row)
	}

	return t.Render()
}
