// Package sram models the unified on-chip scratchpad of the NPU. Contents
// are read and written as Verilog-style hex images so that fixtures can be
// shared with RTL testbenches.
package sram

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const tokensPerLine = 16

// Memory is a byte-addressed scratchpad of signed elements.
type Memory struct {
	cells []int8
}

// NewMemory builds a scratchpad with the given depth.
func NewMemory(depth int) *Memory {
	return &Memory{cells: make([]int8, depth)}
}

// Depth returns the number of cells.
func (m *Memory) Depth() int {
	return len(m.cells)
}

// Read returns the cell at addr.
func (m *Memory) Read(addr int) int8 {
	m.mustContain(addr, 1)
	return m.cells[addr]
}

// Write stores v at addr.
func (m *Memory) Write(addr int, v int8) {
	m.mustContain(addr, 1)
	m.cells[addr] = v
}

// ReadBlock returns a copy of n cells starting at addr.
func (m *Memory) ReadBlock(addr, n int) []int8 {
	m.mustContain(addr, n)

	block := make([]int8, n)
	copy(block, m.cells[addr:addr+n])

	return block
}

// WriteBlock stores data starting at addr.
func (m *Memory) WriteBlock(addr int, data []int8) {
	m.mustContain(addr, len(data))
	copy(m.cells[addr:], data)
}

// Clear zeroes the whole scratchpad.
func (m *Memory) Clear() {
	for i := range m.cells {
		m.cells[i] = 0
	}
}

func (m *Memory) mustContain(addr, n int) {
	if addr < 0 || addr+n > len(m.cells) {
		panic(fmt.Sprintf("sram access [%d, %d) outside depth %d",
			addr, addr+n, len(m.cells)))
	}
}

// LoadHexString fills the scratchpad from a $readmemh-style image: one hex
// byte per whitespace-separated token, loaded from address 0. Lines may
// carry // comments.
func (m *Memory) LoadHexString(s string) error {
	addr := 0
	for _, line := range strings.Split(s, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}

		for _, tok := range strings.Fields(line) {
			v, err := strconv.ParseUint(tok, 16, 8)
			if err != nil {
				return fmt.Errorf("hex image token %q: %w", tok, err)
			}

			if addr >= len(m.cells) {
				return fmt.Errorf(
					"hex image longer than scratchpad depth %d", len(m.cells))
			}

			m.cells[addr] = int8(v)
			addr++
		}
	}

	return nil
}

// DumpHex renders the full scratchpad as a $readmemh-style image with 16
// bytes per line.
func (m *Memory) DumpHex() string {
	var b strings.Builder

	for i, v := range m.cells {
		if i > 0 {
			if i%tokensPerLine == 0 {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		fmt.Fprintf(&b, "%02X", uint8(v))
	}
	b.WriteByte('\n')

	return b.String()
}

// LoadHexFile fills the scratchpad from a hex image on disk.
func (m *Memory) LoadHexFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return m.LoadHexString(string(data))
}

// DumpHexFile writes the scratchpad image to disk.
func (m *Memory) DumpHexFile(path string) error {
	return os.WriteFile(path, []byte(m.DumpHex()), 0644)
}
