package npu

// Config carries the instantiation-time parameters of the accelerator.
type Config struct {
	// ArraySize is the systolic grid dimension (ArraySize x ArraySize PEs).
	ArraySize int

	// DataWidth is the element bit width. Stream payloads and PPU outputs
	// are signed DataWidth-bit values.
	DataWidth int

	// AccWidth is the accumulator bit width. It must cover ArraySize
	// sequential DataWidth x DataWidth products without overflow.
	AccWidth int

	// LoadBeats is the number of stream beats consumed during LOAD. One run
	// carries a full weight matrix followed by one activation vector.
	LoadBeats int

	// Requant is the default post-processing configuration. The driver may
	// replace it between runs.
	Requant RequantParams
}

// DefaultConfig returns the configuration of the reference 4x4 INT8 device.
func DefaultConfig() Config {
	cfg := Config{
		ArraySize: 4,
		DataWidth: 8,
		AccWidth:  24,
	}
	cfg.LoadBeats = cfg.ArraySize*cfg.ArraySize + cfg.ArraySize

	return cfg
}

// MinAccWidth returns the narrowest accumulator that holds n sequential
// products of two dataWidth-bit signed operands.
func MinAccWidth(arraySize, dataWidth int) int {
	return 2*dataWidth + ceilLog2(arraySize)
}

// Validate checks the configuration. An invalid geometry is a fatal
// configuration error and must abort construction.
func (c Config) Validate() error {
	if c.ArraySize <= 0 {
		return &ConfigError{
			Field:  "ArraySize",
			Reason: "must be positive",
		}
	}

	if c.DataWidth <= 1 || c.DataWidth > 8 {
		return &ConfigError{
			Field:  "DataWidth",
			Reason: "must be between 2 and 8 bits",
		}
	}

	if min := MinAccWidth(c.ArraySize, c.DataWidth); c.AccWidth < min {
		return &ConfigError{
			Field: "AccWidth",
			Reason: "insufficient for the configured array: " +
				"ArraySize sequential products do not fit",
		}
	}

	if c.AccWidth > 63 {
		return &ConfigError{
			Field:  "AccWidth",
			Reason: "wider than the simulator accumulator word",
		}
	}

	if c.LoadBeats < c.ArraySize*c.ArraySize+c.ArraySize {
		return &ConfigError{
			Field:  "LoadBeats",
			Reason: "one run carries a full weight matrix and one activation vector",
		}
	}

	return nil
}

// ElemMin returns the smallest representable element value.
func (c Config) ElemMin() int {
	return -(1 << (c.DataWidth - 1))
}

// ElemMax returns the largest representable element value.
func (c Config) ElemMax() int {
	return 1<<(c.DataWidth-1) - 1
}

// AccLimit returns the exclusive magnitude bound of the accumulator.
func (c Config) AccLimit() int64 {
	return int64(1) << (c.AccWidth - 1)
}

func ceilLog2(n int) int {
	bits := 0
	for v := n - 1; v > 0; v >>= 1 {
		bits++
	}
	return bits
}
