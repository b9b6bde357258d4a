package npu

import "fmt"

// ConfigError reports an instantiation-time parameter that the hardware
// could not be built with. It aborts construction.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("npu config: %s %s", e.Field, e.Reason)
}

// ProtocolError reports a host programming mistake: an unrecognized opcode
// or a start pulse while a run is in flight. The device state is untouched
// and the host may re-issue.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("npu protocol: %s", e.Reason)
}

// OverflowError reports an accumulator that left the configured width
// during a MAC. With a validated configuration this indicates a modeling
// bug and is fatal; the value is never silently wrapped.
type OverflowError struct {
	Row, Col int
	Acc      int64
	AccWidth int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf(
		"npu overflow: PE(%d,%d) accumulator %d exceeds %d bits",
		e.Row, e.Col, e.Acc, e.AccWidth)
}
