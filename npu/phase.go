package npu

// Phase is the state of the global controller.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoad
	PhaseCompute
	PhaseDrain
	PhaseStore
)

// Name returns the name of the phase.
func (p Phase) Name() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseLoad:
		return "LOAD"
	case PhaseCompute:
		return "COMPUTE"
	case PhaseDrain:
		return "DRAIN"
	case PhaseStore:
		return "STORE"
	default:
		panic("invalid phase")
	}
}
