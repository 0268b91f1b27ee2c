package pipeline

import "slices"

// State 表示一次转换运行所处的阶段
type State int

const (
	StateIdle State = iota
	StateAnalyzing
	StateSynthesizing
	StateMerging
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateAnalyzing:
		return "Analyzing"
	case StateSynthesizing:
		return "Synthesizing"
	case StateMerging:
		return "Merging"
	case StateDone:
		return "Done"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// StateMachine 运行状态机。Done与Failed为终态，不再接受任何迁移。
type StateMachine struct {
	current State
}

func NewStateMachine() *StateMachine {
	return &StateMachine{current: StateIdle}
}

// CanTransition 检查能否从当前状态迁移到目标状态
func (sm *StateMachine) CanTransition(to State) bool {
	validTransitions := map[State][]State{
		StateIdle:         {StateAnalyzing, StateFailed},
		StateAnalyzing:    {StateSynthesizing, StateFailed},
		StateSynthesizing: {StateMerging, StateFailed},
		StateMerging:      {StateDone, StateFailed},
	}

	validTo, ok := validTransitions[sm.current]
	if !ok {
		return false
	}
	return slices.Contains(validTo, to)
}

// Transition 执行状态迁移，非法迁移返回false且状态不变
func (sm *StateMachine) Transition(to State) bool {
	if !sm.CanTransition(to) {
		return false
	}
	sm.current = to
	return true
}

// Current 返回当前状态
func (sm *StateMachine) Current() State {
	return sm.current
}
