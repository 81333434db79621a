package domain

// RunState is a step in the per-task orchestration lifecycle.
//
//	Planned → Clarified | SkipClarify
//	Clarified, SkipClarify → BaselineVerified
//	BaselineVerified → ClarifiedVerified
//	ClarifiedVerified → Reported
type RunState string

const (
	RunStatePending           RunState = "pending"
	RunStatePlanned           RunState = "planned"
	RunStateClarified         RunState = "clarified"
	RunStateSkipClarify       RunState = "skip_clarify"
	RunStateBaselineVerified  RunState = "baseline_verified"
	RunStateClarifiedVerified RunState = "clarified_verified"
	RunStateReported          RunState = "reported"
)

//nolint:gochecknoglobals // read-only lookup table
var validRunTransitions = map[RunState][]RunState{
	RunStatePending:           {RunStatePlanned},
	RunStatePlanned:           {RunStateClarified, RunStateSkipClarify},
	RunStateClarified:         {RunStateBaselineVerified},
	RunStateSkipClarify:       {RunStateBaselineVerified},
	RunStateBaselineVerified:  {RunStateClarifiedVerified},
	RunStateClarifiedVerified: {RunStateReported},
}

// CanTransition reports whether the lifecycle allows moving from s to next.
func (s RunState) CanTransition(next RunState) bool {
	for _, allowed := range validRunTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition exists.
func (s RunState) IsTerminal() bool {
	return len(validRunTransitions[s]) == 0
}
