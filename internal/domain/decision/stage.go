package decision

import (
	"fmt"
	"strconv"
	"strings"
)

// Stage is the ordinal position of a decision in the guided workflow.
type Stage int

const (
	StageDeconstruct Stage = iota + 1
	StageScenarios
	StageBiasCheck
	StageSecondOrder
	StageLock
	StageComplete
)

var stageNames = map[Stage]string{
	StageDeconstruct: "deconstruct",
	StageScenarios:   "scenarios",
	StageBiasCheck:   "bias_check",
	StageSecondOrder: "second_order",
	StageLock:        "lock",
	StageComplete:    "complete",
}

func (s Stage) Valid() bool {
	return s >= StageDeconstruct && s <= StageComplete
}

// Next is the following stage; Complete is its own successor.
func (s Stage) Next() Stage {
	if s >= StageComplete {
		return StageComplete
	}
	return s + 1
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "stage(" + strconv.Itoa(int(s)) + ")"
}

// ParseStage accepts either the stage name or its ordinal.
func ParseStage(raw string) (Stage, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if n, err := strconv.Atoi(raw); err == nil {
		s := Stage(n)
		if !s.Valid() {
			return 0, fmt.Errorf("unknown stage %d", n)
		}
		return s, nil
	}
	raw = strings.ReplaceAll(raw, "-", "_")
	for s, name := range stageNames {
		if name == raw {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", raw)
}
