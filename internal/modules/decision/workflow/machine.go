package workflow

import (
	"strings"
	"time"

	types "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/domain"
)

// View names the screen a client should show for a decision.
type View string

const (
	ViewDeconstruct View = "deconstruct"
	ViewScenarios   View = "scenarios"
	ViewBiasCheck   View = "bias_check"
	ViewSecondOrder View = "second_order"
	ViewLock        View = "lock"
	ViewComplete    View = "complete"
	ViewDashboard   View = "dashboard"
)

var stageViews = map[types.Stage]View{
	types.StageDeconstruct: ViewDeconstruct,
	types.StageScenarios:   ViewScenarios,
	types.StageBiasCheck:   ViewBiasCheck,
	types.StageSecondOrder: ViewSecondOrder,
	types.StageLock:        ViewLock,
	types.StageComplete:    ViewComplete,
}

// Render selects the view for a decision. A locked decision always renders
// as complete; an unrecognised stage falls back to the dashboard.
func Render(stage types.Stage, locked bool) View {
	if locked {
		return ViewComplete
	}
	if v, ok := stageViews[stage]; ok {
		return v
	}
	return ViewDashboard
}

// Assignment sets one input field. A nil Value clears it.
type Assignment struct {
	Field Field
	Value *string
}

// ApplyAssignments validates and merges assignments into d. d is only
// modified when every assignment is acceptable.
func ApplyAssignments(d *types.Decision, assignments []Assignment) error {
	if d.IsLocked {
		return ErrLocked
	}
	var (
		unknown  []string
		tooEarly []string
		badEnum  []string
	)
	normalized := make([]Assignment, 0, len(assignments))
	for _, a := range assignments {
		def, ok := inputs[a.Field]
		if !ok {
			unknown = append(unknown, string(a.Field))
			continue
		}
		if def.stage > d.Stage {
			tooEarly = append(tooEarly, string(a.Field))
			continue
		}
		val := a.Value
		if val != nil {
			trimmed := strings.TrimSpace(*val)
			if trimmed == "" {
				val = nil
			} else {
				val = &trimmed
			}
		}
		if val != nil && len(def.enum) > 0 && !contains(def.enum, strings.ToLower(*val)) {
			badEnum = append(badEnum, string(a.Field))
			continue
		}
		if val != nil && len(def.enum) > 0 {
			lower := strings.ToLower(*val)
			val = &lower
		}
		normalized = append(normalized, Assignment{Field: a.Field, Value: val})
	}
	switch {
	case len(unknown) > 0:
		return invalid("unknown or read-only fields", unknown...)
	case len(tooEarly) > 0:
		return invalid("fields belong to a later stage", tooEarly...)
	case len(badEnum) > 0:
		return invalid("unsupported value", badEnum...)
	}

	next := *d
	for _, a := range normalized {
		*inputs[a.Field].ref(&next) = a.Value
	}
	if orphaned := orphanedOutputs(&next); len(orphaned) > 0 {
		return invalid("cannot clear an answer that an existing analysis depends on", orphaned...)
	}
	*d = next
	return nil
}

// orphanedOutputs lists inputs that are now blank although an analysis
// derived from them is stored.
func orphanedOutputs(d *types.Decision) []string {
	var out []string
	seen := map[string]bool{}
	for stage := types.StageDeconstruct; stage <= types.StageSecondOrder; stage++ {
		if !Analyzable(stage) || Output(d, stage) == nil {
			continue
		}
		for _, f := range Missing(d, AnalysisInputs(stage)) {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

// CheckAdvance verifies the decision may move from its current stage to the
// next one. Entitlement is checked separately.
func CheckAdvance(d *types.Decision) error {
	if d.IsLocked {
		return ErrLocked
	}
	if !d.Stage.Valid() {
		return invalid("decision is in an unknown stage")
	}
	if d.Stage >= types.StageLock {
		return invalid("final stage is completed by locking the decision")
	}
	if missing := Missing(d, RequiredInputs(d.Stage)); len(missing) > 0 {
		return invalid("required answers missing", missing...)
	}
	return nil
}

// LockFields is the subject's final commitment.
type LockFields struct {
	FinalDecision string
	KeyReasons    string
	AcceptedRisks *string
	ReviewDate    *time.Time
}

// PrepareLock validates the final fields and returns the locked copy of d.
func PrepareLock(d *types.Decision, f LockFields, now time.Time) (*types.Decision, error) {
	if d.IsLocked {
		return nil, ErrLocked
	}
	var missing []string
	finalDecision := strings.TrimSpace(f.FinalDecision)
	keyReasons := strings.TrimSpace(f.KeyReasons)
	if finalDecision == "" {
		missing = append(missing, string(FieldFinalDecision))
	}
	if keyReasons == "" {
		missing = append(missing, string(FieldKeyReasons))
	}
	if len(missing) > 0 {
		return nil, invalid("final decision and key reasons are required", missing...)
	}
	if d.Stage != types.StageLock {
		return nil, invalid("decision has not reached the lock stage")
	}
	next := *d
	next.FinalDecision = &finalDecision
	next.KeyReasons = &keyReasons
	if f.AcceptedRisks != nil {
		if r := strings.TrimSpace(*f.AcceptedRisks); r != "" {
			next.AcceptedRisks = &r
		}
	}
	next.ReviewDate = f.ReviewDate
	lockedAt := now.UTC()
	next.IsLocked = true
	next.LockedAt = &lockedAt
	next.Stage = types.StageComplete
	return &next, nil
}

// CheckAnalyze verifies stage s of d can be sent for analysis.
func CheckAnalyze(d *types.Decision, s types.Stage) error {
	if !Analyzable(s) {
		return invalid("stage has no analysis", s.String())
	}
	if s > d.Stage {
		return invalid("stage not reached yet", s.String())
	}
	if missing := Missing(d, AnalysisInputs(s)); len(missing) > 0 {
		return invalid("required answers missing", missing...)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
