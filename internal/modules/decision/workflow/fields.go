package workflow

import (
	"strings"

	types "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/domain"
)

// Field names a subject-supplied input or an analysis output. The value
// doubles as the JSON key and the column name.
type Field string

const (
	FieldTimeHorizon       Field = "time_horizon"
	FieldReversibility     Field = "reversibility"
	FieldBiggestFear       Field = "biggest_fear"
	FieldSuccessDefinition Field = "success_definition"
	FieldStakeholders      Field = "stakeholders"
	FieldBestCase          Field = "best_case"
	FieldWorstCase         Field = "worst_case"
	FieldLikelyCase        Field = "likely_case"
	FieldRippleEffects     Field = "ripple_effects"
	FieldRegretCheck       Field = "regret_check"

	FieldInsightSummary      Field = "insight_summary"
	FieldScenarioAnalysis    Field = "scenario_analysis"
	FieldBiasAnalysis        Field = "bias_analysis"
	FieldSecondOrderAnalysis Field = "second_order_analysis"

	FieldFinalDecision Field = "final_decision"
	FieldKeyReasons    Field = "key_reasons"
)

type inputSpec struct {
	stage    types.Stage
	required bool
	enum     []string
	ref      func(d *types.Decision) **string
}

var inputs = map[Field]inputSpec{
	FieldTimeHorizon:       {stage: types.StageDeconstruct, required: true, ref: func(d *types.Decision) **string { return &d.TimeHorizon }},
	FieldReversibility:     {stage: types.StageDeconstruct, required: true, enum: []string{"reversible", "partially_reversible", "irreversible"}, ref: func(d *types.Decision) **string { return &d.Reversibility }},
	FieldBiggestFear:       {stage: types.StageDeconstruct, required: true, ref: func(d *types.Decision) **string { return &d.BiggestFear }},
	FieldSuccessDefinition: {stage: types.StageDeconstruct, required: true, ref: func(d *types.Decision) **string { return &d.SuccessDefinition }},
	FieldStakeholders:      {stage: types.StageDeconstruct, required: true, ref: func(d *types.Decision) **string { return &d.Stakeholders }},
	FieldBestCase:          {stage: types.StageScenarios, required: true, ref: func(d *types.Decision) **string { return &d.BestCase }},
	FieldWorstCase:         {stage: types.StageScenarios, required: true, ref: func(d *types.Decision) **string { return &d.WorstCase }},
	FieldLikelyCase:        {stage: types.StageScenarios, required: true, ref: func(d *types.Decision) **string { return &d.LikelyCase }},
	FieldRippleEffects:     {stage: types.StageSecondOrder, required: true, ref: func(d *types.Decision) **string { return &d.RippleEffects }},
	FieldRegretCheck:       {stage: types.StageSecondOrder, ref: func(d *types.Decision) **string { return &d.RegretCheck }},
}

var inputOrder = []Field{
	FieldTimeHorizon, FieldReversibility, FieldBiggestFear, FieldSuccessDefinition, FieldStakeholders,
	FieldBestCase, FieldWorstCase, FieldLikelyCase,
	FieldRippleEffects, FieldRegretCheck,
}

var outputs = map[types.Stage]Field{
	types.StageDeconstruct: FieldInsightSummary,
	types.StageScenarios:   FieldScenarioAnalysis,
	types.StageBiasCheck:   FieldBiasAnalysis,
	types.StageSecondOrder: FieldSecondOrderAnalysis,
}

// IsInput reports whether f is a field subjects may edit through updateFields.
func IsInput(f Field) bool {
	_, ok := inputs[f]
	return ok
}

// InputStage is the stage that owns an input field.
func InputStage(f Field) (types.Stage, bool) {
	def, ok := inputs[f]
	return def.stage, ok
}

// Value returns the current value of an input field, or nil.
func Value(d *types.Decision, f Field) *string {
	def, ok := inputs[f]
	if !ok || d == nil {
		return nil
	}
	return *def.ref(d)
}

// RequiredInputs are the fields a subject must fill before leaving stage s.
func RequiredInputs(s types.Stage) []Field {
	var out []Field
	for _, f := range inputOrder {
		if def := inputs[f]; def.stage == s && def.required {
			out = append(out, f)
		}
	}
	return out
}

// AnalysisInputs are the fields that must be present before stage s can be
// analyzed. The bias check reads every deconstruct and scenario answer.
func AnalysisInputs(s types.Stage) []Field {
	switch s {
	case types.StageBiasCheck:
		return append(RequiredInputs(types.StageDeconstruct), RequiredInputs(types.StageScenarios)...)
	default:
		return RequiredInputs(s)
	}
}

// OutputField is the analysis output stored for stage s.
func OutputField(s types.Stage) (Field, bool) {
	f, ok := outputs[s]
	return f, ok
}

// Analyzable reports whether stage s has an analysis output.
func Analyzable(s types.Stage) bool {
	_, ok := outputs[s]
	return ok
}

// Output returns the stored analysis text for stage s, or nil.
func Output(d *types.Decision, s types.Stage) *string {
	if d == nil {
		return nil
	}
	switch s {
	case types.StageDeconstruct:
		return d.InsightSummary
	case types.StageScenarios:
		return d.ScenarioAnalysis
	case types.StageBiasCheck:
		return d.BiasAnalysis
	case types.StageSecondOrder:
		return d.SecondOrderAnalysis
	}
	return nil
}

// Missing returns the subset of fields that are nil or blank on d.
func Missing(d *types.Decision, fields []Field) []string {
	var out []string
	for _, f := range fields {
		v := Value(d, f)
		if v == nil || strings.TrimSpace(*v) == "" {
			out = append(out, string(f))
		}
	}
	return out
}

// DependentOutputs lists the analysis outputs derived from input f.
func DependentOutputs(f Field) []Field {
	var out []Field
	for stage := types.StageDeconstruct; stage <= types.StageSecondOrder; stage++ {
		col, ok := outputs[stage]
		if !ok {
			continue
		}
		for _, in := range AnalysisInputs(stage) {
			if in == f {
				out = append(out, col)
				break
			}
		}
	}
	return out
}
