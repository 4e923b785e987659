package workflow

import (
	"errors"
	"testing"
	"time"

	types "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/domain"
)

func str(s string) *string { return &s }

func filledDeconstruct() *types.Decision {
	return &types.Decision{
		Title:             "Move to Lisbon",
		Stage:             types.StageDeconstruct,
		TimeHorizon:       str("two years"),
		Reversibility:     str("partially_reversible"),
		BiggestFear:       str("isolation"),
		SuccessDefinition: str("settled and working remotely"),
		Stakeholders:      str("partner"),
	}
}

func TestRender(t *testing.T) {
	cases := []struct {
		stage  types.Stage
		locked bool
		want   View
	}{
		{stage: types.StageDeconstruct, want: ViewDeconstruct},
		{stage: types.StageBiasCheck, want: ViewBiasCheck},
		{stage: types.StageLock, want: ViewLock},
		{stage: types.StageScenarios, locked: true, want: ViewComplete},
		{stage: types.Stage(0), want: ViewDashboard},
		{stage: types.Stage(42), want: ViewDashboard},
	}
	for _, tc := range cases {
		if got := Render(tc.stage, tc.locked); got != tc.want {
			t.Fatalf("Render(%d,%v): want %s got %s", tc.stage, tc.locked, tc.want, got)
		}
	}
}

func TestCheckAdvance(t *testing.T) {
	d := filledDeconstruct()
	if err := CheckAdvance(d); err != nil {
		t.Fatalf("CheckAdvance: %v", err)
	}

	d.BiggestFear = str("   ")
	var ve *ValidationError
	if err := CheckAdvance(d); !errors.As(err, &ve) {
		t.Fatalf("CheckAdvance: expected ValidationError, got %v", err)
	}
	if len(ve.Fields) != 1 || ve.Fields[0] != string(FieldBiggestFear) {
		t.Fatalf("CheckAdvance: unexpected fields %v", ve.Fields)
	}

	lockStage := &types.Decision{Stage: types.StageLock}
	if err := CheckAdvance(lockStage); !errors.As(err, &ve) {
		t.Fatalf("CheckAdvance(lock): expected ValidationError, got %v", err)
	}

	bias := &types.Decision{Stage: types.StageBiasCheck}
	if err := CheckAdvance(bias); err != nil {
		t.Fatalf("CheckAdvance(bias_check): %v", err)
	}

	locked := &types.Decision{Stage: types.StageComplete, IsLocked: true}
	if err := CheckAdvance(locked); !errors.Is(err, ErrLocked) {
		t.Fatalf("CheckAdvance(locked): expected ErrLocked, got %v", err)
	}
}

func TestApplyAssignments(t *testing.T) {
	t.Run("merges and normalizes", func(t *testing.T) {
		d := &types.Decision{Stage: types.StageDeconstruct}
		err := ApplyAssignments(d, []Assignment{
			{Field: FieldTimeHorizon, Value: str("  six months ")},
			{Field: FieldReversibility, Value: str("Irreversible")},
		})
		if err != nil {
			t.Fatalf("ApplyAssignments: %v", err)
		}
		if *d.TimeHorizon != "six months" || *d.Reversibility != "irreversible" {
			t.Fatalf("ApplyAssignments: unexpected %q %q", *d.TimeHorizon, *d.Reversibility)
		}
		if d.Stage != types.StageDeconstruct {
			t.Fatalf("ApplyAssignments: stage changed to %s", d.Stage)
		}
	})

	t.Run("rejects later stage fields", func(t *testing.T) {
		d := &types.Decision{Stage: types.StageDeconstruct}
		err := ApplyAssignments(d, []Assignment{{Field: FieldBestCase, Value: str("x")}})
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if d.BestCase != nil {
			t.Fatalf("decision mutated on rejection")
		}
	})

	t.Run("rejects bad enum and outputs", func(t *testing.T) {
		d := &types.Decision{Stage: types.StageScenarios}
		for _, a := range []Assignment{
			{Field: FieldReversibility, Value: str("maybe")},
			{Field: FieldInsightSummary, Value: str("forged")},
		} {
			var ve *ValidationError
			if err := ApplyAssignments(d, []Assignment{a}); !errors.As(err, &ve) {
				t.Fatalf("%s: expected ValidationError, got %v", a.Field, err)
			}
		}
	})

	t.Run("cannot clear input behind stored analysis", func(t *testing.T) {
		d := filledDeconstruct()
		d.InsightSummary = str("insight")
		err := ApplyAssignments(d, []Assignment{{Field: FieldBiggestFear, Value: nil}})
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if d.BiggestFear == nil {
			t.Fatalf("decision mutated on rejection")
		}
		if err := ApplyAssignments(d, []Assignment{{Field: FieldBiggestFear, Value: str("loneliness")}}); err != nil {
			t.Fatalf("editing behind analysis should be allowed: %v", err)
		}
	})

	t.Run("locked", func(t *testing.T) {
		d := &types.Decision{Stage: types.StageComplete, IsLocked: true}
		if err := ApplyAssignments(d, []Assignment{{Field: FieldTimeHorizon, Value: str("x")}}); !errors.Is(err, ErrLocked) {
			t.Fatalf("expected ErrLocked, got %v", err)
		}
	})
}

func TestPrepareLock(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	d := &types.Decision{Stage: types.StageLock}
	_, err := PrepareLock(d, LockFields{FinalDecision: "", KeyReasons: "cost"}, now)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if d.IsLocked || d.LockedAt != nil {
		t.Fatalf("decision mutated on rejection")
	}

	locked, err := PrepareLock(d, LockFields{FinalDecision: "Go", KeyReasons: "growth", AcceptedRisks: str("  ")}, now)
	if err != nil {
		t.Fatalf("PrepareLock: %v", err)
	}
	if !locked.IsLocked || locked.Stage != types.StageComplete || locked.LockedAt == nil || !locked.LockedAt.Equal(now) {
		t.Fatalf("PrepareLock: unexpected %+v", locked)
	}
	if locked.AcceptedRisks != nil {
		t.Fatalf("PrepareLock: blank accepted risks should stay unset")
	}

	early := &types.Decision{Stage: types.StageSecondOrder}
	if _, err := PrepareLock(early, LockFields{FinalDecision: "Go", KeyReasons: "x"}, now); !errors.As(err, &ve) {
		t.Fatalf("PrepareLock(early): expected ValidationError, got %v", err)
	}
}

func TestCheckAnalyze(t *testing.T) {
	d := filledDeconstruct()
	if err := CheckAnalyze(d, types.StageDeconstruct); err != nil {
		t.Fatalf("CheckAnalyze: %v", err)
	}
	var ve *ValidationError
	if err := CheckAnalyze(d, types.StageScenarios); !errors.As(err, &ve) {
		t.Fatalf("CheckAnalyze(future stage): expected ValidationError, got %v", err)
	}
	if err := CheckAnalyze(d, types.StageLock); !errors.As(err, &ve) {
		t.Fatalf("CheckAnalyze(lock): expected ValidationError, got %v", err)
	}

	d.Stage = types.StageBiasCheck
	d.BestCase, d.WorstCase = str("b"), str("w")
	if err := CheckAnalyze(d, types.StageBiasCheck); !errors.As(err, &ve) {
		t.Fatalf("CheckAnalyze(bias): expected ValidationError, got %v", err)
	}
	if len(ve.Fields) != 1 || ve.Fields[0] != string(FieldLikelyCase) {
		t.Fatalf("CheckAnalyze(bias): unexpected missing %v", ve.Fields)
	}
	if got := len(AnalysisInputs(types.StageBiasCheck)); got != 8 {
		t.Fatalf("AnalysisInputs(bias_check): want 8 got %d", got)
	}
}

func TestDependentOutputs(t *testing.T) {
	cases := []struct {
		in   Field
		want []Field
	}{
		{FieldBiggestFear, []Field{FieldInsightSummary, FieldBiasAnalysis}},
		{FieldWorstCase, []Field{FieldScenarioAnalysis, FieldBiasAnalysis}},
		{FieldRippleEffects, []Field{FieldSecondOrderAnalysis}},
		{FieldRegretCheck, nil},
		{FieldFinalDecision, nil},
	}
	for _, tc := range cases {
		got := DependentOutputs(tc.in)
		if len(got) != len(tc.want) {
			t.Fatalf("DependentOutputs(%s): want %v got %v", tc.in, tc.want, got)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("DependentOutputs(%s): want %v got %v", tc.in, tc.want, got)
			}
		}
	}
}
