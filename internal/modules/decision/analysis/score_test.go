package analysis

import "testing"

func TestClamp(t *testing.T) {
	cases := map[float64]int{142: 100, -5: 0, 0: 0, 100: 100, 55.6: 56, 99.4: 99}
	for in, want := range cases {
		if got := Clamp(in); got != want {
			t.Fatalf("Clamp(%v): got %d want %d", in, got, want)
		}
	}
}

func TestParseScore(t *testing.T) {
	text := "Here you go:\n```json\n" +
		`{"clarity_score": 142, "reasoning_score": -5, "risk_awareness_score": "70", "bias_awareness_score": 64.6, "overall_score": 80, "explanation": " solid "}` +
		"\n```"
	got, err := ParseScore(text)
	if err != nil {
		t.Fatalf("ParseScore: %v", err)
	}
	want := ScoreResult{Clarity: 100, Reasoning: 0, RiskAwareness: 70, BiasAwareness: 65, Overall: 80, Explanation: "solid"}
	if got != want {
		t.Fatalf("ParseScore: got %+v want %+v", got, want)
	}
}

func TestParseScoreOverallFallback(t *testing.T) {
	got, err := ParseScore(`{"clarity_score": 80, "reasoning_score": 60, "risk_awareness_score": 40, "bias_awareness_score": 20}`)
	if err != nil {
		t.Fatalf("ParseScore: %v", err)
	}
	if got.Overall != 50 {
		t.Fatalf("ParseScore: overall %d want 50", got.Overall)
	}
}

func TestParseScoreRejects(t *testing.T) {
	for _, text := range []string{
		"no json at all",
		`{"clarity_score": "high"}`,
		`{"clarity_score": 1, "reasoning_score": 2, "risk_awareness_score": 3}`,
		`{not json}`,
	} {
		if _, err := ParseScore(text); err == nil {
			t.Fatalf("ParseScore(%q): expected error", text)
		}
	}
}
