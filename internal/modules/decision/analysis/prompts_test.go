package analysis

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	types "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/domain"
)

func ptr(s string) *string { return &s }

func TestLoadPromptsEmbedded(t *testing.T) {
	p, err := LoadPrompts("")
	if err != nil {
		t.Fatalf("LoadPrompts: %v", err)
	}
	if p.Version() != 1 {
		t.Fatalf("Version: got %d", p.Version())
	}
	for _, name := range []PromptName{PromptDeconstruct, PromptScenarios, PromptBiasCheck, PromptSecondOrder, PromptScore} {
		sys, user, err := p.Render(name, Input{Title: "Move to Lisbon"})
		if err != nil {
			t.Fatalf("Render %s: %v", name, err)
		}
		if sys == "" || !strings.Contains(user, "Move to Lisbon") {
			t.Fatalf("Render %s: system=%q user=%q", name, sys, user)
		}
	}
}

func TestParsePromptsMissing(t *testing.T) {
	_, err := ParsePrompts([]byte("version: 1\nprompts:\n  deconstruct:\n    user: hi\n"))
	if err == nil {
		t.Fatalf("ParsePrompts: expected error for incomplete prompt set")
	}
}

func TestStageInputIsStageScoped(t *testing.T) {
	d := &types.Decision{
		ID:            uuid.New(),
		Title:         "Change jobs",
		TimeHorizon:   ptr("1 year"),
		BiggestFear:   ptr(" regret "),
		BestCase:      ptr("promotion"),
		RippleEffects: ptr("longer commute"),
		RegretCheck:   ptr("would regret staying"),
	}
	in := StageInput(d, types.StageDeconstruct)
	if in.TimeHorizon != "1 year" || in.BiggestFear != "regret" {
		t.Fatalf("StageInput deconstruct: %+v", in)
	}
	if in.BestCase != "" || in.RippleEffects != "" {
		t.Fatalf("StageInput deconstruct leaked later answers: %+v", in)
	}

	in = StageInput(d, types.StageBiasCheck)
	if in.TimeHorizon == "" || in.BestCase == "" || in.RippleEffects != "" {
		t.Fatalf("StageInput bias check: %+v", in)
	}

	in = StageInput(d, types.StageSecondOrder)
	if in.RippleEffects == "" || in.RegretCheck == "" || in.TimeHorizon != "" {
		t.Fatalf("StageInput second order: %+v", in)
	}
}
