package analysis

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	types "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/domain"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/modules/decision/workflow"
)

//go:embed prompts.yaml
var defaultPrompts []byte

type PromptName string

const (
	PromptDeconstruct PromptName = "deconstruct"
	PromptScenarios   PromptName = "scenarios"
	PromptBiasCheck   PromptName = "bias_check"
	PromptSecondOrder PromptName = "second_order"
	PromptScore       PromptName = "score"
)

var stagePrompts = map[types.Stage]PromptName{
	types.StageDeconstruct: PromptDeconstruct,
	types.StageScenarios:   PromptScenarios,
	types.StageBiasCheck:   PromptBiasCheck,
	types.StageSecondOrder: PromptSecondOrder,
}

// Input is everything a prompt may reference. Fields a stage does not send
// stay empty; templates use missingkey=zero.
type Input struct {
	Title       string
	Description string
	Category    string

	TimeHorizon       string
	Reversibility     string
	BiggestFear       string
	SuccessDefinition string
	Stakeholders      string
	BestCase          string
	WorstCase         string
	LikelyCase        string
	RippleEffects     string
	RegretCheck       string

	DetectedBiases string
	FinalDecision  string
	KeyReasons     string
	AcceptedRisks  string
}

type promptSpec struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

type promptFile struct {
	Version int                       `yaml:"version"`
	Prompts map[PromptName]promptSpec `yaml:"prompts"`
}

type compiled struct {
	system string
	user   *template.Template
}

// Prompts renders the system and user prompt for each analysis.
type Prompts struct {
	version int
	byName  map[PromptName]compiled
}

// LoadPrompts parses the embedded prompt set, or the file at path when set.
func LoadPrompts(path string) (*Prompts, error) {
	raw := defaultPrompts
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read prompts %s: %w", path, err)
		}
		raw = b
	}
	return ParsePrompts(raw)
}

func ParsePrompts(raw []byte) (*Prompts, error) {
	var pf promptFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	p := &Prompts{version: pf.Version, byName: map[PromptName]compiled{}}
	required := []PromptName{PromptDeconstruct, PromptScenarios, PromptBiasCheck, PromptSecondOrder, PromptScore}
	for _, name := range required {
		entry, ok := pf.Prompts[name]
		if !ok || strings.TrimSpace(entry.User) == "" {
			return nil, fmt.Errorf("prompt %q missing", name)
		}
		tmpl, err := template.New(string(name)).Option("missingkey=zero").Parse(entry.User)
		if err != nil {
			return nil, fmt.Errorf("prompt %q: %w", name, err)
		}
		p.byName[name] = compiled{system: strings.TrimSpace(entry.System), user: tmpl}
	}
	return p, nil
}

func (p *Prompts) Version() int { return p.version }

func (p *Prompts) Render(name PromptName, in Input) (system string, user string, err error) {
	c, ok := p.byName[name]
	if !ok {
		return "", "", fmt.Errorf("unknown prompt %q", name)
	}
	var buf bytes.Buffer
	if err := c.user.Execute(&buf, in); err != nil {
		return "", "", fmt.Errorf("render %q: %w", name, err)
	}
	return c.system, strings.TrimSpace(buf.String()), nil
}

// StageInput assembles the prompt input for stage s from the fixed field set
// that stage sends.
func StageInput(d *types.Decision, s types.Stage) Input {
	in := Input{Title: d.Title, Description: d.Description, Category: d.Category}
	fields := workflow.AnalysisInputs(s)
	if s == types.StageSecondOrder {
		fields = append(fields, workflow.FieldRegretCheck)
	}
	for _, f := range fields {
		setInput(&in, f, deref(workflow.Value(d, f)))
	}
	return in
}

// ScoreInput carries every answer plus the final commitment.
func ScoreInput(d *types.Decision) Input {
	in := Input{Title: d.Title, Description: d.Description, Category: d.Category}
	for _, s := range []types.Stage{types.StageDeconstruct, types.StageScenarios, types.StageSecondOrder} {
		for _, f := range workflow.RequiredInputs(s) {
			setInput(&in, f, deref(workflow.Value(d, f)))
		}
	}
	in.RegretCheck = deref(d.RegretCheck)
	if labels, ok := d.Biases(); ok {
		if len(labels) == 0 {
			in.DetectedBiases = "none"
		} else {
			in.DetectedBiases = strings.Join(labels, ", ")
		}
	}
	in.FinalDecision = deref(d.FinalDecision)
	in.KeyReasons = deref(d.KeyReasons)
	in.AcceptedRisks = deref(d.AcceptedRisks)
	return in
}

func setInput(in *Input, f workflow.Field, v string) {
	switch f {
	case workflow.FieldTimeHorizon:
		in.TimeHorizon = v
	case workflow.FieldReversibility:
		in.Reversibility = v
	case workflow.FieldBiggestFear:
		in.BiggestFear = v
	case workflow.FieldSuccessDefinition:
		in.SuccessDefinition = v
	case workflow.FieldStakeholders:
		in.Stakeholders = v
	case workflow.FieldBestCase:
		in.BestCase = v
	case workflow.FieldWorstCase:
		in.WorstCase = v
	case workflow.FieldLikelyCase:
		in.LikelyCase = v
	case workflow.FieldRippleEffects:
		in.RippleEffects = v
	case workflow.FieldRegretCheck:
		in.RegretCheck = v
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
