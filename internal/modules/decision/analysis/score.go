package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ScoreResult is the parsed grading of a locked decision.
type ScoreResult struct {
	Clarity       int
	Reasoning     int
	RiskAwareness int
	BiasAwareness int
	Overall       int
	Explanation   string
}

var errNoJSON = errors.New("no JSON object in response")

// ParseScore reads the grading JSON, tolerating code fences and prose around
// it. Scores are clamped to [0,100]; a missing overall is the mean of the
// other four.
func ParseScore(text string) (ScoreResult, error) {
	body := strings.TrimSpace(text)
	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end <= start {
		return ScoreResult{}, errNoJSON
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body[start:end+1]), &raw); err != nil {
		return ScoreResult{}, fmt.Errorf("decode score: %w", err)
	}

	var out ScoreResult
	targets := []struct {
		key string
		dst *int
	}{
		{"clarity_score", &out.Clarity},
		{"reasoning_score", &out.Reasoning},
		{"risk_awareness_score", &out.RiskAwareness},
		{"bias_awareness_score", &out.BiasAwareness},
	}
	for _, t := range targets {
		v, ok, err := number(raw[t.key])
		if err != nil || !ok {
			return ScoreResult{}, fmt.Errorf("score field %s: missing or not a number", t.key)
		}
		*t.dst = Clamp(v)
	}
	if v, ok, err := number(raw["overall_score"]); err == nil && ok {
		out.Overall = Clamp(v)
	} else {
		out.Overall = Clamp(float64(out.Clarity+out.Reasoning+out.RiskAwareness+out.BiasAwareness) / 4)
	}
	if msg, ok := raw["explanation"]; ok {
		var s string
		if err := json.Unmarshal(msg, &s); err == nil {
			out.Explanation = strings.TrimSpace(s)
		}
	}
	return out, nil
}

// number accepts a JSON number or a numeric string.
func number(msg json.RawMessage) (float64, bool, error) {
	if len(msg) == 0 || string(msg) == "null" {
		return 0, false, nil
	}
	var f float64
	if err := json.Unmarshal(msg, &f); err == nil {
		return f, true, nil
	}
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return 0, false, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false, err
	}
	return f, true, nil
}

// Clamp rounds v and bounds it to [0,100].
func Clamp(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return int(r)
}
