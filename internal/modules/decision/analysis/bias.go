package analysis

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// biasVocabulary is the fixed set of names scanned for in free text.
var biasVocabulary = []string{
	"sunk cost",
	"status quo",
	"confirmation bias",
	"anchoring",
	"loss aversion",
	"overconfidence",
	"availability",
	"planning fallacy",
	"optimism bias",
	"bandwagon",
	"framing",
	"hindsight",
	"negativity bias",
	"recency bias",
	"survivorship bias",
	"endowment effect",
}

var biasPatterns = compileBiasPatterns(biasVocabulary)

func compileBiasPatterns(names []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(names))
	for i, name := range names {
		words := strings.Fields(name)
		for j := range words {
			words[j] = regexp.QuoteMeta(words[j])
		}
		out[i] = regexp.MustCompile(`(?i)\b` + strings.Join(words, `[\s-]+`) + `\b`)
	}
	return out
}

// DeriveBiases scans text for the fixed vocabulary. Each name is reported
// once, title-cased, in order of its first appearance. No match is an empty,
// non-nil list.
func DeriveBiases(text string) []string {
	type hit struct {
		at    int
		label string
	}
	var hits []hit
	for i, re := range biasPatterns {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		hits = append(hits, hit{at: loc[0], label: titleCase(biasVocabulary[i])})
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].at < hits[b].at })
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.label)
	}
	return out
}

var detectedLine = regexp.MustCompile(`(?im)^\s*\**detected biases\**\s*:\s*(.*?)\s*$`)

// ExtractBiases prefers the structured "Detected biases:" line the bias
// prompt asks for, and falls back to the vocabulary scan without one.
func ExtractBiases(text string) []string {
	m := detectedLine.FindAllStringSubmatch(text, -1)
	if len(m) == 0 {
		return DeriveBiases(text)
	}
	raw := strings.Trim(m[len(m)-1][1], " .")
	if raw == "" || strings.EqualFold(raw, "none") {
		return []string{}
	}
	seen := map[string]bool{}
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		label := titleCase(strings.Join(strings.Fields(strings.Trim(part, " .*")), " "))
		if label == "" {
			continue
		}
		key := strings.ToLower(label)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, label)
	}
	return out
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
