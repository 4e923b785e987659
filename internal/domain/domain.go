package domain

import (
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/domain/decision"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/domain/user"
)

type Stage = decision.Stage

const (
	StageDeconstruct = decision.StageDeconstruct
	StageScenarios   = decision.StageScenarios
	StageBiasCheck   = decision.StageBiasCheck
	StageSecondOrder = decision.StageSecondOrder
	StageLock        = decision.StageLock
	StageComplete    = decision.StageComplete
)

type Decision = decision.Decision
type DecisionSummary = decision.Summary
type DecisionScore = decision.Score
type DecisionReflection = decision.Reflection

var EncodeBiases = decision.EncodeBiases
var ParseStage = decision.ParseStage

type UserAccess = user.Access
type UserPreferences = user.Preferences

// Models lists every persisted type, in migration order.
func Models() []any {
	return []any{
		&decision.Decision{},
		&decision.Score{},
		&decision.Reflection{},
		&user.Access{},
		&user.Preferences{},
	}
}
