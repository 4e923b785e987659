package repos

import (
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/data/repos/decision"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/data/repos/user"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
	"gorm.io/gorm"
)

type DecisionRepo = decision.DecisionRepo
type DecisionScoreRepo = decision.ScoreRepo
type DecisionReflectionRepo = decision.ReflectionRepo

type UserAccessRepo = user.UserAccessRepo
type UserPreferencesRepo = user.UserPreferencesRepo

func NewDecisionRepo(db *gorm.DB, log *logger.Logger) DecisionRepo {
	return decision.NewDecisionRepo(db, log)
}

func NewDecisionScoreRepo(db *gorm.DB, log *logger.Logger) DecisionScoreRepo {
	return decision.NewScoreRepo(db, log)
}

func NewDecisionReflectionRepo(db *gorm.DB, log *logger.Logger) DecisionReflectionRepo {
	return decision.NewReflectionRepo(db, log)
}

func NewUserAccessRepo(db *gorm.DB, log *logger.Logger) UserAccessRepo {
	return user.NewUserAccessRepo(db, log)
}

func NewUserPreferencesRepo(db *gorm.DB, log *logger.Logger) UserPreferencesRepo {
	return user.NewUserPreferencesRepo(db, log)
}
