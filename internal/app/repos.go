package app

import (
	"gorm.io/gorm"

	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/data/repos"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
)

type Repos struct {
	Decision           repos.DecisionRepo
	DecisionScore      repos.DecisionScoreRepo
	DecisionReflection repos.DecisionReflectionRepo
	UserAccess         repos.UserAccessRepo
	UserPreferences    repos.UserPreferencesRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Decision:           repos.NewDecisionRepo(db, log),
		DecisionScore:      repos.NewDecisionScoreRepo(db, log),
		DecisionReflection: repos.NewDecisionReflectionRepo(db, log),
		UserAccess:         repos.NewUserAccessRepo(db, log),
		UserPreferences:    repos.NewUserPreferencesRepo(db, log),
	}
}
