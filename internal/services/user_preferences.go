package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/data/repos"
	types "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/domain"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/modules/decision/workflow"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/ctxutil"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/dbctx"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
)

type UserPreferencesPatch struct {
	GuideDismissed      OptionalBool `json:"guide_dismissed"`
	OnboardingCompleted OptionalBool `json:"onboarding_completed"`
}

type UserPreferencesService interface {
	Get(ctx context.Context) (*types.UserPreferences, error)
	Update(ctx context.Context, patch UserPreferencesPatch) (*types.UserPreferences, error)
}

type userPreferencesService struct {
	log  *logger.Logger
	repo repos.UserPreferencesRepo
}

func NewUserPreferencesService(log *logger.Logger, repo repos.UserPreferencesRepo) UserPreferencesService {
	return &userPreferencesService{log: log.With("service", "UserPreferencesService"), repo: repo}
}

func (s *userPreferencesService) Get(ctx context.Context) (*types.UserPreferences, error) {
	uid := ctxutil.SubjectID(ctx)
	if uid == uuid.Nil {
		return nil, ErrUnauthorized
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := s.repo.Ensure(dbc, uid); err != nil {
		return nil, workflow.Persistence("ensure preferences", err)
	}
	row, err := s.repo.Get(dbc, uid)
	if err != nil {
		return nil, workflow.Persistence("load preferences", err)
	}
	if row == nil {
		return &types.UserPreferences{UserID: uid}, nil
	}
	return row, nil
}

func (s *userPreferencesService) Update(ctx context.Context, patch UserPreferencesPatch) (*types.UserPreferences, error) {
	uid := ctxutil.SubjectID(ctx)
	if uid == uuid.Nil {
		return nil, ErrUnauthorized
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := s.repo.Ensure(dbc, uid); err != nil {
		return nil, workflow.Persistence("ensure preferences", err)
	}
	updates := map[string]any{}
	if patch.GuideDismissed.Set {
		updates["guide_dismissed"] = patch.GuideDismissed.Value != nil && *patch.GuideDismissed.Value
	}
	if patch.OnboardingCompleted.Set {
		updates["onboarding_completed"] = patch.OnboardingCompleted.Value != nil && *patch.OnboardingCompleted.Value
	}
	if len(updates) > 0 {
		if err := s.repo.UpdateFields(dbc, uid, updates); err != nil {
			return nil, workflow.Persistence("update preferences", err)
		}
	}
	return s.Get(ctx)
}
