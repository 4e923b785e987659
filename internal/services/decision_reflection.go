package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/data/repos"
	types "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/domain"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/modules/decision/workflow"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/ctxutil"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/dbctx"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
)

type CreateReflectionInput struct {
	Body    string `json:"body"`
	Outcome string `json:"outcome"`
}

// DecisionReflectionService appends follow-up notes to locked decisions.
// Reflections never touch the decision row.
type DecisionReflectionService interface {
	Create(ctx context.Context, decisionID uuid.UUID, in CreateReflectionInput) (*types.DecisionReflection, error)
	List(ctx context.Context, decisionID uuid.UUID) ([]*types.DecisionReflection, error)
}

type decisionReflectionService struct {
	log         *logger.Logger
	decisions   repos.DecisionRepo
	reflections repos.DecisionReflectionRepo
}

func NewDecisionReflectionService(log *logger.Logger, decisions repos.DecisionRepo, reflections repos.DecisionReflectionRepo) DecisionReflectionService {
	return &decisionReflectionService{
		log:         log.With("service", "DecisionReflectionService"),
		decisions:   decisions,
		reflections: reflections,
	}
}

func (s *decisionReflectionService) owned(ctx context.Context, decisionID uuid.UUID) (*types.Decision, error) {
	uid := ctxutil.SubjectID(ctx)
	if uid == uuid.Nil {
		return nil, ErrUnauthorized
	}
	d, err := s.decisions.GetOwned(dbctx.Context{Ctx: ctx}, uid, decisionID)
	if err != nil {
		return nil, workflow.Persistence("load decision", err)
	}
	if d == nil {
		return nil, workflow.ErrNotFound
	}
	return d, nil
}

func (s *decisionReflectionService) Create(ctx context.Context, decisionID uuid.UUID, in CreateReflectionInput) (*types.DecisionReflection, error) {
	d, err := s.owned(ctx, decisionID)
	if err != nil {
		return nil, err
	}
	if !d.IsLocked {
		return nil, &workflow.ValidationError{Reason: "reflections can only be added to a locked decision"}
	}
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, &workflow.ValidationError{Reason: "reflection body is required", Fields: []string{"body"}}
	}
	row := &types.DecisionReflection{
		ID:         uuid.New(),
		DecisionID: d.ID,
		UserID:     d.UserID,
		Body:       body,
		Outcome:    strings.TrimSpace(in.Outcome),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.reflections.Create(dbctx.Context{Ctx: ctx}, row); err != nil {
		return nil, workflow.Persistence("create reflection", err)
	}
	s.log.Info("reflection added", "decision_id", d.ID, "reflection", body)
	return row, nil
}

func (s *decisionReflectionService) List(ctx context.Context, decisionID uuid.UUID) ([]*types.DecisionReflection, error) {
	d, err := s.owned(ctx, decisionID)
	if err != nil {
		return nil, err
	}
	rows, err := s.reflections.ListByDecision(dbctx.Context{Ctx: ctx}, d.ID)
	if err != nil {
		return nil, workflow.Persistence("list reflections", err)
	}
	return rows, nil
}
