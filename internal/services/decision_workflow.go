package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/data/repos"
	types "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/domain"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/modules/decision/analysis"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/modules/decision/entitlement"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/modules/decision/workflow"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/ctxutil"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/dbctx"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
)

// DecisionState is a decision plus what the client should show for it.
type DecisionState struct {
	Decision *types.Decision `json:"decision"`
	View     workflow.View   `json:"view"`
	// Missing lists required answers still blank for the current stage.
	Missing []string `json:"missing"`
}

type AnalysisState struct {
	Stage    string         `json:"stage"`
	Text     string         `json:"text"`
	Biases   []string       `json:"detected_biases,omitempty"`
	Cached   bool           `json:"cached"`
	Decision *DecisionState `json:"state"`
}

type CreateDecisionInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// DecisionFieldsPatch edits answers. A null value clears the field. When
// Stage is set every field must belong to it.
type DecisionFieldsPatch struct {
	Stage  *string            `json:"stage"`
	Fields map[string]*string `json:"fields"`
}

type LockDecisionInput struct {
	FinalDecision string         `json:"final_decision"`
	KeyReasons    string         `json:"key_reasons"`
	AcceptedRisks OptionalString `json:"accepted_risks"`
	ReviewDate    OptionalDate   `json:"review_date"`
}

type DecisionWorkflowService interface {
	Create(ctx context.Context, in CreateDecisionInput) (*DecisionState, error)
	List(ctx context.Context, limit int) ([]types.DecisionSummary, error)
	Get(ctx context.Context, id uuid.UUID) (*DecisionState, error)
	UpdateFields(ctx context.Context, id uuid.UUID, patch DecisionFieldsPatch) (*DecisionState, error)
	Advance(ctx context.Context, id uuid.UUID) (*DecisionState, error)
	Analyze(ctx context.Context, id uuid.UUID, stage types.Stage) (*AnalysisState, error)
	Lock(ctx context.Context, id uuid.UUID, in LockDecisionInput) (*DecisionState, error)
	Score(ctx context.Context, id uuid.UUID) (*types.DecisionScore, error)
}

type decisionWorkflowService struct {
	log      *logger.Logger
	repo     repos.DecisionRepo
	gate     *entitlement.Gate
	analysis *analysis.Orchestrator
	notify   DecisionNotifier
	now      func() time.Time
}

func NewDecisionWorkflowService(
	log *logger.Logger,
	repo repos.DecisionRepo,
	gate *entitlement.Gate,
	orch *analysis.Orchestrator,
	notify DecisionNotifier,
) DecisionWorkflowService {
	return &decisionWorkflowService{
		log:      log.With("service", "DecisionWorkflowService"),
		repo:     repo,
		gate:     gate,
		analysis: orch,
		notify:   notify,
		now:      time.Now,
	}
}

func stateOf(d *types.Decision) *DecisionState {
	st := &DecisionState{Decision: d, View: workflow.Render(d.Stage, d.IsLocked), Missing: []string{}}
	if !d.IsLocked && d.Stage.Valid() {
		if missing := workflow.Missing(d, workflow.RequiredInputs(d.Stage)); missing != nil {
			st.Missing = missing
		}
	}
	return st
}

func (s *decisionWorkflowService) Create(ctx context.Context, in CreateDecisionInput) (*DecisionState, error) {
	uid := ctxutil.SubjectID(ctx)
	if uid == uuid.Nil {
		return nil, ErrUnauthorized
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, &workflow.ValidationError{Reason: "title is required", Fields: []string{"title"}}
	}
	d := &types.Decision{
		UserID:      uid,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Stage:       types.StageDeconstruct,
	}
	if err := s.repo.Create(dbctx.Context{Ctx: ctx}, d); err != nil {
		return nil, workflow.Persistence("create decision", err)
	}
	s.log.Info("decision created", "decision_id", d.ID, "user_id", uid)
	s.notify.DecisionCreated(ctx, d)
	return stateOf(d), nil
}

func (s *decisionWorkflowService) List(ctx context.Context, limit int) ([]types.DecisionSummary, error) {
	uid := ctxutil.SubjectID(ctx)
	if uid == uuid.Nil {
		return nil, ErrUnauthorized
	}
	rows, err := s.repo.ListByUser(dbctx.Context{Ctx: ctx}, uid, limit)
	if err != nil {
		return nil, workflow.Persistence("list decisions", err)
	}
	out := make([]types.DecisionSummary, 0, len(rows))
	for _, d := range rows {
		out = append(out, d.Summary())
	}
	return out, nil
}

// load is loadOrInit: the subject's own decision or ErrNotFound.
func (s *decisionWorkflowService) load(ctx context.Context, id uuid.UUID) (*types.Decision, error) {
	uid := ctxutil.SubjectID(ctx)
	if uid == uuid.Nil {
		return nil, ErrUnauthorized
	}
	d, err := s.repo.GetOwned(dbctx.Context{Ctx: ctx}, uid, id)
	if err != nil {
		return nil, workflow.Persistence("load decision", err)
	}
	if d == nil {
		return nil, workflow.ErrNotFound
	}
	return d, nil
}

func (s *decisionWorkflowService) Get(ctx context.Context, id uuid.UUID) (*DecisionState, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return stateOf(d), nil
}

func (s *decisionWorkflowService) UpdateFields(ctx context.Context, id uuid.UUID, patch DecisionFieldsPatch) (*DecisionState, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(patch.Fields) == 0 {
		return nil, &workflow.ValidationError{Reason: "no fields to update"}
	}

	names := make([]string, 0, len(patch.Fields))
	for name := range patch.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	if patch.Stage != nil {
		stage, err := types.ParseStage(*patch.Stage)
		if err != nil {
			return nil, &workflow.ValidationError{Reason: err.Error(), Fields: []string{"stage"}}
		}
		var foreign []string
		for _, name := range names {
			if owner, ok := workflow.InputStage(workflow.Field(name)); ok && owner != stage {
				foreign = append(foreign, name)
			}
		}
		if len(foreign) > 0 {
			return nil, &workflow.ValidationError{Reason: "fields do not belong to stage " + stage.String(), Fields: foreign}
		}
	}

	assignments := make([]workflow.Assignment, 0, len(names))
	for _, name := range names {
		assignments = append(assignments, workflow.Assignment{Field: workflow.Field(name), Value: patch.Fields[name]})
	}
	if err := workflow.ApplyAssignments(d, assignments); err != nil {
		return nil, err
	}

	updates := make(map[string]any, len(assignments))
	guarded := map[string]bool{}
	for _, a := range assignments {
		if v := workflow.Value(d, a.Field); v != nil {
			updates[string(a.Field)] = *v
			continue
		}
		updates[string(a.Field)] = nil
		// A clear must not land after an analysis reading this field was stored.
		for _, out := range workflow.DependentOutputs(a.Field) {
			guarded[string(out)] = true
		}
	}
	requireNull := make([]string, 0, len(guarded))
	for col := range guarded {
		requireNull = append(requireNull, col)
	}
	sort.Strings(requireNull)

	dbc := dbctx.Context{Ctx: ctx}
	n, err := s.repo.MergeFields(dbc, id, updates, requireNull...)
	if err != nil {
		return nil, workflow.Persistence("update fields", err)
	}
	if n == 0 {
		return nil, s.explainClearNoop(ctx, id, d.Stage, assignments)
	}
	fresh, err := s.reload(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify.DecisionUpdated(ctx, fresh)
	return stateOf(fresh), nil
}

func (s *decisionWorkflowService) Advance(ctx context.Context, id uuid.UUID) (*DecisionState, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.CheckAdvance(d); err != nil {
		return nil, err
	}
	allowed, tier, err := s.gate.Allow(ctx, d.UserID, d.Stage)
	if err != nil {
		return nil, workflow.Persistence("read entitlement", err)
	}
	if !allowed {
		s.log.Info("advance blocked by entitlement", "decision_id", id, "stage", d.Stage.String(), "tier", string(tier))
		return nil, workflow.ErrEntitlementRequired
	}

	n, err := s.repo.AdvanceStage(dbctx.Context{Ctx: ctx}, id, d.Stage)
	if err != nil {
		return nil, workflow.Persistence("advance stage", err)
	}
	if n == 0 {
		return nil, s.explainNoop(ctx, id, d.Stage)
	}
	fresh, err := s.reload(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("decision advanced", "decision_id", id, "from", d.Stage.String(), "to", fresh.Stage.String())
	s.notify.DecisionAdvanced(ctx, fresh)
	return stateOf(fresh), nil
}

func (s *decisionWorkflowService) Analyze(ctx context.Context, id uuid.UUID, stage types.Stage) (*AnalysisState, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.analysis.Analyze(ctx, d, stage)
	if err != nil {
		return nil, err
	}
	if !res.Cached {
		s.notify.DecisionAnalysisReady(ctx, res.Decision, stage)
	}
	return &AnalysisState{
		Stage:    stage.String(),
		Text:     res.Text,
		Biases:   res.Biases,
		Cached:   res.Cached,
		Decision: stateOf(res.Decision),
	}, nil
}

func (s *decisionWorkflowService) Lock(ctx context.Context, id uuid.UUID, in LockDecisionInput) (*DecisionState, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	locked, err := workflow.PrepareLock(d, workflow.LockFields{
		FinalDecision: in.FinalDecision,
		KeyReasons:    in.KeyReasons,
		AcceptedRisks: in.AcceptedRisks.Value,
		ReviewDate:    in.ReviewDate.Value,
	}, s.now())
	if err != nil {
		return nil, err
	}
	n, err := s.repo.Lock(dbctx.Context{Ctx: ctx}, locked)
	if err != nil {
		return nil, workflow.Persistence("lock decision", err)
	}
	if n == 0 {
		return nil, s.explainNoop(ctx, id, d.Stage)
	}
	fresh, err := s.reload(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("decision locked", "decision_id", id)
	s.notify.DecisionLocked(ctx, fresh)
	return stateOf(fresh), nil
}

func (s *decisionWorkflowService) Score(ctx context.Context, id uuid.UUID) (*types.DecisionScore, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	score, err := s.analysis.Score(ctx, d)
	if err != nil {
		return nil, err
	}
	return score, nil
}

func (s *decisionWorkflowService) reload(ctx context.Context, id uuid.UUID) (*types.Decision, error) {
	d, err := s.repo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, workflow.Persistence("reload decision", err)
	}
	if d == nil {
		return nil, workflow.ErrNotFound
	}
	return d, nil
}

// explainClearNoop re-validates the assignments against the current row so a
// clear that lost a race with a stored analysis reports which answers it
// depends on.
func (s *decisionWorkflowService) explainClearNoop(ctx context.Context, id uuid.UUID, expected types.Stage, assignments []workflow.Assignment) error {
	d, err := s.repo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err == nil && d != nil && !d.IsLocked {
		if verr := workflow.ApplyAssignments(d, assignments); verr != nil {
			return verr
		}
	}
	return s.explainNoop(ctx, id, expected)
}

// explainNoop turns a guarded write that matched no row into the reason it
// did not apply.
func (s *decisionWorkflowService) explainNoop(ctx context.Context, id uuid.UUID, expected types.Stage) error {
	d, err := s.repo.GetByID(dbctx.Context{Ctx: ctx}, id)
	switch {
	case err != nil:
		return workflow.Persistence("reload decision", err)
	case d == nil:
		return workflow.ErrNotFound
	case d.IsLocked:
		return workflow.ErrLocked
	case d.Stage != expected:
		return workflow.ErrStageConflict
	default:
		return workflow.Persistence("guarded write", errors.New("matched no row"))
	}
}
