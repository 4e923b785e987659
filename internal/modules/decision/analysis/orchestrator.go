package analysis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	types "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/domain"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/modules/decision/workflow"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/observability"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/dbctx"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
)

// Store is the part of the decision record store analysis writes through.
type Store interface {
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Decision, error)
	StoreOutput(dbc dbctx.Context, id uuid.UUID, outputColumn string, updates map[string]any, requireSet ...string) (int64, error)
}

type ScoreStore interface {
	Get(dbc dbctx.Context, decisionID uuid.UUID) (*types.DecisionScore, error)
	CreateIfAbsent(dbc dbctx.Context, s *types.DecisionScore) (*types.DecisionScore, error)
}

// Result is a stage analysis as stored on the decision.
type Result struct {
	Stage    types.Stage
	Text     string
	Biases   []string
	Cached   bool
	Decision *types.Decision
}

type Config struct {
	LockTTL time.Duration
	// WaitForPeer bounds how long a caller that lost the lock polls the store
	// for the winner's output.
	WaitForPeer  time.Duration
	PollInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.LockTTL <= 0 {
		c.LockTTL = 90 * time.Second
	}
	if c.WaitForPeer < 0 {
		c.WaitForPeer = 0
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 250 * time.Millisecond
	}
	return c
}

type Orchestrator struct {
	log       *logger.Logger
	store     Store
	scores    ScoreStore
	completer Completer
	prompts   *Prompts
	locker    Locker
	metrics   *observability.AnalysisMetrics
	tracer    trace.Tracer
	cfg       Config
	sf        singleflight.Group
	now       func() time.Time
}

func NewOrchestrator(
	baseLog *logger.Logger,
	store Store,
	scores ScoreStore,
	completer Completer,
	prompts *Prompts,
	locker Locker,
	metrics *observability.AnalysisMetrics,
	cfg Config,
) *Orchestrator {
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &Orchestrator{
		log:       baseLog.With("service", "AnalysisOrchestrator"),
		store:     store,
		scores:    scores,
		completer: completer,
		prompts:   prompts,
		locker:    locker,
		metrics:   metrics,
		tracer:    observability.Tracer(),
		cfg:       cfg.withDefaults(),
		now:       time.Now,
	}
}

// Analyze returns the stored output for stage s of d, calling the external
// capability only when nothing is stored yet. The output is written at most
// once; concurrent callers converge on the first persisted result.
func (o *Orchestrator) Analyze(ctx context.Context, d *types.Decision, s types.Stage) (*Result, error) {
	if d == nil {
		return nil, workflow.ErrNotFound
	}
	if out := workflow.Output(d, s); out != nil {
		o.metrics.ObserveCacheHit(ctx, s.String())
		return resultFrom(d, s, true), nil
	}
	if d.IsLocked {
		return nil, workflow.ErrLocked
	}
	if err := workflow.CheckAnalyze(d, s); err != nil {
		return nil, err
	}

	key := d.ID.String() + ":" + s.String()
	v, err, shared := o.sf.Do(key, func() (any, error) {
		// The flight outlives any single caller; the lock TTL bounds it.
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.LockTTL)
		defer cancel()
		return o.analyzeLocked(callCtx, d.ID, s, key)
	})
	if err != nil {
		return nil, err
	}
	res := *v.(*Result)
	if shared {
		res.Cached = true
	}
	return &res, nil
}

func (o *Orchestrator) analyzeLocked(ctx context.Context, id uuid.UUID, s types.Stage, key string) (*Result, error) {
	unlock, acquired, err := o.locker.TryLock(ctx, key, o.cfg.LockTTL)
	if err != nil {
		// Lock backend down: the write-once update still guards the row.
		o.log.Warn("analysis lock unavailable; continuing without it", "decision_id", id, "stage", s.String(), "error", err)
	} else if !acquired {
		return o.waitForPeer(ctx, id, s)
	} else {
		defer unlock()
	}

	dbc := dbctx.Context{Ctx: ctx}
	d, err := o.store.GetByID(dbc, id)
	if err != nil {
		return nil, workflow.Persistence("load decision", err)
	}
	if d == nil {
		return nil, workflow.ErrNotFound
	}
	if workflow.Output(d, s) != nil {
		o.metrics.ObserveCacheHit(ctx, s.String())
		return resultFrom(d, s, true), nil
	}
	if d.IsLocked {
		return nil, workflow.ErrLocked
	}
	if err := workflow.CheckAnalyze(d, s); err != nil {
		return nil, err
	}

	text, err := o.call(ctx, stagePrompts[s], StageInput(d, s), s.String(), id)
	if err != nil {
		return nil, err
	}

	col, _ := workflow.OutputField(s)
	updates := map[string]any{string(col): text}
	if s == types.StageBiasCheck {
		updates["detected_biases"] = types.EncodeBiases(ExtractBiases(text))
	}
	required := workflow.AnalysisInputs(s)
	requireSet := make([]string, 0, len(required))
	for _, f := range required {
		requireSet = append(requireSet, string(f))
	}
	n, err := o.store.StoreOutput(dbc, id, string(col), updates, requireSet...)
	if err != nil {
		return nil, workflow.Persistence("store analysis", err)
	}

	fresh, err := o.store.GetByID(dbc, id)
	if err != nil {
		return nil, workflow.Persistence("reload decision", err)
	}
	if fresh == nil {
		return nil, workflow.ErrNotFound
	}
	if n == 0 {
		if workflow.Output(fresh, s) != nil {
			return resultFrom(fresh, s, true), nil
		}
		if fresh.IsLocked {
			return nil, workflow.ErrLocked
		}
		if err := workflow.CheckAnalyze(fresh, s); err != nil {
			return nil, err
		}
		return nil, workflow.Persistence("store analysis", errors.New("conditional update matched no row"))
	}
	o.log.Info("analysis stored", "decision_id", id, "stage", s.String(), "provider", o.completer.Provider())
	return resultFrom(fresh, s, false), nil
}

// waitForPeer polls for the output another caller is producing.
func (o *Orchestrator) waitForPeer(ctx context.Context, id uuid.UUID, s types.Stage) (*Result, error) {
	deadline := o.now().Add(o.cfg.WaitForPeer)
	dbc := dbctx.Context{Ctx: ctx}
	for {
		d, err := o.store.GetByID(dbc, id)
		if err != nil {
			return nil, workflow.Persistence("load decision", err)
		}
		if d == nil {
			return nil, workflow.ErrNotFound
		}
		if workflow.Output(d, s) != nil {
			return resultFrom(d, s, true), nil
		}
		if !o.now().Before(deadline) {
			return nil, newError(KindUnavailable, o.completer.Provider(), errInProgress)
		}
		t := time.NewTimer(o.cfg.PollInterval)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, newError(KindUnavailable, o.completer.Provider(), ctx.Err())
		case <-t.C:
		}
	}
}

// Score returns the stored score of a locked decision, computing and
// persisting it on first request.
func (o *Orchestrator) Score(ctx context.Context, d *types.Decision) (*types.DecisionScore, error) {
	if d == nil {
		return nil, workflow.ErrNotFound
	}
	if !d.IsLocked {
		return nil, &workflow.ValidationError{Reason: "decision must be locked before it is scored"}
	}
	dbc := dbctx.Context{Ctx: ctx}
	existing, err := o.scores.Get(dbc, d.ID)
	if err != nil {
		return nil, workflow.Persistence("load score", err)
	}
	if existing != nil {
		o.metrics.ObserveCacheHit(ctx, "score")
		return existing, nil
	}

	v, err, _ := o.sf.Do("score:"+d.ID.String(), func() (any, error) {
		text, err := o.call(ctx, PromptScore, ScoreInput(d), "score", d.ID)
		if err != nil {
			return nil, err
		}
		parsed, err := ParseScore(text)
		if err != nil {
			o.metrics.ObserveCall(ctx, "score", o.completer.Provider(), string(KindMalformed), 0)
			return nil, newError(KindMalformed, o.completer.Provider(), err)
		}
		row := &types.DecisionScore{
			DecisionID:         d.ID,
			ClarityScore:       parsed.Clarity,
			ReasoningScore:     parsed.Reasoning,
			RiskAwarenessScore: parsed.RiskAwareness,
			BiasAwarenessScore: parsed.BiasAwareness,
			OverallScore:       parsed.Overall,
			Explanation:        parsed.Explanation,
			CreatedAt:          o.now().UTC(),
		}
		stored, err := o.scores.CreateIfAbsent(dbc, row)
		if err != nil {
			return nil, workflow.Persistence("store score", err)
		}
		return stored, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.DecisionScore), nil
}

// call renders the prompt and makes exactly one external request.
func (o *Orchestrator) call(ctx context.Context, name PromptName, in Input, label string, id uuid.UUID) (string, error) {
	system, user, err := o.prompts.Render(name, in)
	if err != nil {
		return "", err
	}
	provider := o.completer.Provider()
	ctx, span := o.tracer.Start(ctx, "analysis."+label, trace.WithAttributes(
		attribute.String("decision.id", id.String()),
		attribute.String("analysis.stage", label),
		attribute.String("analysis.provider", provider),
	))
	defer span.End()

	start := o.now()
	text, err := o.completer.Complete(ctx, system, user)
	elapsed := o.now().Sub(start)
	if err != nil {
		kind := KindUnavailable
		if k, ok := KindOf(err); ok {
			kind = k
		} else {
			err = newError(kind, provider, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, string(kind))
		o.metrics.ObserveCall(ctx, label, provider, string(kind), elapsed)
		o.log.Warn("analysis call failed", "decision_id", id, "stage", label, "provider", provider, "kind", string(kind), "error", err)
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		err := newError(KindMalformed, provider, errors.New("empty analysis text"))
		span.SetStatus(codes.Error, string(KindMalformed))
		o.metrics.ObserveCall(ctx, label, provider, string(KindMalformed), elapsed)
		return "", err
	}
	o.metrics.ObserveCall(ctx, label, provider, "ok", elapsed)
	return text, nil
}

func resultFrom(d *types.Decision, s types.Stage, cached bool) *Result {
	res := &Result{Stage: s, Cached: cached, Decision: d}
	if out := workflow.Output(d, s); out != nil {
		res.Text = *out
	}
	if s == types.StageBiasCheck {
		if labels, ok := d.Biases(); ok {
			res.Biases = labels
		} else {
			res.Biases = []string{}
		}
	}
	return res
}
