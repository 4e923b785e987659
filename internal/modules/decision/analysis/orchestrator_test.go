package analysis

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	decisionrepo "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/data/repos/decision"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/data/repos/testutil"
	types "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/domain"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/modules/decision/workflow"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/observability"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/dbctx"
)

type scriptedCompleter struct {
	mu    sync.Mutex
	calls int32
	reply string
	err   error
	delay time.Duration
	// during runs inside the external call, before the output is stored.
	during func()
}

func (c *scriptedCompleter) Provider() string { return "fake" }

func (c *scriptedCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.during != nil {
		c.during()
	}
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reply, c.err
}

type fixture struct {
	db   *gorm.DB
	repo decisionrepo.DecisionRepo
	orch *Orchestrator
	fake *scriptedCompleter
}

func newFixture(t *testing.T, fake *scriptedCompleter) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	prompts, err := LoadPrompts("")
	if err != nil {
		t.Fatalf("LoadPrompts: %v", err)
	}
	repo := decisionrepo.NewDecisionRepo(db, log)
	scores := decisionrepo.NewScoreRepo(db, log)
	orch := NewOrchestrator(log, repo, scores, fake, prompts, NewLocalLocker(), observability.NewAnalysisMetrics(), Config{})
	return &fixture{db: db, repo: repo, orch: orch, fake: fake}
}

func (f *fixture) seed(t *testing.T, stage types.Stage, answers map[string]any) *types.Decision {
	t.Helper()
	d := testutil.SeedDecision(t, f.db, uuid.New(), stage)
	if len(answers) > 0 {
		if err := f.db.Model(&types.Decision{}).Where("id = ?", d.ID).Updates(answers).Error; err != nil {
			t.Fatalf("seed answers: %v", err)
		}
	}
	return f.reload(t, d.ID)
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *types.Decision {
	t.Helper()
	d, err := f.repo.GetByID(dbctx.Context{Ctx: context.Background()}, id)
	if err != nil || d == nil {
		t.Fatalf("GetByID: %v %v", d, err)
	}
	return d
}

var deconstructAnswers = map[string]any{
	"time_horizon":       "two years",
	"reversibility":      "partially_reversible",
	"biggest_fear":       "losing savings",
	"success_definition": "profitable in a year",
	"stakeholders":       "partner, kids",
}

func scenarioAnswers() map[string]any {
	out := map[string]any{"best_case": "it works", "worst_case": "it fails", "likely_case": "slow growth"}
	for k, v := range deconstructAnswers {
		out[k] = v
	}
	return out
}

func TestAnalyzeCallsOnceThenServesStored(t *testing.T) {
	fake := &scriptedCompleter{reply: "  The real stake is security versus autonomy.  "}
	f := newFixture(t, fake)
	d := f.seed(t, types.StageDeconstruct, deconstructAnswers)

	first, err := f.orch.Analyze(context.Background(), d, types.StageDeconstruct)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if first.Cached || first.Text != "The real stake is security versus autonomy." {
		t.Fatalf("Analyze: unexpected %+v", first)
	}

	fake.reply = "a different answer"
	second, err := f.orch.Analyze(context.Background(), f.reload(t, d.ID), types.StageDeconstruct)
	if err != nil {
		t.Fatalf("Analyze (again): %v", err)
	}
	if !second.Cached || second.Text != first.Text {
		t.Fatalf("Analyze (again): unexpected %+v", second)
	}
	if n := atomic.LoadInt32(&fake.calls); n != 1 {
		t.Fatalf("external calls: got %d want 1", n)
	}
}

func TestAnalyzeConcurrentCallersShareOneCall(t *testing.T) {
	fake := &scriptedCompleter{reply: "insight", delay: 50 * time.Millisecond}
	f := newFixture(t, fake)
	d := f.seed(t, types.StageDeconstruct, deconstructAnswers)

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.orch.Analyze(context.Background(), d, types.StageDeconstruct)
			if err == nil && res.Text != "insight" {
				err = errors.New("unexpected text " + res.Text)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
	}
	if n := atomic.LoadInt32(&fake.calls); n != 1 {
		t.Fatalf("external calls: got %d want 1", n)
	}
}

func TestAnalyzeBiasCheckStoresLabels(t *testing.T) {
	fake := &scriptedCompleter{reply: "Some sunk cost here and a Status Quo pull. sunk cost again."}
	f := newFixture(t, fake)
	d := f.seed(t, types.StageBiasCheck, scenarioAnswers())

	res, err := f.orch.Analyze(context.Background(), d, types.StageBiasCheck)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	want := []string{"Sunk Cost", "Status Quo"}
	if !reflect.DeepEqual(res.Biases, want) {
		t.Fatalf("Biases: got %v want %v", res.Biases, want)
	}
	stored, ok := f.reload(t, d.ID).Biases()
	if !ok || !reflect.DeepEqual(stored, want) {
		t.Fatalf("stored biases: got %v (%v)", stored, ok)
	}
}

func TestAnalyzeBiasCheckZeroMatches(t *testing.T) {
	fake := &scriptedCompleter{reply: "Balanced reasoning overall."}
	f := newFixture(t, fake)
	d := f.seed(t, types.StageBiasCheck, scenarioAnswers())

	res, err := f.orch.Analyze(context.Background(), d, types.StageBiasCheck)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Biases == nil || len(res.Biases) != 0 {
		t.Fatalf("Biases: got %#v want empty", res.Biases)
	}
	stored, ok := f.reload(t, d.ID).Biases()
	if !ok || len(stored) != 0 {
		t.Fatalf("stored biases: got %v analyzed=%v", stored, ok)
	}
}

func TestAnalyzeFailureWritesNothing(t *testing.T) {
	fake := &scriptedCompleter{err: newError(KindRateLimited, "fake", errors.New("429"))}
	f := newFixture(t, fake)
	d := f.seed(t, types.StageDeconstruct, deconstructAnswers)

	_, err := f.orch.Analyze(context.Background(), d, types.StageDeconstruct)
	if kind, ok := KindOf(err); !ok || kind != KindRateLimited {
		t.Fatalf("Analyze: got %v want rate limited", err)
	}
	if out := f.reload(t, d.ID).InsightSummary; out != nil {
		t.Fatalf("insight stored after failure: %q", *out)
	}

	fake.err = nil
	fake.reply = "   "
	_, err = f.orch.Analyze(context.Background(), d, types.StageDeconstruct)
	if kind, ok := KindOf(err); !ok || kind != KindMalformed {
		t.Fatalf("Analyze: got %v want malformed", err)
	}
}

func TestAnalyzeValidation(t *testing.T) {
	fake := &scriptedCompleter{reply: "x"}
	f := newFixture(t, fake)

	d := f.seed(t, types.StageDeconstruct, map[string]any{"time_horizon": "soon"})
	_, err := f.orch.Analyze(context.Background(), d, types.StageDeconstruct)
	var ve *workflow.ValidationError
	if !errors.As(err, &ve) || len(ve.Fields) != 4 {
		t.Fatalf("Analyze: got %v want validation error with 4 fields", err)
	}

	_, err = f.orch.Analyze(context.Background(), d, types.StageScenarios)
	if !errors.As(err, &ve) {
		t.Fatalf("Analyze future stage: got %v", err)
	}
	if n := atomic.LoadInt32(&fake.calls); n != 0 {
		t.Fatalf("external calls: got %d want 0", n)
	}
}

func TestAnalyzeInputClearedMidCall(t *testing.T) {
	fake := &scriptedCompleter{reply: "insight"}
	f := newFixture(t, fake)
	d := f.seed(t, types.StageDeconstruct, deconstructAnswers)
	fake.during = func() {
		if err := f.db.Model(&types.Decision{}).Where("id = ?", d.ID).Updates(map[string]any{"biggest_fear": nil}).Error; err != nil {
			t.Errorf("clear biggest_fear: %v", err)
		}
	}

	_, err := f.orch.Analyze(context.Background(), d, types.StageDeconstruct)
	var ve *workflow.ValidationError
	if !errors.As(err, &ve) || len(ve.Fields) != 1 || ve.Fields[0] != "biggest_fear" {
		t.Fatalf("Analyze: got %v want validation error on biggest_fear", err)
	}
	if out := f.reload(t, d.ID).InsightSummary; out != nil {
		t.Fatalf("insight stored without its input: %q", *out)
	}
}

func TestAnalyzeOutlivesCancelledCaller(t *testing.T) {
	fake := &scriptedCompleter{reply: "insight", delay: 100 * time.Millisecond}
	f := newFixture(t, fake)
	d := f.seed(t, types.StageDeconstruct, deconstructAnswers)

	ctx, cancel := context.WithCancel(context.Background())
	fake.during = cancel
	res, err := f.orch.Analyze(ctx, d, types.StageDeconstruct)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Text != "insight" {
		t.Fatalf("Analyze: unexpected %+v", res)
	}
	if out := f.reload(t, d.ID).InsightSummary; out == nil || *out != "insight" {
		t.Fatalf("insight not stored after caller cancelled: %v", out)
	}
}

func TestWaitForPeerCancelledIsUnavailable(t *testing.T) {
	f := newFixture(t, &scriptedCompleter{reply: "x"})
	f.orch.cfg.WaitForPeer = 5 * time.Second
	f.orch.cfg.PollInterval = time.Second
	d := f.seed(t, types.StageDeconstruct, deconstructAnswers)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := f.orch.waitForPeer(ctx, d.ID, types.StageDeconstruct)
	if kind, ok := KindOf(err); !ok || kind != KindUnavailable {
		t.Fatalf("waitForPeer: got %v want unavailable", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("waitForPeer: cause lost: %v", err)
	}
}

func TestAnalyzeLockedWithoutOutput(t *testing.T) {
	fake := &scriptedCompleter{reply: "x"}
	f := newFixture(t, fake)
	answers := scenarioAnswers()
	answers["is_locked"] = true
	d := f.seed(t, types.StageComplete, answers)

	if _, err := f.orch.Analyze(context.Background(), d, types.StageScenarios); !errors.Is(err, workflow.ErrLocked) {
		t.Fatalf("Analyze: got %v want ErrLocked", err)
	}
}

func TestScoreComputedOnce(t *testing.T) {
	fake := &scriptedCompleter{reply: `{"clarity_score": 142, "reasoning_score": 70, "risk_awareness_score": 60, "bias_awareness_score": -5, "overall_score": 66, "explanation": "ok"}`}
	f := newFixture(t, fake)

	open := f.seed(t, types.StageLock, nil)
	var ve *workflow.ValidationError
	if _, err := f.orch.Score(context.Background(), open); !errors.As(err, &ve) {
		t.Fatalf("Score unlocked: got %v", err)
	}

	answers := scenarioAnswers()
	answers["is_locked"] = true
	answers["final_decision"] = "go"
	answers["key_reasons"] = "runway"
	d := f.seed(t, types.StageComplete, answers)

	s, err := f.orch.Score(context.Background(), d)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if s.ClarityScore != 100 || s.BiasAwarenessScore != 0 || s.OverallScore != 66 {
		t.Fatalf("Score: unexpected %+v", s)
	}
	fake.reply = `{"clarity_score": 1, "reasoning_score": 1, "risk_awareness_score": 1, "bias_awareness_score": 1}`
	again, err := f.orch.Score(context.Background(), d)
	if err != nil {
		t.Fatalf("Score (again): %v", err)
	}
	if again.ClarityScore != 100 {
		t.Fatalf("Score recomputed: %+v", again)
	}
	if n := atomic.LoadInt32(&fake.calls); n != 1 {
		t.Fatalf("external calls: got %d want 1", n)
	}
}

func TestLocalLocker(t *testing.T) {
	l := NewLocalLocker().(*localLocker)
	now := time.Now()
	l.now = func() time.Time { return now }

	unlock, ok, _ := l.TryLock(context.Background(), "k", time.Second)
	if !ok {
		t.Fatalf("TryLock: expected acquire")
	}
	if _, ok, _ := l.TryLock(context.Background(), "k", time.Second); ok {
		t.Fatalf("TryLock: expected contention")
	}
	now = now.Add(2 * time.Second)
	unlockLate, ok, _ := l.TryLock(context.Background(), "k", time.Second)
	if !ok {
		t.Fatalf("TryLock: expected acquire after expiry")
	}
	// The stale holder must not release the new holder's lock.
	unlock()
	if _, ok, _ := l.TryLock(context.Background(), "k", time.Second); ok {
		t.Fatalf("TryLock: stale unlock released a newer lock")
	}
	unlockLate()
	if _, ok, _ := l.TryLock(context.Background(), "k", time.Second); !ok {
		t.Fatalf("TryLock: expected acquire after unlock")
	}
}
