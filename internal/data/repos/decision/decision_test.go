package decision

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/data/repos/testutil"
	types "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/domain"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/dbctx"
)

func TestDecisionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewDecisionRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	owner := uuid.New()
	d := &types.Decision{UserID: owner, Title: "Take the offer", Category: "career"}
	if err := repo.Create(dbc, d); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.ID == uuid.Nil || d.Stage != types.StageDeconstruct {
		t.Fatalf("Create: unexpected defaults %+v", d)
	}

	got, err := repo.GetOwned(dbc, owner, d.ID)
	if err != nil {
		t.Fatalf("GetOwned: %v", err)
	}
	if got == nil || got.Title != "Take the offer" {
		t.Fatalf("GetOwned: unexpected %+v", got)
	}
	other, err := repo.GetOwned(dbc, uuid.New(), d.ID)
	if err != nil {
		t.Fatalf("GetOwned (other): %v", err)
	}
	if other != nil {
		t.Fatalf("GetOwned (other): expected nil")
	}

	n, err := repo.MergeFields(dbc, d.ID, map[string]any{"time_horizon": "a year"})
	if err != nil || n != 1 {
		t.Fatalf("MergeFields: n=%d err=%v", n, err)
	}
	n, err = repo.MergeFields(dbc, d.ID, map[string]any{"biggest_fear": "regret"})
	if err != nil || n != 1 {
		t.Fatalf("MergeFields (second): n=%d err=%v", n, err)
	}
	got, _ = repo.GetByID(dbc, d.ID)
	if got.TimeHorizon == nil || *got.TimeHorizon != "a year" || got.BiggestFear == nil || *got.BiggestFear != "regret" {
		t.Fatalf("MergeFields: fields not merged: %+v", got)
	}

	n, err = repo.AdvanceStage(dbc, d.ID, types.StageScenarios)
	if err != nil || n != 0 {
		t.Fatalf("AdvanceStage (stale): n=%d err=%v", n, err)
	}
	n, err = repo.AdvanceStage(dbc, d.ID, types.StageDeconstruct)
	if err != nil || n != 1 {
		t.Fatalf("AdvanceStage: n=%d err=%v", n, err)
	}
	got, _ = repo.GetByID(dbc, d.ID)
	if got.Stage != types.StageScenarios {
		t.Fatalf("AdvanceStage: want scenarios got %s", got.Stage)
	}

	list, err := repo.ListByUser(dbc, owner, 10)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByUser: n=%d err=%v", len(list), err)
	}
}

func TestDecisionRepoStoreOutputWriteOnce(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewDecisionRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	d := testutil.SeedDecision(t, tx, uuid.New(), types.StageBiasCheck)

	n, err := repo.StoreOutput(dbc, d.ID, "bias_analysis", map[string]any{
		"bias_analysis":   "first",
		"detected_biases": types.EncodeBiases([]string{}),
	})
	if err != nil || n != 1 {
		t.Fatalf("StoreOutput: n=%d err=%v", n, err)
	}
	n, err = repo.StoreOutput(dbc, d.ID, "bias_analysis", map[string]any{"bias_analysis": "second"})
	if err != nil || n != 0 {
		t.Fatalf("StoreOutput (again): n=%d err=%v", n, err)
	}
	got, _ := repo.GetByID(dbc, d.ID)
	if got.BiasAnalysis == nil || *got.BiasAnalysis != "first" {
		t.Fatalf("StoreOutput: output overwritten: %v", got.BiasAnalysis)
	}
	biases, ok := got.Biases()
	if !ok || len(biases) != 0 {
		t.Fatalf("StoreOutput: expected analyzed empty bias list, got %v ok=%v", biases, ok)
	}
}

func TestDecisionRepoClearAfterStoredOutput(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewDecisionRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	d := testutil.SeedDecision(t, tx, uuid.New(), types.StageDeconstruct)
	n, err := repo.MergeFields(dbc, d.ID, map[string]any{
		"time_horizon":       "two years",
		"reversibility":      "reversible",
		"biggest_fear":       "regret",
		"success_definition": "calm",
		"stakeholders":       "family",
	})
	if err != nil || n != 1 {
		t.Fatalf("MergeFields: n=%d err=%v", n, err)
	}

	inputs := []string{"time_horizon", "reversibility", "biggest_fear", "success_definition", "stakeholders"}
	n, err = repo.StoreOutput(dbc, d.ID, "insight_summary", map[string]any{"insight_summary": "insight"}, inputs...)
	if err != nil || n != 1 {
		t.Fatalf("StoreOutput: n=%d err=%v", n, err)
	}
	n, err = repo.MergeFields(dbc, d.ID, map[string]any{"biggest_fear": nil}, "bias_analysis", "insight_summary")
	if err != nil || n != 0 {
		t.Fatalf("MergeFields (clear): n=%d err=%v", n, err)
	}
	got, _ := repo.GetByID(dbc, d.ID)
	if got.InsightSummary == nil || got.BiggestFear == nil {
		t.Fatalf("MergeFields (clear): insight=%v biggest_fear=%v", got.InsightSummary, got.BiggestFear)
	}

	// An edit with no output guard still applies.
	n, err = repo.MergeFields(dbc, d.ID, map[string]any{"biggest_fear": "loneliness"})
	if err != nil || n != 1 {
		t.Fatalf("MergeFields (edit): n=%d err=%v", n, err)
	}
}

func TestDecisionRepoStoreOutputRequiresInputs(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewDecisionRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	d := testutil.SeedDecision(t, tx, uuid.New(), types.StageSecondOrder)

	n, err := repo.StoreOutput(dbc, d.ID, "second_order_analysis", map[string]any{"second_order_analysis": "x"}, "ripple_effects")
	if err != nil || n != 0 {
		t.Fatalf("StoreOutput (missing input): n=%d err=%v", n, err)
	}
	got, _ := repo.GetByID(dbc, d.ID)
	if got.SecondOrderAnalysis != nil {
		t.Fatalf("StoreOutput: stored without input: %q", *got.SecondOrderAnalysis)
	}
}

func TestDecisionRepoLock(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewDecisionRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	d := testutil.SeedDecision(t, tx, uuid.New(), types.StageLock)

	now := time.Now().UTC()
	locked := *d
	locked.FinalDecision = testutil.PtrString("Accept")
	locked.KeyReasons = testutil.PtrString("growth")
	locked.IsLocked = true
	locked.LockedAt = &now
	locked.Stage = types.StageComplete

	n, err := repo.Lock(dbc, &locked)
	if err != nil || n != 1 {
		t.Fatalf("Lock: n=%d err=%v", n, err)
	}
	n, err = repo.Lock(dbc, &locked)
	if err != nil || n != 0 {
		t.Fatalf("Lock (again): n=%d err=%v", n, err)
	}
	n, err = repo.MergeFields(dbc, d.ID, map[string]any{"time_horizon": "late edit"})
	if err != nil || n != 0 {
		t.Fatalf("MergeFields (locked): n=%d err=%v", n, err)
	}
	got, _ := repo.GetByID(dbc, d.ID)
	if !got.IsLocked || got.Stage != types.StageComplete || got.LockedAt == nil || got.TimeHorizon != nil {
		t.Fatalf("Lock: unexpected row %+v", got)
	}
}

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "serialization", err: &pgconn.PgError{Code: "40001"}, want: true},
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}, want: true},
		{name: "connection", err: &pgconn.PgError{Code: "08006"}, want: true},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, want: false},
		{name: "sqlite busy", err: errors.New("database is locked"), want: true},
		{name: "other", err: errors.New("boom"), want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTransient(tc.err); got != tc.want {
				t.Fatalf("IsTransient: want %v got %v", tc.want, got)
			}
		})
	}
}

func TestWithRetryStopsOnPermanent(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), func() error {
		calls++
		return errors.New("constraint")
	})
	if err == nil || calls != 1 {
		t.Fatalf("withRetry: calls=%d err=%v", calls, err)
	}

	calls = 0
	err = withRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &pgconn.PgError{Code: "40001"}
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("withRetry (transient): calls=%d err=%v", calls, err)
	}
}
