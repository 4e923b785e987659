package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/domain"
)

// SeedDecision inserts a decision owned by userID at the given stage.
func SeedDecision(tb testing.TB, tx *gorm.DB, userID uuid.UUID, stage types.Stage) *types.Decision {
	tb.Helper()
	now := time.Now().UTC()
	d := &types.Decision{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     "Seed decision",
		Stage:     stage,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.Create(d).Error; err != nil {
		tb.Fatalf("seed decision: %v", err)
	}
	return d
}

// SeedLockedDecision inserts a completed, locked decision with every answer
// filled in.
func SeedLockedDecision(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *types.Decision {
	tb.Helper()
	now := time.Now().UTC()
	d := &types.Decision{
		ID:                uuid.New(),
		UserID:            userID,
		Title:             "Locked decision",
		Stage:             types.StageComplete,
		IsLocked:          true,
		LockedAt:          &now,
		TimeHorizon:       PtrString("a year"),
		Reversibility:     PtrString("reversible"),
		BiggestFear:       PtrString("regret"),
		SuccessDefinition: PtrString("peace of mind"),
		Stakeholders:      PtrString("family"),
		BestCase:          PtrString("it works"),
		WorstCase:         PtrString("it does not"),
		LikelyCase:        PtrString("somewhere between"),
		RippleEffects:     PtrString("a move"),
		FinalDecision:     PtrString("go"),
		KeyReasons:        PtrString("timing"),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed locked decision: %v", err)
	}
	return d
}

func SeedAccess(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, tier string, expiresAt *time.Time) *types.UserAccess {
	tb.Helper()
	now := time.Now().UTC()
	a := &types.UserAccess{
		UserID:    userID,
		Tier:      tier,
		Source:    "fixture",
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed access: %v", err)
	}
	return a
}

func PtrString(s string) *string { return &s }

func PtrTime(t time.Time) *time.Time { return &t }
