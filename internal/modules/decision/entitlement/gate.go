package entitlement

import (
	"context"
	"strings"

	"github.com/google/uuid"

	types "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/domain"
)

type Tier string

const (
	TierFree Tier = "free"
	TierPaid Tier = "paid"
)

// ParseTier maps stored values to a tier. Anything unrecognised is free.
func ParseTier(raw string) Tier {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "paid", "pro", "premium":
		return TierPaid
	default:
		return TierFree
	}
}

// TierSource resolves a subject's current access tier.
type TierSource interface {
	GetAccessTier(ctx context.Context, userID uuid.UUID) (Tier, error)
}

// FreeBoundary is the last stage a free subject may work in.
const FreeBoundary = types.StageDeconstruct

// CanAdvance reports whether a subject on tier may move forward from stage.
func CanAdvance(tier Tier, from types.Stage) bool {
	if tier == TierPaid {
		return true
	}
	return from < FreeBoundary
}

// Gate combines a tier lookup with CanAdvance. Nothing is cached: the tier is
// re-read on every check.
type Gate struct {
	source TierSource
}

func NewGate(source TierSource) *Gate {
	return &Gate{source: source}
}

func (g *Gate) Tier(ctx context.Context, userID uuid.UUID) (Tier, error) {
	if g == nil || g.source == nil {
		return TierFree, nil
	}
	return g.source.GetAccessTier(ctx, userID)
}

func (g *Gate) Allow(ctx context.Context, userID uuid.UUID, from types.Stage) (bool, Tier, error) {
	tier, err := g.Tier(ctx, userID)
	if err != nil {
		return false, TierFree, err
	}
	return CanAdvance(tier, from), tier, nil
}
