package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/data/repos"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/modules/decision/entitlement"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/modules/decision/workflow"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/ctxutil"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/dbctx"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
)

// accessTierSource reads the tier billing keeps in user_access. No row, or
// an expired grant, is the free tier.
type accessTierSource struct {
	access repos.UserAccessRepo
	now    func() time.Time
}

func NewAccessTierSource(access repos.UserAccessRepo) entitlement.TierSource {
	return &accessTierSource{access: access, now: time.Now}
}

func (s *accessTierSource) GetAccessTier(ctx context.Context, userID uuid.UUID) (entitlement.Tier, error) {
	row, err := s.access.Get(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return entitlement.TierFree, err
	}
	if row == nil {
		return entitlement.TierFree, nil
	}
	if row.ExpiresAt != nil && !s.now().Before(*row.ExpiresAt) {
		return entitlement.TierFree, nil
	}
	return entitlement.ParseTier(row.Tier), nil
}

type EntitlementState struct {
	Tier entitlement.Tier `json:"tier"`
	// CanAdvancePastFree is false for subjects who will hit the upgrade
	// prompt when leaving the first stage.
	CanAdvancePastFree bool `json:"can_advance_past_free"`
	FreeBoundary       string `json:"free_boundary"`
}

type EntitlementService interface {
	Get(ctx context.Context) (*EntitlementState, error)
}

type entitlementService struct {
	log  *logger.Logger
	gate *entitlement.Gate
}

func NewEntitlementService(log *logger.Logger, gate *entitlement.Gate) EntitlementService {
	return &entitlementService{log: log.With("service", "EntitlementService"), gate: gate}
}

func (s *entitlementService) Get(ctx context.Context) (*EntitlementState, error) {
	uid := ctxutil.SubjectID(ctx)
	if uid == uuid.Nil {
		return nil, ErrUnauthorized
	}
	tier, err := s.gate.Tier(ctx, uid)
	if err != nil {
		return nil, workflow.Persistence("read entitlement", err)
	}
	return &EntitlementState{
		Tier:               tier,
		CanAdvancePastFree: entitlement.CanAdvance(tier, entitlement.FreeBoundary),
		FreeBoundary:       entitlement.FreeBoundary.String(),
	}, nil
}
