package decision

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/domain"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/dbctx"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
)

// DecisionRepo is the decision record store. Every write is a single-row
// UPDATE guarded by a WHERE clause, so concurrent writers never tear a row.
// Methods returning a row count report 0 when the guard did not match.
type DecisionRepo interface {
	Create(dbc dbctx.Context, d *types.Decision) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Decision, error)
	GetOwned(dbc dbctx.Context, userID, id uuid.UUID) (*types.Decision, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Decision, error)

	// MergeFields sets the given columns on an unlocked decision whose
	// requireNull columns are all still NULL.
	MergeFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any, requireNull ...string) (int64, error)
	// AdvanceStage moves an unlocked decision from `from` to from+1.
	AdvanceStage(dbc dbctx.Context, id uuid.UUID, from types.Stage) (int64, error)
	// StoreOutput writes analysis columns only while outputColumn is still NULL
	// and every requireSet column holds a value.
	StoreOutput(dbc dbctx.Context, id uuid.UUID, outputColumn string, updates map[string]any, requireSet ...string) (int64, error)
	// Lock applies the final fields, flips is_locked and completes the stage.
	Lock(dbc dbctx.Context, locked *types.Decision) (int64, error)
}

type decisionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDecisionRepo(db *gorm.DB, baseLog *logger.Logger) DecisionRepo {
	return &decisionRepo{db: db, log: baseLog.With("repo", "DecisionRepo")}
}

func (r *decisionRepo) Create(dbc dbctx.Context, d *types.Decision) error {
	if d == nil {
		return fmt.Errorf("decision required")
	}
	now := time.Now().UTC()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if !d.Stage.Valid() {
		d.Stage = types.StageDeconstruct
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	return withRetry(dbc.Ctx, func() error {
		return dbc.DB(r.db).Create(d).Error
	})
}

func (r *decisionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Decision, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Decision
	err := withRetry(dbc.Ctx, func() error {
		return dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error
	})
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *decisionRepo) GetOwned(dbc dbctx.Context, userID, id uuid.UUID) (*types.Decision, error) {
	if userID == uuid.Nil || id == uuid.Nil {
		return nil, nil
	}
	var row types.Decision
	err := withRetry(dbc.Ctx, func() error {
		return dbc.DB(r.db).Where("id = ? AND user_id = ?", id, userID).Limit(1).Find(&row).Error
	})
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *decisionRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Decision, error) {
	var out []*types.Decision
	if userID == uuid.Nil {
		return out, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	err := withRetry(dbc.Ctx, func() error {
		out = out[:0]
		return dbc.DB(r.db).
			Where("user_id = ?", userID).
			Order("updated_at DESC").
			Limit(limit).
			Find(&out).Error
	})
	return out, err
}

func (r *decisionRepo) MergeFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any, requireNull ...string) (int64, error) {
	if id == uuid.Nil {
		return 0, nil
	}
	payload := withUpdatedAt(updates)
	var affected int64
	err := withRetry(dbc.Ctx, func() error {
		q := dbc.DB(r.db).
			Model(&types.Decision{}).
			Where("id = ? AND is_locked = ?", id, false)
		for _, col := range requireNull {
			q = q.Where(fmt.Sprintf("%s IS NULL", col))
		}
		res := q.Updates(payload)
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

func (r *decisionRepo) AdvanceStage(dbc dbctx.Context, id uuid.UUID, from types.Stage) (int64, error) {
	var affected int64
	err := withRetry(dbc.Ctx, func() error {
		res := dbc.DB(r.db).
			Model(&types.Decision{}).
			Where("id = ? AND stage = ? AND is_locked = ?", id, from, false).
			Updates(map[string]any{
				"stage":      from + 1,
				"updated_at": time.Now().UTC(),
			})
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

func (r *decisionRepo) StoreOutput(dbc dbctx.Context, id uuid.UUID, outputColumn string, updates map[string]any, requireSet ...string) (int64, error) {
	if outputColumn == "" {
		return 0, fmt.Errorf("output column required")
	}
	payload := withUpdatedAt(updates)
	var affected int64
	err := withRetry(dbc.Ctx, func() error {
		q := dbc.DB(r.db).
			Model(&types.Decision{}).
			Where("id = ? AND is_locked = ?", id, false).
			Where(fmt.Sprintf("%s IS NULL", outputColumn))
		for _, col := range requireSet {
			q = q.Where(fmt.Sprintf("%s IS NOT NULL", col))
		}
		res := q.Updates(payload)
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

func (r *decisionRepo) Lock(dbc dbctx.Context, locked *types.Decision) (int64, error) {
	if locked == nil || !locked.IsLocked || locked.LockedAt == nil {
		return 0, fmt.Errorf("lock requires a locked decision with locked_at")
	}
	updates := map[string]any{
		"final_decision": locked.FinalDecision,
		"key_reasons":    locked.KeyReasons,
		"accepted_risks": locked.AcceptedRisks,
		"review_date":    locked.ReviewDate,
		"is_locked":      true,
		"locked_at":      *locked.LockedAt,
		"stage":          types.StageComplete,
		"updated_at":     time.Now().UTC(),
	}
	var affected int64
	err := withRetry(dbc.Ctx, func() error {
		res := dbc.DB(r.db).
			Model(&types.Decision{}).
			Where("id = ? AND is_locked = ? AND stage = ?", locked.ID, false, types.StageLock).
			Updates(updates)
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

func withUpdatedAt(updates map[string]any) map[string]any {
	out := make(map[string]any, len(updates)+1)
	for k, v := range updates {
		out[k] = v
	}
	if _, ok := out["updated_at"]; !ok {
		out["updated_at"] = time.Now().UTC()
	}
	return out
}
