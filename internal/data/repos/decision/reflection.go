package decision

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/domain"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/dbctx"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
)

type ReflectionRepo interface {
	Create(dbc dbctx.Context, row *types.DecisionReflection) error
	ListByDecision(dbc dbctx.Context, decisionID uuid.UUID) ([]*types.DecisionReflection, error)
}

type reflectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReflectionRepo(db *gorm.DB, baseLog *logger.Logger) ReflectionRepo {
	return &reflectionRepo{db: db, log: baseLog.With("repo", "DecisionReflectionRepo")}
}

func (r *reflectionRepo) Create(dbc dbctx.Context, row *types.DecisionReflection) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return withRetry(dbc.Ctx, func() error {
		return dbc.DB(r.db).Create(row).Error
	})
}

func (r *reflectionRepo) ListByDecision(dbc dbctx.Context, decisionID uuid.UUID) ([]*types.DecisionReflection, error) {
	var out []*types.DecisionReflection
	if decisionID == uuid.Nil {
		return out, nil
	}
	err := withRetry(dbc.Ctx, func() error {
		out = out[:0]
		return dbc.DB(r.db).
			Where("decision_id = ?", decisionID).
			Order("created_at ASC").
			Find(&out).Error
	})
	return out, err
}
