package decision

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/domain"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/dbctx"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
)

type ScoreRepo interface {
	Get(dbc dbctx.Context, decisionID uuid.UUID) (*types.DecisionScore, error)
	// CreateIfAbsent inserts s unless a score already exists, then returns
	// whichever row is stored.
	CreateIfAbsent(dbc dbctx.Context, s *types.DecisionScore) (*types.DecisionScore, error)
}

type scoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScoreRepo(db *gorm.DB, baseLog *logger.Logger) ScoreRepo {
	return &scoreRepo{db: db, log: baseLog.With("repo", "DecisionScoreRepo")}
}

func (r *scoreRepo) Get(dbc dbctx.Context, decisionID uuid.UUID) (*types.DecisionScore, error) {
	if decisionID == uuid.Nil {
		return nil, nil
	}
	var row types.DecisionScore
	err := withRetry(dbc.Ctx, func() error {
		return dbc.DB(r.db).Where("decision_id = ?", decisionID).Limit(1).Find(&row).Error
	})
	if err != nil {
		return nil, err
	}
	if row.DecisionID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *scoreRepo) CreateIfAbsent(dbc dbctx.Context, s *types.DecisionScore) (*types.DecisionScore, error) {
	if s == nil || s.DecisionID == uuid.Nil {
		return nil, fmt.Errorf("score with decision id required")
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	err := withRetry(dbc.Ctx, func() error {
		return dbc.DB(r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(s).Error
	})
	if err != nil {
		return nil, err
	}
	return r.Get(dbc, s.DecisionID)
}
