package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/domain"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/dbctx"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
)

// UserAccessRepo reads and writes the tier table kept in sync by billing.
type UserAccessRepo interface {
	Get(dbc dbctx.Context, userID uuid.UUID) (*types.UserAccess, error)
	Upsert(dbc dbctx.Context, userID uuid.UUID, tier, source string, expiresAt *time.Time) error
}

type userAccessRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserAccessRepo(db *gorm.DB, baseLog *logger.Logger) UserAccessRepo {
	return &userAccessRepo{db: db, log: baseLog.With("repo", "UserAccessRepo")}
}

func (r *userAccessRepo) Get(dbc dbctx.Context, userID uuid.UUID) (*types.UserAccess, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.UserAccess
	if err := dbc.DB(r.db).Where("user_id = ?", userID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.UserID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *userAccessRepo) Upsert(dbc dbctx.Context, userID uuid.UUID, tier, source string, expiresAt *time.Time) error {
	now := time.Now().UTC()
	row := &types.UserAccess{
		UserID:    userID,
		Tier:      strings.ToLower(strings.TrimSpace(tier)),
		Source:    source,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"tier", "source", "expires_at", "updated_at"}),
		}).
		Create(row).Error
}
