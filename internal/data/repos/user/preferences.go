package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/domain"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/dbctx"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
)

type UserPreferencesRepo interface {
	Ensure(dbc dbctx.Context, userID uuid.UUID) error
	Get(dbc dbctx.Context, userID uuid.UUID) (*types.UserPreferences, error)
	UpdateFields(dbc dbctx.Context, userID uuid.UUID, updates map[string]any) error
}

type userPreferencesRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserPreferencesRepo(db *gorm.DB, baseLog *logger.Logger) UserPreferencesRepo {
	return &userPreferencesRepo{db: db, log: baseLog.With("repo", "UserPreferencesRepo")}
}

func (r *userPreferencesRepo) Ensure(dbc dbctx.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&types.UserPreferences{UserID: userID, CreatedAt: now, UpdatedAt: now}).Error
}

func (r *userPreferencesRepo) Get(dbc dbctx.Context, userID uuid.UUID) (*types.UserPreferences, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.UserPreferences
	if err := dbc.DB(r.db).Where("user_id = ?", userID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.UserID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *userPreferencesRepo) UpdateFields(dbc dbctx.Context, userID uuid.UUID, updates map[string]any) error {
	if userID == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).
		Model(&types.UserPreferences{}).
		Where("user_id = ?", userID).
		Updates(updates).Error
}
