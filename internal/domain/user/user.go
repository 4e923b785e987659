package user

import (
	"time"

	"github.com/google/uuid"
)

// Access mirrors the subscription state maintained by the billing
// integration. Tier is "free" or "paid".
type Access struct {
	UserID    uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	Tier      string     `gorm:"column:tier;type:text;not null;default:'free'" json:"tier"`
	Source    string     `gorm:"column:source;type:text;not null;default:''" json:"source,omitempty"`
	ExpiresAt *time.Time `gorm:"column:expires_at" json:"expires_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}

func (Access) TableName() string { return "user_access" }

// Preferences holds per-subject UI flags.
type Preferences struct {
	UserID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	GuideDismissed      bool      `gorm:"column:guide_dismissed;not null;default:false" json:"guide_dismissed"`
	OnboardingCompleted bool      `gorm:"column:onboarding_completed;not null;default:false" json:"onboarding_completed"`
	CreatedAt           time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time `gorm:"not null" json:"updated_at"`
}

func (Preferences) TableName() string { return "user_preferences" }
