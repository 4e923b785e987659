package decision

import (
	"time"

	"github.com/google/uuid"
)

// Score is the one-time quality assessment of a locked decision. All five
// scores are in [0,100].
type Score struct {
	DecisionID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"decision_id"`
	ClarityScore       int       `gorm:"column:clarity_score;not null" json:"clarity_score"`
	ReasoningScore     int       `gorm:"column:reasoning_score;not null" json:"reasoning_score"`
	RiskAwarenessScore int       `gorm:"column:risk_awareness_score;not null" json:"risk_awareness_score"`
	BiasAwarenessScore int       `gorm:"column:bias_awareness_score;not null" json:"bias_awareness_score"`
	OverallScore       int       `gorm:"column:overall_score;not null" json:"overall_score"`
	Explanation        string    `gorm:"column:explanation;type:text;not null;default:''" json:"explanation"`
	CreatedAt          time.Time `gorm:"not null" json:"created_at"`
}

func (Score) TableName() string { return "decision_score" }

// Reflection is a follow-up note written after a decision was locked.
type Reflection struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DecisionID uuid.UUID `gorm:"type:uuid;not null;index" json:"decision_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Body       string    `gorm:"column:body;type:text;not null" json:"body"`
	Outcome    string    `gorm:"column:outcome;type:text;not null;default:''" json:"outcome,omitempty"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
}

func (Reflection) TableName() string { return "decision_reflection" }
