package decision

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Reversibility values accepted for the deconstruct stage.
const (
	Reversible          = "reversible"
	PartiallyReversible = "partially_reversible"
	Irreversible        = "irreversible"
)

// Decision is one subject's record moving through the guided workflow.
// Nil string pointers mean "not supplied".
type Decision struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string    `gorm:"column:title;type:text;not null" json:"title"`
	Description string    `gorm:"column:description;type:text;not null;default:''" json:"description"`
	Category    string    `gorm:"column:category;type:text;not null;default:''" json:"category"`

	Stage    Stage      `gorm:"column:stage;not null;default:1;index" json:"stage"`
	IsLocked bool       `gorm:"column:is_locked;not null;default:false;index" json:"is_locked"`
	LockedAt *time.Time `gorm:"column:locked_at" json:"locked_at,omitempty"`

	// Deconstruct
	TimeHorizon       *string `gorm:"column:time_horizon;type:text" json:"time_horizon,omitempty"`
	Reversibility     *string `gorm:"column:reversibility;type:text" json:"reversibility,omitempty"`
	BiggestFear       *string `gorm:"column:biggest_fear;type:text" json:"biggest_fear,omitempty"`
	SuccessDefinition *string `gorm:"column:success_definition;type:text" json:"success_definition,omitempty"`
	Stakeholders      *string `gorm:"column:stakeholders;type:text" json:"stakeholders,omitempty"`
	InsightSummary    *string `gorm:"column:insight_summary;type:text" json:"insight_summary,omitempty"`

	// Scenarios
	BestCase         *string `gorm:"column:best_case;type:text" json:"best_case,omitempty"`
	WorstCase        *string `gorm:"column:worst_case;type:text" json:"worst_case,omitempty"`
	LikelyCase       *string `gorm:"column:likely_case;type:text" json:"likely_case,omitempty"`
	ScenarioAnalysis *string `gorm:"column:scenario_analysis;type:text" json:"scenario_analysis,omitempty"`

	// Bias check. DetectedBiases is NULL until analyzed; "[]" is a real result.
	BiasAnalysis   *string        `gorm:"column:bias_analysis;type:text" json:"bias_analysis,omitempty"`
	DetectedBiases datatypes.JSON `gorm:"column:detected_biases;type:jsonb" json:"detected_biases,omitempty"`

	// Second order
	RippleEffects       *string `gorm:"column:ripple_effects;type:text" json:"ripple_effects,omitempty"`
	RegretCheck         *string `gorm:"column:regret_check;type:text" json:"regret_check,omitempty"`
	SecondOrderAnalysis *string `gorm:"column:second_order_analysis;type:text" json:"second_order_analysis,omitempty"`

	// Lock
	FinalDecision *string    `gorm:"column:final_decision;type:text" json:"final_decision,omitempty"`
	KeyReasons    *string    `gorm:"column:key_reasons;type:text" json:"key_reasons,omitempty"`
	AcceptedRisks *string    `gorm:"column:accepted_risks;type:text" json:"accepted_risks,omitempty"`
	ReviewDate    *time.Time `gorm:"column:review_date" json:"review_date,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (Decision) TableName() string { return "decision" }

// Biases returns the stored bias labels and whether the bias analysis has run.
func (d *Decision) Biases() ([]string, bool) {
	if d == nil || len(d.DetectedBiases) == 0 {
		return nil, false
	}
	var out []string
	if err := json.Unmarshal(d.DetectedBiases, &out); err != nil {
		return nil, false
	}
	if out == nil {
		out = []string{}
	}
	return out, true
}

// EncodeBiases renders labels for the detected_biases column. A nil slice is
// stored as an empty list, never as NULL.
func EncodeBiases(labels []string) datatypes.JSON {
	if labels == nil {
		labels = []string{}
	}
	raw, _ := json.Marshal(labels)
	return datatypes.JSON(raw)
}

// Summary is the dashboard projection of a decision.
type Summary struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Category  string     `json:"category"`
	Stage     Stage      `json:"stage"`
	IsLocked  bool       `json:"is_locked"`
	LockedAt  *time.Time `json:"locked_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (d *Decision) Summary() Summary {
	return Summary{
		ID:        d.ID,
		Title:     d.Title,
		Category:  d.Category,
		Stage:     d.Stage,
		IsLocked:  d.IsLocked,
		LockedAt:  d.LockedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
