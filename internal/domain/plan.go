package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// PlanCategory separates training programs from nutrition guides.
type PlanCategory string

const (
	PlanTraining  PlanCategory = "training"
	PlanNutrition PlanCategory = "nutrition"
)

func ValidPlanCategory(c PlanCategory) bool {
	return c == PlanTraining || c == PlanNutrition
}

// PlanDay is one ordered day of a structured plan schedule.
type PlanDay struct {
	Title     string `json:"title"`
	Exercises []uint `json:"exercises"`
}

// PlanSchedule is the structured counterpart of a plan's free-text content:
// an ordered list of days, each referencing catalog exercises in order.
// Stored as a JSON column.
type PlanSchedule []PlanDay

func (s PlanSchedule) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *PlanSchedule) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("unsupported plan schedule column type")
	}
}

// Plan is an admin-authored training or nutrition plan.
type Plan struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Title       string       `gorm:"size:200;not null" json:"title"`
	Description *string      `json:"description,omitempty"`
	Content     string       `gorm:"type:text;not null" json:"content"`
	Schedule    PlanSchedule `gorm:"type:jsonb" json:"schedule,omitempty"`
	Category    PlanCategory `gorm:"size:16;not null;default:training" json:"category"`
	CreatedByID *uint        `gorm:"column:created_by" json:"createdBy,omitempty"`
	CreatedBy   *User        `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL" json:"creator,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}
