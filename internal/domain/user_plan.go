package domain

import "time"

// AssignmentStatus tracks where a user stands with an assigned plan.
type AssignmentStatus string

const (
	AssignmentActive    AssignmentStatus = "active"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentArchived  AssignmentStatus = "archived"
)

func ValidAssignmentStatus(s AssignmentStatus) bool {
	return s == AssignmentActive || s == AssignmentCompleted || s == AssignmentArchived
}

// UserPlan links a user to a plan. The (user, plan) pair is unique; assigning
// an already-assigned plan updates status and timestamp instead of duplicating.
type UserPlan struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	UserID     uint             `gorm:"not null;uniqueIndex:idx_user_plans_pair" json:"userId"`
	PlanID     uint             `gorm:"not null;uniqueIndex:idx_user_plans_pair" json:"planId"`
	Status     AssignmentStatus `gorm:"size:16;not null;default:active" json:"status"`
	AssignedAt time.Time        `gorm:"not null" json:"assignedAt"`

	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Plan Plan `gorm:"constraint:OnDelete:CASCADE" json:"plan,omitempty"`
}
