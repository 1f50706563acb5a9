package domain

import "time"

// UserExercise tracks the working weight a user lifts for one exercise.
// PreviousWeight holds only the value immediately prior to the last update,
// a history of depth one.
type UserExercise struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;uniqueIndex:idx_user_exercises_pair" json:"userId"`
	ExerciseID      string     `gorm:"size:64;not null;uniqueIndex:idx_user_exercises_pair" json:"exerciseId"`
	ExerciseName    string     `gorm:"size:200;not null" json:"exerciseName"`
	Weight          float64    `gorm:"not null;default:0" json:"weight"`
	PreviousWeight  *float64   `json:"previousWeight,omitempty"`
	WeightUpdatedAt *time.Time `json:"weightUpdatedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`

	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
