package domain

import (
	"regexp"
	"time"
)

// Bounds for the optional sets/reps prescription on a catalog exercise.
const (
	MinSets = 1
	MaxSets = 20
	MinReps = 1
	MaxReps = 100
)

var youtubeRe = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.be)/.+$`)

// ValidYouTubeURL reports whether url points at YouTube. Empty is allowed,
// the link is optional.
func ValidYouTubeURL(url string) bool {
	return url == "" || youtubeRe.MatchString(url)
}

// Exercise is one entry of the admin-managed exercise catalog.
// A variant link points at an alternative execution of the same movement and
// must never reference the exercise itself.
type Exercise struct {
	ID                uint         `gorm:"primaryKey" json:"id"`
	Name              string       `gorm:"size:200;not null" json:"name"`
	Category          *string      `gorm:"size:100" json:"category,omitempty"`
	Sets              *int         `json:"sets,omitempty"`
	Reps              *int         `json:"reps,omitempty"`
	Notes             *string      `json:"notes,omitempty"`
	YouTubeURL        *string      `gorm:"column:youtube_url;size:500" json:"youtubeUrl,omitempty"`
	SuggestedWeight   *float64     `json:"suggestedWeight,omitempty"`
	VariantExerciseID *uint        `gorm:"index" json:"variantExerciseId,omitempty"`
	VariantExercise   *Exercise    `gorm:"foreignKey:VariantExerciseID;constraint:OnDelete:SET NULL" json:"variantExercise,omitempty"`
	VideoObjectKey    *string      `gorm:"size:255" json:"-"`
	CreatedByID       *uint        `gorm:"column:created_by" json:"createdBy,omitempty"`
	CreatedBy         *User        `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL" json:"creator,omitempty"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}
