package domain

import "time"

// PasswordReset is one issued recovery code for an email address.
//
// Lifecycle: created → verified (correct code submitted before expiry) → used
// (password changed, used_at set). A row expires once now passes ExpiresAt,
// whatever its state; there is no way back from used or expired. Multiple
// historical rows per email are retained so issuance can be rate limited.
type PasswordReset struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"userId"`
	Email     string     `gorm:"size:255;not null;index" json:"email"`
	Code      string     `gorm:"size:6;not null" json:"-"`
	Verified  bool       `gorm:"not null;default:false" json:"verified"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	ExpiresAt time.Time  `gorm:"not null" json:"expiresAt"`
	CreatedAt time.Time  `json:"createdAt"`

	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (PasswordReset) TableName() string {
	return "password_resets"
}

// Usable reports whether the code can still take part in a reset: not yet
// consumed and strictly before its expiry.
func (p *PasswordReset) Usable(now time.Time) bool {
	return p.UsedAt == nil && p.ExpiresAt.After(now)
}
