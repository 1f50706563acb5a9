package domain

import (
	"regexp"
	"strings"
	"time"
)

// Role distinguishes regular members from administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ValidRole reports whether r is a role the system knows about.
func ValidRole(r Role) bool {
	return r == RoleUser || r == RoleAdmin
}

// DocumentType is the kind of identity document a user registered with.
// The username field holds the document number and its format depends on this.
type DocumentType string

const (
	DocumentDNI      DocumentType = "dni"
	DocumentPassport DocumentType = "pasaporte"
)

func ValidDocumentType(d DocumentType) bool {
	return d == DocumentDNI || d == DocumentPassport
}

var (
	dniRe      = regexp.MustCompile(`^\d+$`)
	passportRe = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe    = regexp.MustCompile(`^[0-9 +\-()]{7,20}$`)
)

// ValidEmail is the minimal shape check used outside of binding-tag validation.
func ValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

func ValidPhone(phone string) bool {
	return phoneRe.MatchString(phone)
}

// NormalizeUsername validates the document number against its document type and
// returns it in canonical form (passports are uppercased). The second return
// value is false when the format does not match the document type.
func NormalizeUsername(docType DocumentType, username string) (string, bool) {
	username = strings.TrimSpace(username)
	switch docType {
	case DocumentDNI:
		if !dniRe.MatchString(username) {
			return "", false
		}
		return username, true
	case DocumentPassport:
		if !passportRe.MatchString(username) {
			return "", false
		}
		return strings.ToUpper(username), true
	default:
		return "", false
	}
}

// User represents a registered member or administrator.
// Email, phone and username (document number) are each globally unique.
type User struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"size:100;not null" json:"name"`
	Surname      string       `gorm:"size:100;not null" json:"surname"`
	Phone        string       `gorm:"size:32;not null;uniqueIndex:idx_users_phone" json:"phone"`
	Email        string       `gorm:"size:255;not null;uniqueIndex:idx_users_email" json:"email"`
	Username     string       `gorm:"size:64;not null;uniqueIndex:idx_users_username" json:"username"`
	DocumentType DocumentType `gorm:"size:16;not null" json:"documentType"`
	Role         Role         `gorm:"size:16;not null;default:user" json:"role"`
	PasswordHash string       `gorm:"column:password;not null" json:"-"`
	LastLogin    *time.Time   `json:"lastLogin,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
