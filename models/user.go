package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User represents a registered member of the trick catalog.
type User struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	Username     string  `json:"username" gorm:"uniqueIndex;not null"`
	Email        string  `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string  `json:"-" gorm:"not null"`
	AvatarURL    *string `json:"avatar_url,omitempty"`

	// accounts start inactive; the activation token is nulled once consumed
	IsActive        bool    `json:"is_active" gorm:"not null;default:false"`
	ActivationToken *string `json:"-" gorm:"index"`

	// single-use password reset token with expiry
	ResetToken          *string    `json:"-" gorm:"index"`
	ResetTokenExpiresAt *time.Time `json:"-"`

	Comments []Comment `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (User) TableName() string {
	return "users"
}

// SetPassword hashes the given password and sets it on the user model.
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the given password matches the user's hashed password.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// IssueActivationToken sets a fresh activation token and returns it.
func (u *User) IssueActivationToken() string {
	token := uuid.New().String()
	u.ActivationToken = &token
	return token
}

// IssueResetToken sets a fresh password reset token valid for ttl and returns it.
func (u *User) IssueResetToken(ttl time.Duration) string {
	token := uuid.New().String()
	expiry := time.Now().Add(ttl)
	u.ResetToken = &token
	u.ResetTokenExpiresAt = &expiry
	return token
}

// ResetTokenValid reports whether token matches the stored reset token and
// the token has not expired.
func (u *User) ResetTokenValid(token string) bool {
	if u.ResetToken == nil || *u.ResetToken != token {
		return false
	}
	return u.ResetTokenExpiresAt != nil && time.Now().Before(*u.ResetTokenExpiresAt)
}

// ClearResetToken invalidates the stored reset token.
func (u *User) ClearResetToken() {
	u.ResetToken = nil
	u.ResetTokenExpiresAt = nil
}
