package models

import "time"

// RefreshSession stores long-lived refresh tokens issued at login. The token
// itself is a random UUID; revoking the session invalidates the token.
type RefreshSession struct {
	SessionID int        `gorm:"primaryKey;column:session_id" json:"session_id"`
	UserID    int        `gorm:"column:user_id;index" json:"user_id"`
	Token     string     `gorm:"column:token;unique" json:"-"`
	UserAgent string     `gorm:"column:user_agent" json:"user_agent"`
	ExpiresAt time.Time  `gorm:"column:expires_at" json:"expires_at"`
	RevokedAt *time.Time `gorm:"column:revoked_at" json:"revoked_at,omitempty"`
	CreateAt  time.Time  `gorm:"column:create_at" json:"create_at"`
}

// IsValid reports whether the session can still be used to refresh tokens.
func (s *RefreshSession) IsValid(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// TableName specifies the table name for RefreshSession.
func (RefreshSession) TableName() string {
	return "refresh_sessions"
}
