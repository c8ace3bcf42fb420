package models

import (
	"time"
)

// Role IDs as seeded in the roles table
const (
	RoleClient      = 1
	RoleBoardMember = 2
	RoleAdmin       = 3
)

type User struct {
	UserID           int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	UserFname        string     `gorm:"column:user_fname" json:"user_fname"`
	UserLname        string     `gorm:"column:user_lname" json:"user_lname"`
	Email            string     `gorm:"column:email;unique" json:"email"`
	Phone            *string    `gorm:"column:phone" json:"phone,omitempty"`
	Password         string     `gorm:"column:password" json:"-"`
	RoleID           int        `gorm:"column:role_id" json:"role_id"`
	IsActive         bool       `gorm:"column:is_active" json:"is_active"`
	BoardMemberSince *time.Time `gorm:"column:board_member_since" json:"board_member_since,omitempty"`
	CreateAt         *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt         *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt         *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Role Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

type Role struct {
	RoleID   int        `gorm:"primaryKey;column:role_id" json:"role_id"`
	Role     string     `gorm:"column:role" json:"role"`
	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// MemberSince returns the start of a board member's tenure, falling back to the
// account creation time when board_member_since was never set.
func (u *User) MemberSince() *time.Time {
	if u.BoardMemberSince != nil {
		return u.BoardMemberSince
	}
	return u.CreateAt
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Role) TableName() string {
	return "roles"
}
