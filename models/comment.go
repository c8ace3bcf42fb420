package models

import "time"

// Comment is an append-only discussion entry on an application. Comments are
// never edited or deleted; is_private entries are board-only and must be
// filtered out of any applicant-facing query.
type Comment struct {
	CommentID       int       `gorm:"primaryKey;column:comment_id" json:"comment_id"`
	ApplicationID   int       `gorm:"column:application_id;index" json:"application_id"`
	AuthorID        int       `gorm:"column:author_id" json:"author_id"`
	Content         string    `gorm:"column:content;type:text" json:"content"`
	IsPrivate       bool      `gorm:"column:is_private" json:"is_private"`
	IsInfoRequest   bool      `gorm:"column:is_info_request" json:"is_info_request"`
	ParentCommentID *int      `gorm:"column:parent_comment_id" json:"parent_comment_id,omitempty"`
	CreateAt        time.Time `gorm:"column:create_at" json:"create_at"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

// TableName specifies the table name for Comment.
func (Comment) TableName() string {
	return "comments"
}
