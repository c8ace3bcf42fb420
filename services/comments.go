package services

import (
	"errors"
	"strings"
	"time"

	"application-review-api/models"

	"gorm.io/gorm"
)

// AddComment appends an immutable comment to an application's discussion
// thread. Applicants may only post public, non-flagged comments on their own
// application; board members and admins may post anywhere, including private
// board-only notes and information-request flags. Flagging a comment as an
// information request does not itself change status; that is the decoupled
// RequestAdditionalInformation transition.
func (s *ReviewService) AddComment(applicationID int, actor Actor, content string, isPrivate, isInfoRequest bool, parentCommentID *int) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrValidation("comment content is required")
	}

	var comment models.Comment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var app models.Application
		if err := loadApplication(tx, applicationID, &app); err != nil {
			return err
		}

		reviewer := actor.IsBoardMember || actor.IsAdmin
		if !reviewer {
			if app.UserID != actor.UserID {
				return ErrUnauthorized("you do not have access to this application")
			}
			if isPrivate || isInfoRequest {
				return ErrUnauthorized("applicants may only post public comments")
			}
		}

		if parentCommentID != nil {
			var parent models.Comment
			err := tx.Where("comment_id = ? AND application_id = ?", *parentCommentID, applicationID).
				First(&parent).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("parent comment")
			}
			if err != nil {
				return err
			}
		}

		comment = models.Comment{
			ApplicationID:   applicationID,
			AuthorID:        actor.UserID,
			Content:         content,
			IsPrivate:       isPrivate,
			IsInfoRequest:   isInfoRequest,
			ParentCommentID: parentCommentID,
			CreateAt:        time.Now(),
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListComments returns the application's thread in creation order. Private
// comments are excluded at query level for anyone without board capability;
// this is a confidentiality boundary, not a presentation choice.
func (s *ReviewService) ListComments(applicationID int, actor Actor) ([]models.Comment, error) {
	var app models.Application
	if err := loadApplication(s.db, applicationID, &app); err != nil {
		return nil, err
	}

	reviewer := actor.IsBoardMember || actor.IsAdmin
	if !reviewer && app.UserID != actor.UserID {
		return nil, ErrUnauthorized("you do not have access to this application")
	}

	query := s.db.Preload("Author").Where("application_id = ?", applicationID)
	if !reviewer {
		query = query.Where("is_private = ?", false)
	}

	var comments []models.Comment
	if err := query.Order("create_at ASC, comment_id ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}
