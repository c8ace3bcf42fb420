package services

import (
	"strings"
	"time"

	"application-review-api/models"

	"gorm.io/gorm"
)

// Approve closes the application as approved. Status flip, decision fields and
// decided timestamp commit as one guarded update, so no reader can observe a
// decided application without its decision fields or the other way around.
func (s *ReviewService) Approve(applicationID int, actor Actor, approvedMonthlyAmount float64, sponsorID *int, decisionMessage string) (*models.Application, error) {
	if !actor.CanFinalize {
		return nil, ErrUnauthorized("approving an application requires the finalize-decision capability")
	}
	if approvedMonthlyAmount <= 0 {
		return nil, ErrValidation("approved monthly amount must be greater than zero")
	}

	var app models.Application
	var triggers []Trigger

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := loadApplicationWithUser(tx, applicationID, &app); err != nil {
			return err
		}
		if !CanFire(EventApprove, app.Status) {
			return ErrInvalidTransition(EventApprove, app.Status)
		}

		now := time.Now()
		message := strings.TrimSpace(decisionMessage)
		updates := map[string]interface{}{
			"status":                  models.StatusApproved,
			"approved_monthly_amount": approvedMonthlyAmount,
			"decision_message":        message,
			"decided_by":              actor.UserID,
			"decided_at":              now,
			"update_at":               now,
		}
		if sponsorID != nil {
			updates["sponsor_id"] = *sponsorID
		}
		if err := guardedStatusUpdate(tx, applicationID, EventApprove, updates); err != nil {
			return err
		}

		app.Status = models.StatusApproved
		app.ApprovedMonthlyAmount = &approvedMonthlyAmount
		app.SponsorID = sponsorID
		app.DecisionMessage = &message
		app.DecidedBy = &actor.UserID
		app.DecidedAt = &now
		app.UpdateAt = &now

		triggers = append(triggers, decisionTrigger(&app))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(triggers)
	return &app, nil
}

// Reject closes the application as rejected. A reason is required.
func (s *ReviewService) Reject(applicationID int, actor Actor, rejectionReason string) (*models.Application, error) {
	if !actor.CanFinalize {
		return nil, ErrUnauthorized("rejecting an application requires the finalize-decision capability")
	}
	reason := strings.TrimSpace(rejectionReason)
	if reason == "" {
		return nil, ErrValidation("a rejection reason is required")
	}

	var app models.Application
	var triggers []Trigger

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := loadApplicationWithUser(tx, applicationID, &app); err != nil {
			return err
		}
		if !CanFire(EventReject, app.Status) {
			return ErrInvalidTransition(EventReject, app.Status)
		}

		now := time.Now()
		if err := guardedStatusUpdate(tx, applicationID, EventReject, map[string]interface{}{
			"status":           models.StatusRejected,
			"rejection_reason": reason,
			"decided_by":       actor.UserID,
			"decided_at":       now,
			"update_at":        now,
		}); err != nil {
			return err
		}

		app.Status = models.StatusRejected
		app.RejectionReason = &reason
		app.DecidedBy = &actor.UserID
		app.DecidedAt = &now
		app.UpdateAt = &now

		triggers = append(triggers, decisionTrigger(&app))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(triggers)
	return &app, nil
}

// RequestAdditionalInformation moves the application into discussion with the
// info-requested flag set, without deciding it and without consuming a vote
// slot. The applicant is notified with the request details.
func (s *ReviewService) RequestAdditionalInformation(applicationID int, actor Actor, requestDetails string) (*models.Application, error) {
	if !actor.IsAdmin {
		return nil, ErrUnauthorized("requesting information requires the admin capability")
	}
	details := strings.TrimSpace(requestDetails)
	if details == "" {
		return nil, ErrValidation("request details are required")
	}

	var app models.Application
	var triggers []Trigger

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := loadApplicationWithUser(tx, applicationID, &app); err != nil {
			return err
		}
		if !CanFire(EventRequestInfo, app.Status) {
			return ErrInvalidTransition(EventRequestInfo, app.Status)
		}

		now := time.Now()
		if err := guardedStatusUpdate(tx, applicationID, EventRequestInfo, map[string]interface{}{
			"status":         models.StatusInDiscussion,
			"info_requested": true,
			"update_at":      now,
		}); err != nil {
			return err
		}

		app.Status = models.StatusInDiscussion
		app.InfoRequested = true
		app.UpdateAt = &now

		triggers = append(triggers, infoRequestedTrigger(&app, details))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(triggers)
	return &app, nil
}

func loadApplicationWithUser(tx *gorm.DB, applicationID int, app *models.Application) error {
	return loadApplication(tx.Preload("User"), applicationID, app)
}
