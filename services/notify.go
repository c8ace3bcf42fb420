package services

import (
	"fmt"
	"log"
	"time"

	"application-review-api/config"
	"application-review-api/models"

	"gorm.io/gorm"
)

// Trigger events fired by the review workflow.
const (
	TriggerApplicationSubmitted = "application_submitted"
	TriggerReviewStarted        = "review_started"
	TriggerQuorumReached        = "quorum_reached"
	TriggerInfoRequested        = "info_requested"
	TriggerDecisionMade         = "decision_made"
)

// Trigger is a post-commit notification request. Workflow operations collect
// triggers while the transaction is open but hand them to the Notifier only
// after the state change committed, so a notification failure can never roll
// back or block the transition.
type Trigger struct {
	Event         string
	ApplicationID int
	Recipients    []models.User
	Subject       string
	Message       string
}

// Notifier delivers triggers best-effort. Failures are logged, never returned.
type Notifier interface {
	Dispatch(triggers []Trigger)
}

// MailNotifier records an in-app notification row per recipient and sends an
// email copy via the configured SMTP mailer. Delivery runs in a goroutine.
type MailNotifier struct {
	db *gorm.DB
}

func NewMailNotifier(db *gorm.DB) *MailNotifier {
	return &MailNotifier{db: db}
}

func (n *MailNotifier) Dispatch(triggers []Trigger) {
	for _, trigger := range triggers {
		n.record(trigger)
	}

	go func() {
		for _, trigger := range triggers {
			emails := make([]string, 0, len(trigger.Recipients))
			for _, user := range trigger.Recipients {
				if user.Email != "" {
					emails = append(emails, user.Email)
				}
			}
			if err := config.SendMail(emails, trigger.Subject, trigger.Message); err != nil {
				log.Printf("notification %s for application %d failed: %v",
					trigger.Event, trigger.ApplicationID, err)
			}
		}
	}()
}

func (n *MailNotifier) record(trigger Trigger) {
	now := time.Now()
	appID := trigger.ApplicationID
	for _, user := range trigger.Recipients {
		notification := models.Notification{
			UserID:               user.UserID,
			Title:                trigger.Subject,
			Message:              trigger.Message,
			Type:                 "info",
			RelatedApplicationID: &appID,
			CreateAt:             now,
		}
		if err := n.db.Create(&notification).Error; err != nil {
			log.Printf("failed to record notification %s for user %d: %v",
				trigger.Event, user.UserID, err)
		}
	}
}

func submittedTrigger(app *models.Application, admins []models.User) Trigger {
	return Trigger{
		Event:         TriggerApplicationSubmitted,
		ApplicationID: app.ApplicationID,
		Recipients:    admins,
		Subject:       "New application submitted",
		Message: fmt.Sprintf("Application #%d from %s was submitted and is waiting for review.",
			app.ApplicationID, app.ApplicantName),
	}
}

func reviewStartedTrigger(app *models.Application, board []models.User) Trigger {
	return Trigger{
		Event:         TriggerReviewStarted,
		ApplicationID: app.ApplicationID,
		Recipients:    board,
		Subject:       "Application ready for your vote",
		Message: fmt.Sprintf("Application #%d from %s is now under review. Please cast your vote.",
			app.ApplicationID, app.ApplicantName),
	}
}

func quorumReachedTrigger(app *models.Application, admins []models.User, summary *VotingSummary) Trigger {
	return Trigger{
		Event:         TriggerQuorumReached,
		ApplicationID: app.ApplicationID,
		Recipients:    admins,
		Subject:       "Voting quorum reached",
		Message: fmt.Sprintf("Application #%d reached quorum (%d of %d votes, %d approve / %d reject) and is ready for a decision.",
			app.ApplicationID, summary.TotalVotes, summary.VotesRequired,
			summary.ApprovalVotes, summary.RejectionVotes),
	}
}

func infoRequestedTrigger(app *models.Application, details string) Trigger {
	return Trigger{
		Event:         TriggerInfoRequested,
		ApplicationID: app.ApplicationID,
		Recipients:    []models.User{app.User},
		Subject:       "More information requested",
		Message: fmt.Sprintf("The review board needs more information about your application #%d: %s",
			app.ApplicationID, details),
	}
}

func decisionTrigger(app *models.Application) Trigger {
	var body string
	if app.Status == models.StatusApproved {
		body = fmt.Sprintf("Your application #%d was approved.", app.ApplicationID)
		if app.DecisionMessage != nil && *app.DecisionMessage != "" {
			body += " " + *app.DecisionMessage
		}
	} else {
		body = fmt.Sprintf("Your application #%d was not approved.", app.ApplicationID)
		if app.RejectionReason != nil && *app.RejectionReason != "" {
			body += " Reason: " + *app.RejectionReason
		}
	}
	return Trigger{
		Event:         TriggerDecisionMade,
		ApplicationID: app.ApplicationID,
		Recipients:    []models.User{app.User},
		Subject:       "Decision on your application",
		Message:       body,
	}
}
