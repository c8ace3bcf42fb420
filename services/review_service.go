package services

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"application-review-api/models"
	"application-review-api/utils"

	"gorm.io/gorm"
)

// Actor is the capability set of the caller, resolved once by the presentation
// layer from the authenticated identity. Ownership of an application is a
// relationship fact the service re-verifies itself against the stored row.
type Actor struct {
	UserID        int
	IsBoardMember bool
	IsAdmin       bool
	CanFinalize   bool
}

// QuorumRule derives the votes required for a decision from the size of the
// live board roster. Required votes are never stored.
type QuorumRule struct {
	Fraction     float64
	MinimumVotes int
}

// RequiredVotes computes the quorum for the given active roster size.
func (q QuorumRule) RequiredVotes(activeVoters int) int {
	required := int(math.Ceil(q.Fraction * float64(activeVoters)))
	if required < q.MinimumVotes {
		required = q.MinimumVotes
	}
	return required
}

// DefaultQuorumRule reads VOTE_QUORUM_FRACTION / VOTE_QUORUM_MINIMUM from the
// environment, defaulting to a simple majority with at least one vote.
func DefaultQuorumRule() QuorumRule {
	rule := QuorumRule{Fraction: 0.5, MinimumVotes: 1}
	if v, err := strconv.ParseFloat(os.Getenv("VOTE_QUORUM_FRACTION"), 64); err == nil && v > 0 && v <= 1 {
		rule.Fraction = v
	}
	if v, err := strconv.Atoi(os.Getenv("VOTE_QUORUM_MINIMUM")); err == nil && v > 0 {
		rule.MinimumVotes = v
	}
	return rule
}

// ReviewService owns the application review workflow: lifecycle transitions,
// voting, discussion and decisions. All mutations run inside a transaction
// scoped to the single application they touch.
type ReviewService struct {
	db       *gorm.DB
	roster   RosterProvider
	notifier Notifier
	quorum   QuorumRule
}

func NewReviewService(db *gorm.DB, roster RosterProvider, notifier Notifier, quorum QuorumRule) *ReviewService {
	return &ReviewService{db: db, roster: roster, notifier: notifier, quorum: quorum}
}

// DraftInput carries the field-by-field partial saves the draft wizard makes.
// Nil fields are left unchanged.
type DraftInput struct {
	ApplicantName        *string  `json:"applicant_name"`
	ApplicantEmail       *string  `json:"applicant_email"`
	ApplicantPhone       *string  `json:"applicant_phone"`
	FundingTypes         []string `json:"funding_types"`
	EstimatedMonthlyCost *float64 `json:"estimated_monthly_cost"`
	PersonalStatement    *string  `json:"personal_statement"`
	ExpectedBenefits     *string  `json:"expected_benefits"`
	CommitmentStatement  *string  `json:"commitment_statement"`
	Signature            *string  `json:"signature"`
	CurrentStep          *int     `json:"current_step"`
}

func (in *DraftInput) validate() []string {
	var problems []string
	if in.ApplicantEmail != nil && *in.ApplicantEmail != "" && !utils.ValidateEmail(*in.ApplicantEmail) {
		problems = append(problems, "applicant email is not a valid address")
	}
	if in.EstimatedMonthlyCost != nil && *in.EstimatedMonthlyCost < 0 {
		problems = append(problems, "estimated monthly cost cannot be negative")
	}
	for _, t := range in.FundingTypes {
		if !models.IsValidFundingType(t) {
			problems = append(problems, fmt.Sprintf("unknown funding type '%s'", t))
		}
	}
	return problems
}

// columns maps the set fields to their column values, for conditional updates
// that must not touch anything the caller did not send.
func (in *DraftInput) columns() map[string]interface{} {
	updates := map[string]interface{}{}
	if in.ApplicantName != nil {
		updates["applicant_name"] = utils.SanitizeInput(*in.ApplicantName)
	}
	if in.ApplicantEmail != nil {
		updates["applicant_email"] = utils.SanitizeInput(*in.ApplicantEmail)
	}
	if in.ApplicantPhone != nil {
		updates["applicant_phone"] = utils.SanitizeInput(*in.ApplicantPhone)
	}
	if in.FundingTypes != nil {
		updates["funding_types"] = strings.Join(in.FundingTypes, ",")
	}
	if in.EstimatedMonthlyCost != nil {
		updates["estimated_monthly_cost"] = *in.EstimatedMonthlyCost
	}
	if in.PersonalStatement != nil {
		updates["personal_statement"] = *in.PersonalStatement
	}
	if in.ExpectedBenefits != nil {
		updates["expected_benefits"] = *in.ExpectedBenefits
	}
	if in.CommitmentStatement != nil {
		updates["commitment_statement"] = *in.CommitmentStatement
	}
	if in.Signature != nil {
		updates["signature"] = *in.Signature
	}
	if in.CurrentStep != nil {
		updates["current_step"] = *in.CurrentStep
	}
	return updates
}

func (in *DraftInput) apply(app *models.Application) {
	if in.ApplicantName != nil {
		app.ApplicantName = utils.SanitizeInput(*in.ApplicantName)
	}
	if in.ApplicantEmail != nil {
		app.ApplicantEmail = utils.SanitizeInput(*in.ApplicantEmail)
	}
	if in.ApplicantPhone != nil {
		app.ApplicantPhone = utils.SanitizeInput(*in.ApplicantPhone)
	}
	if in.FundingTypes != nil {
		app.SetFundingTypes(in.FundingTypes)
	}
	if in.EstimatedMonthlyCost != nil {
		app.EstimatedMonthlyCost = *in.EstimatedMonthlyCost
	}
	if in.PersonalStatement != nil {
		app.PersonalStatement = *in.PersonalStatement
	}
	if in.ExpectedBenefits != nil {
		app.ExpectedBenefits = *in.ExpectedBenefits
	}
	if in.CommitmentStatement != nil {
		app.CommitmentStatement = *in.CommitmentStatement
	}
	if in.Signature != nil {
		app.Signature = *in.Signature
	}
	if in.CurrentStep != nil {
		app.CurrentStep = *in.CurrentStep
	}
}

// CreateDraft opens a new draft application owned by the actor.
func (s *ReviewService) CreateDraft(actor Actor, input DraftInput) (*models.Application, error) {
	if problems := input.validate(); len(problems) > 0 {
		return nil, ErrValidation(problems...)
	}

	now := time.Now()
	app := models.Application{
		UserID:   actor.UserID,
		Status:   models.StatusDraft,
		CreateAt: &now,
		UpdateAt: &now,
	}
	input.apply(&app)

	if err := s.db.Create(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// UpdateDraft saves partial progress on a draft. Only the owner may write, and
// only while the application is still in draft.
func (s *ReviewService) UpdateDraft(applicationID int, actor Actor, input DraftInput) (*models.Application, error) {
	if problems := input.validate(); len(problems) > 0 {
		return nil, ErrValidation(problems...)
	}

	var app models.Application
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := loadApplication(tx, applicationID, &app); err != nil {
			return err
		}
		if app.UserID != actor.UserID {
			return ErrUnauthorized("only the applicant may edit this application")
		}
		if app.Status != models.StatusDraft {
			return ErrInvalidTransition("edit", app.Status)
		}

		// Write only the sent fields, and only while the row is still a
		// draft. A Submit committing between the read above and this update
		// makes RowsAffected zero instead of silently reverting the status.
		now := time.Now()
		updates := input.columns()
		updates["update_at"] = now
		res := tx.Model(&models.Application{}).
			Where("application_id = ? AND status = ? AND delete_at IS NULL", applicationID, models.StatusDraft).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var current models.Application
			if err := loadApplication(tx, applicationID, &current); err != nil {
				return err
			}
			return ErrInvalidTransition("edit", current.Status)
		}

		input.apply(&app)
		app.UpdateAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// Submit moves a complete draft into the review pipeline.
func (s *ReviewService) Submit(applicationID int, actor Actor) (*models.Application, error) {
	var app models.Application
	var triggers []Trigger

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := loadApplication(tx, applicationID, &app); err != nil {
			return err
		}
		if app.UserID != actor.UserID {
			return ErrUnauthorized("only the applicant may submit this application")
		}
		if app.Status != models.StatusDraft {
			return ErrInvalidTransition(EventSubmit, app.Status)
		}
		if problems := validateForSubmission(&app); len(problems) > 0 {
			return ErrValidation(problems...)
		}

		now := time.Now()
		if err := guardedStatusUpdate(tx, applicationID, EventSubmit, map[string]interface{}{
			"status":       models.StatusSubmitted,
			"submitted_at": now,
			"update_at":    now,
		}); err != nil {
			return err
		}
		app.Status = models.StatusSubmitted
		app.SubmittedAt = &now
		app.UpdateAt = &now

		admins, err := s.adminUsers(tx)
		if err != nil {
			return err
		}
		triggers = append(triggers, submittedTrigger(&app, admins))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(triggers)
	return &app, nil
}

// StartReview opens the voting window on a submitted application and fans out
// the "ready for your vote" notification to the board roster as it stands at
// call time. Calling it again while the application is already under review is
// a no-op success.
func (s *ReviewService) StartReview(applicationID int, actor Actor) (*models.Application, error) {
	if !actor.IsAdmin {
		return nil, ErrUnauthorized("starting a review requires the admin capability")
	}

	var app models.Application
	var triggers []Trigger

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := loadApplication(tx, applicationID, &app); err != nil {
			return err
		}
		if app.Status == models.StatusUnderReview {
			return nil // idempotent
		}
		if app.Status != models.StatusSubmitted {
			return ErrInvalidTransition(EventStartReview, app.Status)
		}

		now := time.Now()
		if err := guardedStatusUpdate(tx, applicationID, EventStartReview, map[string]interface{}{
			"status":            models.StatusUnderReview,
			"review_started_at": now,
			"update_at":         now,
		}); err != nil {
			return err
		}
		app.Status = models.StatusUnderReview
		app.ReviewStartedAt = &now
		app.UpdateAt = &now

		// Roster is enumerated here, not at submission time.
		board, err := s.roster.EligibleVoters()
		if err != nil {
			return err
		}
		triggers = append(triggers, reviewStartedTrigger(&app, board))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(triggers)
	return &app, nil
}

// Withdraw lets the owning applicant pull the application out of the workflow.
// Legal from every non-terminal state; withdrawing an already withdrawn
// application is a no-op success.
func (s *ReviewService) Withdraw(applicationID int, actor Actor) (*models.Application, error) {
	var app models.Application

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := loadApplication(tx, applicationID, &app); err != nil {
			return err
		}
		if app.UserID != actor.UserID {
			return ErrUnauthorized("only the applicant may withdraw this application")
		}
		if app.Status == models.StatusWithdrawn {
			return nil // idempotent
		}
		if !CanFire(EventWithdraw, app.Status) {
			return ErrInvalidTransition(EventWithdraw, app.Status)
		}

		now := time.Now()
		if err := guardedStatusUpdate(tx, applicationID, EventWithdraw, map[string]interface{}{
			"status":    models.StatusWithdrawn,
			"update_at": now,
		}); err != nil {
			return err
		}
		app.Status = models.StatusWithdrawn
		app.UpdateAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// GetApplication returns a single application with its discussion thread,
// filtered for the actor. Applicants see only their own application, without
// votes and without board-only comments.
func (s *ReviewService) GetApplication(applicationID int, actor Actor) (*models.Application, error) {
	var app models.Application
	if err := loadApplication(s.db.Preload("User"), applicationID, &app); err != nil {
		return nil, err
	}

	reviewer := actor.IsBoardMember || actor.IsAdmin
	if !reviewer && app.UserID != actor.UserID {
		return nil, ErrUnauthorized("you do not have access to this application")
	}

	comments, err := s.ListComments(applicationID, actor)
	if err != nil {
		return nil, err
	}
	app.Comments = comments

	if reviewer {
		if err := s.db.Preload("Voter").
			Where("application_id = ?", applicationID).
			Order("cast_at ASC, vote_id ASC").
			Find(&app.Votes).Error; err != nil {
			return nil, err
		}
	}
	return &app, nil
}

// ListApplications returns the applications visible to the actor, newest
// first, optionally filtered by status.
func (s *ReviewService) ListApplications(actor Actor, status string) ([]models.Application, error) {
	query := s.db.Preload("User").Where("delete_at IS NULL")
	if !actor.IsBoardMember && !actor.IsAdmin {
		query = query.Where("user_id = ?", actor.UserID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var apps []models.Application
	if err := query.Order("create_at DESC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func validateForSubmission(app *models.Application) []string {
	var problems []string
	if strings.TrimSpace(app.ApplicantName) == "" {
		problems = append(problems, "applicant name is required")
	}
	if !utils.ValidateEmail(app.ApplicantEmail) {
		problems = append(problems, "a valid applicant email is required")
	}
	if len(app.FundingTypeList()) == 0 {
		problems = append(problems, "at least one funding type must be selected")
	}
	if app.EstimatedMonthlyCost <= 0 {
		problems = append(problems, "estimated monthly cost must be greater than zero")
	}
	if strings.TrimSpace(app.PersonalStatement) == "" {
		problems = append(problems, "personal statement is required")
	}
	if strings.TrimSpace(app.ExpectedBenefits) == "" {
		problems = append(problems, "expected benefits statement is required")
	}
	if strings.TrimSpace(app.CommitmentStatement) == "" {
		problems = append(problems, "commitment statement is required")
	}
	if strings.TrimSpace(app.Signature) == "" {
		problems = append(problems, "signature is required")
	}
	return problems
}

// loadApplication reads the current persisted row; every transition validates
// against what this returns inside its own transaction, never a cached value.
func loadApplication(tx *gorm.DB, applicationID int, app *models.Application) error {
	err := tx.Where("application_id = ? AND delete_at IS NULL", applicationID).First(app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound("application")
	}
	return err
}

// guardedStatusUpdate applies the update only while the row is still in a
// status the event may fire from. Zero rows affected means a concurrent
// transition won; the caller's event loses with an InvalidTransition naming
// the status that actually exists now.
func guardedStatusUpdate(tx *gorm.DB, applicationID int, event string, updates map[string]interface{}) error {
	res := tx.Model(&models.Application{}).
		Where("application_id = ? AND status IN ? AND delete_at IS NULL", applicationID, AllowedFrom(event)).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var current models.Application
		if err := loadApplication(tx, applicationID, &current); err != nil {
			return err
		}
		return ErrInvalidTransition(event, current.Status)
	}
	return nil
}

func (s *ReviewService) adminUsers(tx *gorm.DB) ([]models.User, error) {
	var admins []models.User
	err := tx.Where("role_id = ? AND is_active = ? AND delete_at IS NULL", models.RoleAdmin, true).
		Find(&admins).Error
	return admins, err
}
