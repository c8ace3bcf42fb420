package models

import (
	"strings"
	"time"
)

// Application lifecycle statuses. Status is the single source of truth for
// which operations are currently legal; the services package enforces the
// transitions between them.
const (
	StatusDraft        = "draft"
	StatusSubmitted    = "submitted"
	StatusUnderReview  = "under_review"
	StatusInDiscussion = "in_discussion"
	StatusApproved     = "approved"
	StatusRejected     = "rejected"
	StatusWithdrawn    = "withdrawn"
)

// Funding categories an applicant may request support for.
var ValidFundingTypes = []string{
	"rent",
	"utilities",
	"food",
	"medical",
	"transportation",
	"childcare",
	"education",
}

type Application struct {
	ApplicationID int `gorm:"primaryKey;column:application_id" json:"application_id"`
	UserID        int `gorm:"column:user_id" json:"user_id"`

	// Applicant contact captured at submission time
	ApplicantName  string `gorm:"column:applicant_name" json:"applicant_name"`
	ApplicantEmail string `gorm:"column:applicant_email" json:"applicant_email"`
	ApplicantPhone string `gorm:"column:applicant_phone" json:"applicant_phone"`

	// Application content
	FundingTypes         string  `gorm:"column:funding_types" json:"funding_types"` // comma separated, see FundingTypeList
	EstimatedMonthlyCost float64 `gorm:"column:estimated_monthly_cost" json:"estimated_monthly_cost"`
	PersonalStatement    string  `gorm:"column:personal_statement;type:text" json:"personal_statement"`
	ExpectedBenefits     string  `gorm:"column:expected_benefits;type:text" json:"expected_benefits"`
	CommitmentStatement  string  `gorm:"column:commitment_statement;type:text" json:"commitment_statement"`
	Signature            string  `gorm:"column:signature" json:"signature"`
	CurrentStep          int     `gorm:"column:current_step" json:"current_step"` // draft wizard progress only

	Status        string `gorm:"column:status;index" json:"status"`
	InfoRequested bool   `gorm:"column:info_requested" json:"info_requested"`

	// Decision outcome, populated only on terminal transitions
	ApprovedMonthlyAmount *float64 `gorm:"column:approved_monthly_amount" json:"approved_monthly_amount,omitempty"`
	SponsorID             *int     `gorm:"column:sponsor_id" json:"sponsor_id,omitempty"`
	DecisionMessage       *string  `gorm:"column:decision_message" json:"decision_message,omitempty"`
	RejectionReason       *string  `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
	DecidedBy             *int     `gorm:"column:decided_by" json:"decided_by,omitempty"`

	CreateAt        *time.Time `gorm:"column:create_at" json:"create_at"`
	SubmittedAt     *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	ReviewStartedAt *time.Time `gorm:"column:review_started_at" json:"review_started_at,omitempty"`
	DecidedAt       *time.Time `gorm:"column:decided_at" json:"decided_at,omitempty"`
	UpdateAt        *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt        *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	User     User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Votes    []Vote    `gorm:"foreignKey:ApplicationID" json:"votes,omitempty"`
	Comments []Comment `gorm:"foreignKey:ApplicationID" json:"comments,omitempty"`
}

// FundingTypeList splits the stored funding_types value into its categories.
func (a *Application) FundingTypeList() []string {
	if a.FundingTypes == "" {
		return nil
	}
	parts := strings.Split(a.FundingTypes, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SetFundingTypes stores the given categories as the comma separated column value.
func (a *Application) SetFundingTypes(types []string) {
	a.FundingTypes = strings.Join(types, ",")
}

// IsTerminal reports whether the application reached a final decision.
func (a *Application) IsTerminal() bool {
	return a.Status == StatusApproved || a.Status == StatusRejected
}

// IsValidFundingType reports whether t is one of the supported categories.
func IsValidFundingType(t string) bool {
	for _, v := range ValidFundingTypes {
		if v == t {
			return true
		}
	}
	return false
}

// TableName specifies the table name for Application.
func (Application) TableName() string {
	return "applications"
}
