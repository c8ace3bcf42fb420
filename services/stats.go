package services

import (
	"errors"

	"application-review-api/models"

	"gorm.io/gorm"
)

// BoardMemberStatistics is a derived view of one board member's participation.
type BoardMemberStatistics struct {
	VoterID           int     `json:"voter_id"`
	PendingVotes      int     `json:"pending_votes"`
	VotesCast         int     `json:"votes_cast"`
	ApproveVotes      int     `json:"approve_votes"`
	RejectVotes       int     `json:"reject_votes"`
	AbstainVotes      int     `json:"abstain_votes"`
	EligibleToVote    int     `json:"eligible_to_vote"`
	ParticipationRate float64 `json:"participation_rate"`
}

// DashboardSummary aggregates the whole pipeline for the admin dashboard.
type DashboardSummary struct {
	CountsByStatus       map[string]int64 `json:"counts_by_status"`
	TotalDecided         int              `json:"total_decided"`
	ApprovalRate         float64          `json:"approval_rate"`
	AverageDaysToDecide  float64          `json:"average_days_to_decide"`
	AwaitingInformation  int64            `json:"awaiting_information"`
	PendingFinalDecision int64            `json:"pending_final_decision"`
}

// ApplicationsNeedingReview returns the vote-accepting applications the given
// voter has not voted on yet, oldest submission first. Read-only projection;
// computed by scanning current state on every call.
func (s *ReviewService) ApplicationsNeedingReview(voterID int) ([]models.Application, error) {
	voted := s.db.Model(&models.Vote{}).
		Select("application_id").
		Where("voter_id = ?", voterID)

	var apps []models.Application
	err := s.db.Preload("User").
		Where("status IN ? AND delete_at IS NULL", VoteAcceptingStatuses).
		Where("application_id NOT IN (?)", voted).
		Order("submitted_at ASC, application_id ASC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

// BoardMemberStatistics derives a voter's pending queue, lifetime votes and
// participation rate. The eligibility denominator counts applications whose
// review started during the voter's tenure.
func (s *ReviewService) BoardMemberStatistics(voterID int) (*BoardMemberStatistics, error) {
	var voter models.User
	err := s.db.Where("user_id = ? AND delete_at IS NULL", voterID).First(&voter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound("board member")
	}
	if err != nil {
		return nil, err
	}

	stats := &BoardMemberStatistics{VoterID: voterID}

	pending, err := s.ApplicationsNeedingReview(voterID)
	if err != nil {
		return nil, err
	}
	stats.PendingVotes = len(pending)

	var votes []models.Vote
	if err := s.db.Where("voter_id = ?", voterID).Find(&votes).Error; err != nil {
		return nil, err
	}
	stats.VotesCast = len(votes)
	for _, v := range votes {
		switch v.Decision {
		case models.VoteApprove:
			stats.ApproveVotes++
		case models.VoteReject:
			stats.RejectVotes++
		case models.VoteAbstain:
			stats.AbstainVotes++
		}
	}

	eligible := s.db.Model(&models.Application{}).
		Where("review_started_at IS NOT NULL AND delete_at IS NULL")
	if since := voter.MemberSince(); since != nil {
		eligible = eligible.Where("review_started_at >= ?", *since)
	}
	var eligibleCount int64
	if err := eligible.Count(&eligibleCount).Error; err != nil {
		return nil, err
	}
	stats.EligibleToVote = int(eligibleCount)
	if eligibleCount > 0 {
		stats.ParticipationRate = float64(stats.VotesCast) / float64(eligibleCount)
	}

	return stats, nil
}

// GetDashboardSummary scans current application state for the admin dashboard.
func (s *ReviewService) GetDashboardSummary() (*DashboardSummary, error) {
	summary := &DashboardSummary{CountsByStatus: map[string]int64{}}

	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	err := s.db.Model(&models.Application{}).
		Select("status, COUNT(*) AS count").
		Where("delete_at IS NULL").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		summary.CountsByStatus[row.Status] = row.Count
	}

	summary.PendingFinalDecision = summary.CountsByStatus[models.StatusUnderReview] +
		summary.CountsByStatus[models.StatusInDiscussion]

	if err := s.db.Model(&models.Application{}).
		Where("status = ? AND info_requested = ? AND delete_at IS NULL", models.StatusInDiscussion, true).
		Count(&summary.AwaitingInformation).Error; err != nil {
		return nil, err
	}

	// Average time to decision is computed in Go so it works the same on
	// MySQL and the sqlite test database.
	var decided []models.Application
	err = s.db.
		Where("status IN ? AND delete_at IS NULL", []string{models.StatusApproved, models.StatusRejected}).
		Find(&decided).Error
	if err != nil {
		return nil, err
	}

	summary.TotalDecided = len(decided)
	if len(decided) == 0 {
		return summary, nil
	}

	var approved int
	var totalDays float64
	var timed int
	for _, app := range decided {
		if app.Status == models.StatusApproved {
			approved++
		}
		if app.SubmittedAt != nil && app.DecidedAt != nil {
			totalDays += app.DecidedAt.Sub(*app.SubmittedAt).Hours() / 24
			timed++
		}
	}
	summary.ApprovalRate = float64(approved) / float64(len(decided))
	if timed > 0 {
		summary.AverageDaysToDecide = totalDays / float64(timed)
	}
	return summary, nil
}
