package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"application-review-api/models"

	"gorm.io/gorm"
)

// VotingSummary is the derived tally for one application. It is recomputed
// from the current vote set and the live roster on every call, never cached.
type VotingSummary struct {
	ApplicationID  int  `json:"application_id"`
	TotalVotes     int  `json:"total_votes"`
	ApprovalVotes  int  `json:"approval_votes"`
	RejectionVotes int  `json:"rejection_votes"`
	AbstainVotes   int  `json:"abstain_votes"`
	VotesRequired  int  `json:"votes_required"`
	QuorumReached  bool `json:"quorum_reached"`
}

// CastVote records a board member's vote on an application in a vote-accepting
// state. The (application, voter) uniqueness invariant is enforced by the
// storage-level unique index: under concurrent casts exactly one insert wins
// and the loser gets a DuplicateVote error. Reaching quorum fires the
// quorum-reached trigger but does not change status; the final call stays
// with a human admin.
func (s *ReviewService) CastVote(applicationID int, actor Actor, decision, reasoning string, confidence int) (*models.Vote, *VotingSummary, error) {
	if !actor.IsBoardMember {
		return nil, nil, ErrUnauthorized("casting a vote requires the board-member capability")
	}
	if problems := validateVote(decision, confidence); len(problems) > 0 {
		return nil, nil, ErrValidation(problems...)
	}

	var app models.Application
	vote := models.Vote{
		ApplicationID: applicationID,
		VoterID:       actor.UserID,
		Decision:      decision,
		Reasoning:     strings.TrimSpace(reasoning),
		Confidence:    confidence,
	}

	// votesAfterCast is the committed tally including this vote, counted inside
	// the insert transaction. The crossing decision below keys on it, not on a
	// later read that other casters may already have moved past the quorum.
	var votesAfterCast int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := loadApplication(tx, applicationID, &app); err != nil {
			return err
		}
		if !IsVoteAccepting(app.Status) {
			return ErrInvalidTransition(EventCastVote, app.Status)
		}

		vote.CastAt = time.Now()
		if err := tx.Create(&vote).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateVote(applicationID, actor.UserID)
			}
			return err
		}
		return tx.Model(&models.Vote{}).
			Where("application_id = ?", applicationID).
			Count(&votesAfterCast).Error
	})
	if err != nil {
		return nil, nil, err
	}

	summary, err := s.GetVotingSummary(applicationID)
	if err != nil {
		// The vote committed; a failed tally read must not look like a failed cast.
		log.Printf("vote recorded but tally for application %d failed: %v", applicationID, err)
		return &vote, nil, nil
	}

	// Fire the hook only when this vote is the one that crossed the line.
	if int(votesAfterCast) >= summary.VotesRequired && int(votesAfterCast)-1 < summary.VotesRequired {
		admins, aerr := s.adminUsers(s.db)
		if aerr != nil {
			log.Printf("quorum reached on application %d but admin lookup failed: %v", applicationID, aerr)
		} else {
			s.notifier.Dispatch([]Trigger{quorumReachedTrigger(&app, admins, summary)})
		}
	}

	return &vote, summary, nil
}

// GetVotingSummary tallies the current vote set and derives the quorum from
// the roster as it stands right now. A board member deactivated after voting
// still counts in the numerator, but shrinks the denominator.
func (s *ReviewService) GetVotingSummary(applicationID int) (*VotingSummary, error) {
	var app models.Application
	if err := loadApplication(s.db, applicationID, &app); err != nil {
		return nil, err
	}

	var votes []models.Vote
	if err := s.db.Where("application_id = ?", applicationID).
		Order("cast_at ASC, vote_id ASC").
		Find(&votes).Error; err != nil {
		return nil, err
	}

	summary := &VotingSummary{ApplicationID: applicationID, TotalVotes: len(votes)}
	for _, v := range votes {
		switch v.Decision {
		case models.VoteApprove:
			summary.ApprovalVotes++
		case models.VoteReject:
			summary.RejectionVotes++
		case models.VoteAbstain:
			summary.AbstainVotes++
		}
	}

	voters, err := s.roster.EligibleVoters()
	if err != nil {
		return nil, err
	}
	summary.VotesRequired = s.quorum.RequiredVotes(len(voters))
	summary.QuorumReached = summary.TotalVotes >= summary.VotesRequired
	return summary, nil
}

// ListVotes returns the votes on an application in cast order. Board only.
func (s *ReviewService) ListVotes(applicationID int, actor Actor) ([]models.Vote, error) {
	if !actor.IsBoardMember && !actor.IsAdmin {
		return nil, ErrUnauthorized("viewing votes requires the board-member capability")
	}
	var app models.Application
	if err := loadApplication(s.db, applicationID, &app); err != nil {
		return nil, err
	}

	var votes []models.Vote
	err := s.db.Preload("Voter").
		Where("application_id = ?", applicationID).
		Order("cast_at ASC, vote_id ASC").
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	return votes, nil
}

func validateVote(decision string, confidence int) []string {
	var problems []string
	if !models.IsValidVoteDecision(decision) {
		problems = append(problems, "decision must be approve, reject or abstain")
	}
	if confidence < 1 || confidence > 5 {
		problems = append(problems, "confidence must be between 1 and 5")
	}
	return problems
}
