package services

import "application-review-api/models"

// Workflow events, used in transition errors and notification triggers.
const (
	EventSubmit      = "submit"
	EventStartReview = "start review"
	EventCastVote    = "cast vote"
	EventRequestInfo = "request information"
	EventApprove     = "approve"
	EventReject      = "reject"
	EventWithdraw    = "withdraw"
)

// transitions lists, per event, the statuses the event may fire from. The
// target status is fixed per event; CastVote never changes status (quorum is a
// signal, not a transition).
var transitions = map[string][]string{
	EventSubmit:      {models.StatusDraft},
	EventStartReview: {models.StatusSubmitted},
	EventCastVote:    {models.StatusUnderReview, models.StatusInDiscussion},
	EventRequestInfo: {models.StatusUnderReview, models.StatusInDiscussion},
	EventApprove:     {models.StatusUnderReview, models.StatusInDiscussion},
	EventReject:      {models.StatusUnderReview, models.StatusInDiscussion},
	EventWithdraw: {
		models.StatusDraft, models.StatusSubmitted,
		models.StatusUnderReview, models.StatusInDiscussion,
	},
}

// AllowedFrom returns the statuses from which the given event is legal.
func AllowedFrom(event string) []string {
	return transitions[event]
}

// CanFire reports whether the event is legal from the given status.
func CanFire(event, status string) bool {
	for _, s := range transitions[event] {
		if s == status {
			return true
		}
	}
	return false
}

// IsVoteAccepting reports whether applications in the given status accept votes.
func IsVoteAccepting(status string) bool {
	return status == models.StatusUnderReview || status == models.StatusInDiscussion
}

// VoteAcceptingStatuses is the status set used in review-queue queries.
var VoteAcceptingStatuses = []string{models.StatusUnderReview, models.StatusInDiscussion}
