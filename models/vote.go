package models

import "time"

// Vote decisions
const (
	VoteApprove = "approve"
	VoteReject  = "reject"
	VoteAbstain = "abstain"
)

// Vote is a single board member's vote on an application. The composite
// unique index is the authoritative one-vote-per-voter guarantee; the
// services layer treats the duplicate-key error from it as the conflict
// signal under concurrent casts.
type Vote struct {
	VoteID        int       `gorm:"primaryKey;column:vote_id" json:"vote_id"`
	ApplicationID int       `gorm:"column:application_id;uniqueIndex:uq_application_voter" json:"application_id"`
	VoterID       int       `gorm:"column:voter_id;uniqueIndex:uq_application_voter" json:"voter_id"`
	Decision      string    `gorm:"column:decision" json:"decision"` // approve|reject|abstain
	Reasoning     string    `gorm:"column:reasoning;type:text" json:"reasoning"`
	Confidence    int       `gorm:"column:confidence" json:"confidence"` // 1 (low) .. 5 (high)
	CastAt        time.Time `gorm:"column:cast_at" json:"cast_at"`

	Voter *User `gorm:"foreignKey:VoterID" json:"voter,omitempty"`
}

// IsValidVoteDecision reports whether d is a supported vote decision.
func IsValidVoteDecision(d string) bool {
	return d == VoteApprove || d == VoteReject || d == VoteAbstain
}

// TableName specifies the table name for Vote.
func (Vote) TableName() string {
	return "votes"
}
