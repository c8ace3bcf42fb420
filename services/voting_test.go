package services

import (
	"sync"
	"sync/atomic"
	"testing"

	"application-review-api/models"
)

func TestQuorumReachedAfterThirdOfFiveVotes(t *testing.T) {
	svc, db, notifier := newTestService(t)
	owner := seedUser(t, db, 1, models.RoleClient)
	seedUser(t, db, 2, models.RoleAdmin)
	board := seedBoard(t, db, 5) // quorum = ceil(5 * 0.5) = 3

	app := seedApplication(t, db, owner.UserID, models.StatusUnderReview)

	for i, member := range board[:2] {
		_, summary, err := svc.CastVote(app.ApplicationID, boardActor(member.UserID), models.VoteApprove, "looks solid", 4)
		if err != nil {
			t.Fatalf("vote %d: %v", i+1, err)
		}
		if summary.QuorumReached {
			t.Fatalf("quorum must not be reached after %d of 3 votes", i+1)
		}
		if summary.VotesRequired != 3 {
			t.Fatalf("expected 3 votes required, got %d", summary.VotesRequired)
		}
	}

	_, summary, err := svc.CastVote(app.ApplicationID, boardActor(board[2].UserID), models.VoteApprove, "agree", 5)
	if err != nil {
		t.Fatalf("third vote: %v", err)
	}
	if !summary.QuorumReached {
		t.Fatal("quorum must be reached after the third vote")
	}
	if summary.ApprovalVotes != 3 || summary.RejectionVotes != 0 {
		t.Fatalf("unexpected tally: %+v", summary)
	}

	// The hook fires exactly once, on the vote that crossed the line, and the
	// application status is untouched: quorum is a signal, not a transition.
	if got := notifier.countEvent(TriggerQuorumReached); got != 1 {
		t.Fatalf("expected 1 quorum trigger, got %d", got)
	}
	if reloadApplication(t, db, app.ApplicationID).Status != models.StatusUnderReview {
		t.Fatal("reaching quorum must not change application status")
	}

	// A fourth vote keeps quorum true without re-firing the hook.
	_, summary, err = svc.CastVote(app.ApplicationID, boardActor(board[3].UserID), models.VoteReject, "concerns about budget", 2)
	if err != nil {
		t.Fatalf("fourth vote: %v", err)
	}
	if !summary.QuorumReached || summary.RejectionVotes != 1 {
		t.Fatalf("unexpected tally after fourth vote: %+v", summary)
	}
	if got := notifier.countEvent(TriggerQuorumReached); got != 1 {
		t.Fatalf("quorum trigger must not re-fire, got %d", got)
	}
}

func TestSecondVoteBySameVoterIsDuplicate(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, 1, models.RoleClient)
	board := seedBoard(t, db, 3)
	app := seedApplication(t, db, owner.UserID, models.StatusUnderReview)

	voter := boardActor(board[0].UserID)
	if _, _, err := svc.CastVote(app.ApplicationID, voter, models.VoteApprove, "first pass", 4); err != nil {
		t.Fatalf("first vote: %v", err)
	}

	// Changing one's mind is not an upsert: the second cast is a conflict.
	_, _, err := svc.CastVote(app.ApplicationID, voter, models.VoteReject, "changed my mind", 4)
	mustKind(t, err, KindDuplicateVote)

	summary, err := svc.GetVotingSummary(app.ApplicationID)
	if err != nil {
		t.Fatalf("GetVotingSummary: %v", err)
	}
	if summary.TotalVotes != 1 || summary.ApprovalVotes != 1 || summary.RejectionVotes != 0 {
		t.Fatalf("tally must keep the original vote: %+v", summary)
	}
}

func TestConcurrentDuplicateVotes(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, 1, models.RoleClient)
	board := seedBoard(t, db, 3)
	app := seedApplication(t, db, owner.UserID, models.StatusUnderReview)

	voter := boardActor(board[0].UserID)

	var successes, duplicates atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.CastVote(app.ApplicationID, voter, models.VoteApprove, "double click", 3)
			switch {
			case err == nil:
				successes.Add(1)
			case IsKind(err, KindDuplicateVote):
				duplicates.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes.Load() != 1 || duplicates.Load() != 1 {
		t.Fatalf("expected exactly one success and one duplicate, got %d/%d",
			successes.Load(), duplicates.Load())
	}

	var count int64
	if err := db.Model(&models.Vote{}).
		Where("application_id = ? AND voter_id = ?", app.ApplicationID, voter.UserID).
		Count(&count).Error; err != nil {
		t.Fatalf("count votes: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one persisted vote, got %d", count)
	}
}

func TestConcurrentVotesByDistinctVotersAllPersist(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, 1, models.RoleClient)
	seedUser(t, db, 2, models.RoleAdmin)
	board := seedBoard(t, db, 5)
	app := seedApplication(t, db, owner.UserID, models.StatusUnderReview)

	var successes atomic.Int32
	var wg sync.WaitGroup
	for _, member := range board {
		wg.Add(1)
		go func(voterID int) {
			defer wg.Done()
			if _, _, err := svc.CastVote(app.ApplicationID, boardActor(voterID), models.VoteApprove, "", 3); err != nil {
				t.Errorf("vote by %d: %v", voterID, err)
				return
			}
			successes.Add(1)
		}(member.UserID)
	}
	wg.Wait()

	if int(successes.Load()) != len(board) {
		t.Fatalf("expected %d successful votes, got %d", len(board), successes.Load())
	}

	summary, err := svc.GetVotingSummary(app.ApplicationID)
	if err != nil {
		t.Fatalf("GetVotingSummary: %v", err)
	}
	if summary.TotalVotes != len(board) {
		t.Fatalf("expected %d votes, got %d", len(board), summary.TotalVotes)
	}
}

func TestQuorumHookFiresOnceUnderConcurrentCrossingVotes(t *testing.T) {
	svc, db, notifier := newTestService(t)
	owner := seedUser(t, db, 1, models.RoleClient)
	seedUser(t, db, 2, models.RoleAdmin)
	board := seedBoard(t, db, 5) // quorum = 3
	app := seedApplication(t, db, owner.UserID, models.StatusUnderReview)

	for _, member := range board[:2] {
		if _, _, err := svc.CastVote(app.ApplicationID, boardActor(member.UserID), models.VoteApprove, "", 3); err != nil {
			t.Fatalf("vote: %v", err)
		}
	}

	// Votes three and four land together. By the time either caster reads the
	// tally back it may already show four votes; the crossing decision comes
	// from the count taken inside each insert transaction, so exactly one of
	// them owns the crossing no matter how the reads interleave.
	var wg sync.WaitGroup
	for _, member := range board[2:4] {
		wg.Add(1)
		go func(voterID int) {
			defer wg.Done()
			if _, _, err := svc.CastVote(app.ApplicationID, boardActor(voterID), models.VoteApprove, "", 4); err != nil {
				t.Errorf("vote by %d: %v", voterID, err)
			}
		}(member.UserID)
	}
	wg.Wait()

	if got := notifier.countEvent(TriggerQuorumReached); got != 1 {
		t.Fatalf("expected exactly 1 quorum trigger, got %d", got)
	}
}

func TestQuorumTracksLiveRoster(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, 1, models.RoleClient)
	board := seedBoard(t, db, 5) // required = 3 while all five are active
	app := seedApplication(t, db, owner.UserID, models.StatusUnderReview)

	for _, member := range board[:2] {
		if _, _, err := svc.CastVote(app.ApplicationID, boardActor(member.UserID), models.VoteApprove, "", 3); err != nil {
			t.Fatalf("vote: %v", err)
		}
	}

	summary, err := svc.GetVotingSummary(app.ApplicationID)
	if err != nil {
		t.Fatalf("GetVotingSummary: %v", err)
	}
	if summary.QuorumReached || summary.VotesRequired != 3 {
		t.Fatalf("expected 2/3 not reached, got %+v", summary)
	}

	// Two members leave the board; quorum shrinks to ceil(3 * 0.5) = 2 and the
	// same two votes now satisfy it.
	deactivateUser(t, db, board[3].UserID)
	deactivateUser(t, db, board[4].UserID)

	summary, err = svc.GetVotingSummary(app.ApplicationID)
	if err != nil {
		t.Fatalf("GetVotingSummary after roster change: %v", err)
	}
	if summary.VotesRequired != 2 || !summary.QuorumReached {
		t.Fatalf("expected quorum 2 reached, got %+v", summary)
	}

	// A voter who already voted then leaves: the cast vote still counts in the
	// numerator, only the denominator follows the roster.
	deactivateUser(t, db, board[0].UserID)

	summary, err = svc.GetVotingSummary(app.ApplicationID)
	if err != nil {
		t.Fatalf("GetVotingSummary after voter deactivated: %v", err)
	}
	if summary.TotalVotes != 2 {
		t.Fatalf("deactivated voter's vote must still count, got %d", summary.TotalVotes)
	}
	if summary.VotesRequired != 1 {
		t.Fatalf("expected quorum 1 on a roster of 2, got %d", summary.VotesRequired)
	}
}

func TestCastVoteRequiresBoardCapability(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, 1, models.RoleClient)
	app := seedApplication(t, db, owner.UserID, models.StatusUnderReview)

	_, _, err := svc.CastVote(app.ApplicationID, ownerActor(owner.UserID), models.VoteApprove, "", 3)
	mustKind(t, err, KindUnauthorized)
}

func TestCastVoteOutsideVoteAcceptingStates(t *testing.T) {
	for _, status := range []string{models.StatusDraft, models.StatusSubmitted, models.StatusApproved} {
		t.Run(status, func(t *testing.T) {
			svc, db, _ := newTestService(t)
			owner := seedUser(t, db, 1, models.RoleClient)
			member := seedUser(t, db, 100, models.RoleBoardMember)
			app := seedApplication(t, db, owner.UserID, status)

			_, _, err := svc.CastVote(app.ApplicationID, boardActor(member.UserID), models.VoteApprove, "", 3)
			mustKind(t, err, KindInvalidTransition)
		})
	}
}

func TestCastVoteValidation(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, 1, models.RoleClient)
	member := seedUser(t, db, 100, models.RoleBoardMember)
	app := seedApplication(t, db, owner.UserID, models.StatusUnderReview)

	_, _, err := svc.CastVote(app.ApplicationID, boardActor(member.UserID), "maybe", "", 3)
	mustKind(t, err, KindValidation)

	_, _, err = svc.CastVote(app.ApplicationID, boardActor(member.UserID), models.VoteApprove, "", 9)
	mustKind(t, err, KindValidation)
}

func TestVotingInDiscussionStateIsAllowed(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, 1, models.RoleClient)
	member := seedUser(t, db, 100, models.RoleBoardMember)
	app := seedApplication(t, db, owner.UserID, models.StatusInDiscussion)

	if _, _, err := svc.CastVote(app.ApplicationID, boardActor(member.UserID), models.VoteAbstain, "waiting on more info", 2); err != nil {
		t.Fatalf("vote in discussion: %v", err)
	}
}
