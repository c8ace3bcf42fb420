package services

import (
	"testing"

	"application-review-api/models"
)

func TestCommentThreadKeepsCreationOrder(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, 1, models.RoleClient)
	member := seedUser(t, db, 100, models.RoleBoardMember)
	app := seedApplication(t, db, owner.UserID, models.StatusUnderReview)

	first, err := svc.AddComment(app.ApplicationID, boardActor(member.UserID), "Income looks verified.", false, false, nil)
	if err != nil {
		t.Fatalf("first comment: %v", err)
	}
	reply, err := svc.AddComment(app.ApplicationID, ownerActor(owner.UserID), "Yes, pay stubs attached.", false, false, &first.CommentID)
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if reply.ParentCommentID == nil || *reply.ParentCommentID != first.CommentID {
		t.Fatalf("reply must reference its parent, got %+v", reply.ParentCommentID)
	}

	third, err := svc.AddComment(app.ApplicationID, boardActor(member.UserID), "Thanks, confirmed.", false, false, &first.CommentID)
	if err != nil {
		t.Fatalf("third comment: %v", err)
	}

	comments, err := svc.ListComments(app.ApplicationID, boardActor(member.UserID))
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	want := []int{first.CommentID, reply.CommentID, third.CommentID}
	if len(comments) != len(want) {
		t.Fatalf("expected %d comments, got %d", len(want), len(comments))
	}
	for i, id := range want {
		if comments[i].CommentID != id {
			t.Fatalf("comment %d out of order: got %d want %d", i, comments[i].CommentID, id)
		}
	}
}

func TestPrivateCommentsNeverReachTheApplicant(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, 1, models.RoleClient)
	member := seedUser(t, db, 100, models.RoleBoardMember)
	app := seedApplication(t, db, owner.UserID, models.StatusUnderReview)

	if _, err := svc.AddComment(app.ApplicationID, boardActor(member.UserID), "Public question for the applicant.", false, false, nil); err != nil {
		t.Fatalf("public comment: %v", err)
	}
	if _, err := svc.AddComment(app.ApplicationID, boardActor(member.UserID), "Board only: income seems inflated.", true, false, nil); err != nil {
		t.Fatalf("private comment: %v", err)
	}

	// Applicant's thread view
	visible, err := svc.ListComments(app.ApplicationID, ownerActor(owner.UserID))
	if err != nil {
		t.Fatalf("ListComments owner: %v", err)
	}
	if len(visible) != 1 {
		t.Fatalf("applicant must see 1 comment, got %d", len(visible))
	}
	for _, comment := range visible {
		if comment.IsPrivate {
			t.Fatal("private comment leaked into applicant view")
		}
	}

	// Applicant's application view embeds the same filtered thread, no votes.
	view, err := svc.GetApplication(app.ApplicationID, ownerActor(owner.UserID))
	if err != nil {
		t.Fatalf("GetApplication owner: %v", err)
	}
	if len(view.Comments) != 1 {
		t.Fatalf("applicant application view must embed 1 comment, got %d", len(view.Comments))
	}
	if len(view.Votes) != 0 {
		t.Fatalf("applicant view must not include votes, got %d", len(view.Votes))
	}

	// Board sees everything.
	all, err := svc.ListComments(app.ApplicationID, boardActor(member.UserID))
	if err != nil {
		t.Fatalf("ListComments board: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("board must see both comments, got %d", len(all))
	}
}

func TestCrossApplicationThreadingRejected(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, 1, models.RoleClient)
	member := seedUser(t, db, 100, models.RoleBoardMember)
	appA := seedApplication(t, db, owner.UserID, models.StatusUnderReview)
	appB := seedApplication(t, db, owner.UserID, models.StatusUnderReview)

	parent, err := svc.AddComment(appA.ApplicationID, boardActor(member.UserID), "Comment on A.", false, false, nil)
	if err != nil {
		t.Fatalf("parent comment: %v", err)
	}

	_, err = svc.AddComment(appB.ApplicationID, boardActor(member.UserID), "Reply on the wrong application.", false, false, &parent.CommentID)
	mustKind(t, err, KindNotFound)
}

func TestApplicantCannotPostBoardOnlyComments(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, 1, models.RoleClient)
	app := seedApplication(t, db, owner.UserID, models.StatusUnderReview)

	_, err := svc.AddComment(app.ApplicationID, ownerActor(owner.UserID), "Sneaky private note.", true, false, nil)
	mustKind(t, err, KindUnauthorized)

	_, err = svc.AddComment(app.ApplicationID, ownerActor(owner.UserID), "Self info request.", false, true, nil)
	mustKind(t, err, KindUnauthorized)
}

func TestStrangersCannotReadOrWriteTheThread(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, 1, models.RoleClient)
	stranger := seedUser(t, db, 2, models.RoleClient)
	app := seedApplication(t, db, owner.UserID, models.StatusUnderReview)

	_, err := svc.AddComment(app.ApplicationID, ownerActor(stranger.UserID), "Not my application.", false, false, nil)
	mustKind(t, err, KindUnauthorized)

	_, err = svc.ListComments(app.ApplicationID, ownerActor(stranger.UserID))
	mustKind(t, err, KindUnauthorized)
}

func TestEmptyCommentRejected(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, 1, models.RoleClient)
	member := seedUser(t, db, 100, models.RoleBoardMember)
	app := seedApplication(t, db, owner.UserID, models.StatusUnderReview)

	_, err := svc.AddComment(app.ApplicationID, boardActor(member.UserID), "   ", false, false, nil)
	mustKind(t, err, KindValidation)
}
