package services

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"application-review-api/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// recordingNotifier captures triggers instead of sending mail, so workflow
// tests can assert on notification hooks without a network.
type recordingNotifier struct {
	mu       sync.Mutex
	triggers []Trigger
}

func (n *recordingNotifier) Dispatch(triggers []Trigger) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.triggers = append(n.triggers, triggers...)
}

func (n *recordingNotifier) countEvent(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, trigger := range n.triggers {
		if trigger.Event == event {
			count++
		}
	}
	return count
}

func (n *recordingNotifier) lastEvent(event string) (Trigger, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.triggers) - 1; i >= 0; i-- {
		if n.triggers[i].Event == event {
			return n.triggers[i], true
		}
	}
	return Trigger{}, false
}

// newTestService builds a ReviewService on a file-backed sqlite database.
// _txlock=immediate keeps concurrent write transactions from deadlocking on
// lock upgrades; TranslateError maps the unique-index violation to
// gorm.ErrDuplicatedKey exactly like the MySQL driver does in production.
func newTestService(t *testing.T) (*ReviewService, *gorm.DB, *recordingNotifier) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "review.db") + "?_busy_timeout=5000&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{}, &models.Role{},
		&models.Application{}, &models.Vote{}, &models.Comment{},
		&models.Notification{}, &models.RefreshSession{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	notifier := &recordingNotifier{}
	svc := NewReviewService(db, NewDBRoster(db), notifier, QuorumRule{Fraction: 0.5, MinimumVotes: 1})
	return svc, db, notifier
}

func seedUser(t *testing.T, db *gorm.DB, id, roleID int) models.User {
	t.Helper()

	now := time.Now().Add(-30 * 24 * time.Hour) // joined a month ago
	user := models.User{
		UserID:    id,
		UserFname: fmt.Sprintf("User%d", id),
		UserLname: "Test",
		Email:     fmt.Sprintf("user%d@example.org", id),
		RoleID:    roleID,
		IsActive:  true,
		CreateAt:  &now,
	}
	if roleID == models.RoleBoardMember {
		user.BoardMemberSince = &now
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user %d: %v", id, err)
	}
	return user
}

func seedBoard(t *testing.T, db *gorm.DB, n int) []models.User {
	t.Helper()
	members := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		members = append(members, seedUser(t, db, 100+i, models.RoleBoardMember))
	}
	return members
}

func deactivateUser(t *testing.T, db *gorm.DB, userID int) {
	t.Helper()
	if err := db.Model(&models.User{}).Where("user_id = ?", userID).
		Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate user %d: %v", userID, err)
	}
}

// seedApplication inserts a complete application directly in the given status,
// bypassing the draft wizard, so individual tests start where they need to.
func seedApplication(t *testing.T, db *gorm.DB, ownerID int, status string) *models.Application {
	t.Helper()

	now := time.Now()
	app := &models.Application{
		UserID:               ownerID,
		ApplicantName:        "Pat Sample",
		ApplicantEmail:       "pat@example.org",
		ApplicantPhone:       "555-0100",
		EstimatedMonthlyCost: 450,
		PersonalStatement:    "I am between jobs and need help covering rent.",
		ExpectedBenefits:     "Stable housing while I complete retraining.",
		CommitmentStatement:  "I will report my progress monthly.",
		Signature:            "Pat Sample",
		Status:               status,
		CreateAt:             &now,
		UpdateAt:             &now,
	}
	app.SetFundingTypes([]string{"rent", "utilities"})

	if status != models.StatusDraft {
		submitted := now.Add(-48 * time.Hour)
		app.SubmittedAt = &submitted
	}
	switch status {
	case models.StatusUnderReview, models.StatusInDiscussion,
		models.StatusApproved, models.StatusRejected:
		started := now.Add(-24 * time.Hour)
		app.ReviewStartedAt = &started
	}

	if err := db.Create(app).Error; err != nil {
		t.Fatalf("seed application: %v", err)
	}
	return app
}

func ownerActor(userID int) Actor {
	return Actor{UserID: userID}
}

func boardActor(userID int) Actor {
	return Actor{UserID: userID, IsBoardMember: true}
}

func adminActor(userID int) Actor {
	return Actor{UserID: userID, IsAdmin: true, CanFinalize: true}
}

func mustKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()
	kind, ok := KindOf(err)
	if !ok {
		t.Fatalf("expected %s workflow error, got %v", want, err)
	}
	if kind != want {
		t.Fatalf("expected %s workflow error, got %s: %v", want, kind, err)
	}
}

func reloadApplication(t *testing.T, db *gorm.DB, id int) *models.Application {
	t.Helper()
	var app models.Application
	if err := db.First(&app, "application_id = ?", id).Error; err != nil {
		t.Fatalf("reload application %d: %v", id, err)
	}
	return &app
}
