package services

import (
	"application-review-api/models"

	"gorm.io/gorm"
)

// RosterProvider answers "who currently holds board-member capability". The
// voting engine calls it fresh on every quorum computation; implementations
// must not cache across calls.
type RosterProvider interface {
	EligibleVoters() ([]models.User, error)
}

type dbRoster struct {
	db *gorm.DB
}

// NewDBRoster returns a RosterProvider backed by a live query against the
// users table: active, non-deleted board members as of right now.
func NewDBRoster(db *gorm.DB) RosterProvider {
	return &dbRoster{db: db}
}

func (r *dbRoster) EligibleVoters() ([]models.User, error) {
	var voters []models.User
	err := r.db.
		Where("role_id = ? AND is_active = ? AND delete_at IS NULL", models.RoleBoardMember, true).
		Find(&voters).Error
	if err != nil {
		return nil, err
	}
	return voters, nil
}
