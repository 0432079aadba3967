package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/roomshare/roomshare-be/internal/models"
)

// SecurityServiceProvider defines the membership checks gating every
// group-scoped operation. Checks run strictly before any mutation or
// aggregation query and have no side effects.
type SecurityServiceProvider interface {
	VerifyMember(groupID, userID string) error
	VerifyAdmin(groupID, userID string) error
}

// SecurityService answers membership and role questions from the ledger.
type SecurityService struct {
	db *sql.DB
}

// NewSecurityService creates a new SecurityService.
func NewSecurityService(db *sql.DB) *SecurityService {
	return &SecurityService{db: db}
}

// VerifyMember fails with ErrForbidden unless userID is a member of groupID.
func (s *SecurityService) VerifyMember(groupID, userID string) error {
	_, err := s.membership(groupID, userID)
	return err
}

// VerifyAdmin fails with ErrForbidden unless userID is an ADMIN of groupID.
func (s *SecurityService) VerifyAdmin(groupID, userID string) error {
	member, err := s.membership(groupID, userID)
	if err != nil {
		return err
	}
	if member.Role != models.RoleAdmin {
		return fmt.Errorf("%w: this action requires admin privileges", ErrForbidden)
	}
	return nil
}

func (s *SecurityService) membership(groupID, userID string) (models.GroupMember, error) {
	var member models.GroupMember
	var joined int64
	row := s.db.QueryRow(
		"SELECT id, group_id, user_id, role, joined_at FROM group_members WHERE group_id = ? AND user_id = ?",
		groupID, userID)
	err := row.Scan(&member.ID, &member.GroupID, &member.UserID, &member.Role, &joined)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.GroupMember{}, fmt.Errorf("%w: you are not a member of this group", ErrForbidden)
		}
		return models.GroupMember{}, err
	}
	member.JoinedAt = time.Unix(joined, 0).UTC()
	return member, nil
}
