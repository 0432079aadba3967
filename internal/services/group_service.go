package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/roomshare/roomshare-be/internal/models"
)

// GroupServiceProvider defines the interface for group and membership
// management. Every group-scoped method takes the caller's identity
// explicitly; there is no ambient current-user state.
type GroupServiceProvider interface {
	CreateGroup(name, creatorID string) (models.Group, error)
	AddMember(groupID, requesterID, newMemberEmail string) (models.GroupMemberInfo, error)
	RemoveMember(groupID, requesterID, targetUserID string) error
	GetGroupMembers(groupID, requesterID string) ([]models.GroupMemberInfo, error)
	GetGroupsForUser(userID string) ([]models.UserGroup, error)
}

// GroupService provides business logic for groups and memberships.
type GroupService struct {
	db       *sql.DB
	security SecurityServiceProvider
	users    UserServiceProvider
	activity ActivityServiceProvider
}

// NewGroupService creates a new GroupService.
func NewGroupService(db *sql.DB, security SecurityServiceProvider, users UserServiceProvider, activity ActivityServiceProvider) *GroupService {
	return &GroupService{db: db, security: security, users: users, activity: activity}
}

// CreateGroup creates a group together with its first membership row: the
// creator joins with the ADMIN role. Both inserts commit atomically.
func (s *GroupService) CreateGroup(name, creatorID string) (models.Group, error) {
	creator, err := s.users.GetUserByID(creatorID)
	if err != nil {
		return models.Group{}, err
	}

	group := models.Group{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedBy: creator.ID,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.Group{}, err
	}
	defer tx.Rollback()

	_, err = tx.Exec("INSERT INTO groups (id, name, created_by, created_at) VALUES (?, ?, ?, ?)",
		group.ID, group.Name, group.CreatedBy, group.CreatedAt.Unix())
	if err != nil {
		return models.Group{}, err
	}

	_, err = tx.Exec("INSERT INTO group_members (id, group_id, user_id, role, joined_at) VALUES (?, ?, ?, ?, ?)",
		uuid.New().String(), group.ID, creator.ID, models.RoleAdmin, group.CreatedAt.Unix())
	if err != nil {
		return models.Group{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Group{}, err
	}

	log.Info().Str("group_id", group.ID).Str("created_by", creator.ID).Msg("Group created")
	return group, nil
}

// AddMember adds the user identified by email to the group with the
// MEMBER role. The requester must be an ADMIN of the group. Adding a user
// who is already a member fails with ErrConflict and creates no row.
func (s *GroupService) AddMember(groupID, requesterID, newMemberEmail string) (models.GroupMemberInfo, error) {
	if err := s.security.VerifyAdmin(groupID, requesterID); err != nil {
		return models.GroupMemberInfo{}, err
	}
	if _, err := s.getGroup(groupID); err != nil {
		return models.GroupMemberInfo{}, err
	}

	userToAdd, err := s.users.GetUserByEmail(newMemberEmail)
	if err != nil {
		return models.GroupMemberInfo{}, err
	}

	var existing int
	err = s.db.QueryRow("SELECT COUNT(1) FROM group_members WHERE group_id = ? AND user_id = ?",
		groupID, userToAdd.ID).Scan(&existing)
	if err != nil {
		return models.GroupMemberInfo{}, err
	}
	if existing > 0 {
		return models.GroupMemberInfo{}, fmt.Errorf("%w: user is already a member of this group", ErrConflict)
	}

	_, err = s.db.Exec("INSERT INTO group_members (id, group_id, user_id, role, joined_at) VALUES (?, ?, ?, ?, ?)",
		uuid.New().String(), groupID, userToAdd.ID, models.RoleMember, time.Now().Unix())
	if err != nil {
		return models.GroupMemberInfo{}, err
	}

	s.activity.Record(groupID, "member.add", fmt.Sprintf("%s joined the group.", userToAdd.Name))

	return models.GroupMemberInfo{
		UserID: userToAdd.ID,
		Name:   userToAdd.Name,
		Email:  userToAdd.Email,
		Role:   models.RoleMember,
	}, nil
}

// RemoveMember deletes the target's membership. The requester must be an
// ADMIN. Removing an ADMIN fails with ErrInvalidState when it would leave
// the group without any admin.
func (s *GroupService) RemoveMember(groupID, requesterID, targetUserID string) error {
	if err := s.security.VerifyAdmin(groupID, requesterID); err != nil {
		return err
	}

	var memberID string
	var role models.Role
	err := s.db.QueryRow("SELECT id, role FROM group_members WHERE group_id = ? AND user_id = ?",
		groupID, targetUserID).Scan(&memberID, &role)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: member not found in group", ErrNotFound)
		}
		return err
	}

	if role == models.RoleAdmin {
		var adminCount int
		err = s.db.QueryRow("SELECT COUNT(1) FROM group_members WHERE group_id = ? AND role = ?",
			groupID, models.RoleAdmin).Scan(&adminCount)
		if err != nil {
			return err
		}
		if adminCount <= 1 {
			return fmt.Errorf("%w: cannot remove the only admin of the group", ErrInvalidState)
		}
	}

	if _, err := s.db.Exec("DELETE FROM group_members WHERE id = ?", memberID); err != nil {
		return err
	}

	log.Info().Str("group_id", groupID).Str("removed_user", targetUserID).Str("by", requesterID).Msg("Member removed")
	s.activity.Record(groupID, "member.remove", "A member was removed from the group.")
	return nil
}

// GetGroupMembers returns the member projection for every membership.
// The requester must be a member of the group.
func (s *GroupService) GetGroupMembers(groupID, requesterID string) ([]models.GroupMemberInfo, error) {
	if err := s.security.VerifyMember(groupID, requesterID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT u.id, u.name, u.email, gm.role
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		WHERE gm.group_id = ?
		ORDER BY gm.joined_at`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.GroupMemberInfo
	for rows.Next() {
		var m models.GroupMemberInfo
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email, &m.Role); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// GetGroupsForUser returns every group the user belongs to with their
// role in each. Self-scoped, so no group authorization applies.
func (s *GroupService) GetGroupsForUser(userID string) ([]models.UserGroup, error) {
	rows, err := s.db.Query(`
		SELECT g.id, g.name, gm.role
		FROM group_members gm
		JOIN groups g ON g.id = gm.group_id
		WHERE gm.user_id = ?
		ORDER BY g.created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.UserGroup
	for rows.Next() {
		var g models.UserGroup
		if err := rows.Scan(&g.GroupID, &g.Name, &g.Role); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (s *GroupService) getGroup(groupID string) (models.Group, error) {
	var group models.Group
	var created int64
	row := s.db.QueryRow("SELECT id, name, created_by, created_at FROM groups WHERE id = ?", groupID)
	if err := row.Scan(&group.ID, &group.Name, &group.CreatedBy, &created); err != nil {
		if err == sql.ErrNoRows {
			return models.Group{}, fmt.Errorf("%w: group not found", ErrNotFound)
		}
		return models.Group{}, err
	}
	group.CreatedAt = time.Unix(created, 0).UTC()
	return group, nil
}
