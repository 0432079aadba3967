package models

import "time"

// Role is the privilege level of a member within a group.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// Group represents a shared-expense group.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// GroupMember links a user to a group with a role.
// The (group, user) pair is unique; a group keeps at least one ADMIN
// for as long as it has any members.
type GroupMember struct {
	ID       string    `json:"id"`
	GroupID  string    `json:"groupId"`
	UserID   string    `json:"userId"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

// GroupMemberInfo is the member projection returned to clients.
// It carries identity display fields only, never credentials.
type GroupMemberInfo struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// UserGroup is one entry of a user's group list with their role in it.
type UserGroup struct {
	GroupID string `json:"groupId"`
	Name    string `json:"name"`
	Role    Role   `json:"role"`
}
