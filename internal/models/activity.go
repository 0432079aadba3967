package models

import "time"

// Activity represents a loggable action within a group, e.g. an expense
// being added or a member joining. Activities feed the group's live feed.
type Activity struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"groupId"`
	Type      string    `json:"type"` // e.g. "expense.add", "member.add"
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
