package services

import (
	"encoding/json"
	"errors"
	"testing"
)

// recordingBroadcaster captures hub broadcasts instead of delivering them.
type recordingBroadcaster struct {
	groupIDs []string
	payloads [][]byte
}

func (b *recordingBroadcaster) BroadcastTo(groupID string, message []byte) {
	b.groupIDs = append(b.groupIDs, groupID)
	b.payloads = append(b.payloads, message)
}

func TestActivityRecordAndFetch(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	security := NewSecurityService(db)
	hub := &recordingBroadcaster{}
	activity := NewActivityService(db, security, hub)
	groups := NewGroupService(db, security, users, activity)

	admin := createTestUser(t, users, "Alice", "alice@example.com")
	bob := createTestUser(t, users, "Bob", "bob@example.com")
	group, err := groups.CreateGroup("Flat 4B", admin.ID)
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}

	// AddMember records an activity entry and broadcasts it.
	if _, err := groups.AddMember(group.ID, admin.ID, bob.Email); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}

	if len(hub.payloads) != 1 {
		t.Fatalf("got %d broadcasts, want 1", len(hub.payloads))
	}
	if hub.groupIDs[0] != group.ID {
		t.Errorf("broadcast to group %q, want %q", hub.groupIDs[0], group.ID)
	}
	var frame struct {
		Action  string `json:"action"`
		Payload struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(hub.payloads[0], &frame); err != nil {
		t.Fatalf("invalid broadcast frame: %v", err)
	}
	if frame.Action != "activity" || frame.Payload.Type != "member.add" {
		t.Errorf("unexpected frame: %+v", frame)
	}

	entries, err := activity.GetRecentActivities(group.ID, bob.ID, 10)
	if err != nil {
		t.Fatalf("GetRecentActivities() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d activities, want 1", len(entries))
	}
	if entries[0].Type != "member.add" {
		t.Errorf("activity type = %q, want member.add", entries[0].Type)
	}

	outsider := createTestUser(t, users, "Eve", "eve@example.com")
	if _, err := activity.GetRecentActivities(group.ID, outsider.ID, 10); !errors.Is(err, ErrForbidden) {
		t.Errorf("GetRecentActivities by outsider = %v, want ErrForbidden", err)
	}
}
