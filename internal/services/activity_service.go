package services

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/roomshare/roomshare-be/internal/models"
	"github.com/roomshare/roomshare-be/internal/websocket"
)

// ActivityServiceProvider defines the interface for the per-group
// activity log feeding the live activity feed.
type ActivityServiceProvider interface {
	Record(groupID, activityType, message string)
	GetRecentActivities(groupID, requesterID string, limit int) ([]models.Activity, error)
}

// Broadcaster pushes a payload to every client subscribed to a group.
type Broadcaster interface {
	BroadcastTo(groupID string, message []byte)
}

// ActivityService logs group activity and broadcasts it to subscribers.
type ActivityService struct {
	db       *sql.DB
	security SecurityServiceProvider
	hub      Broadcaster
}

// NewActivityService creates a new ActivityService.
func NewActivityService(db *sql.DB, security SecurityServiceProvider, hub Broadcaster) *ActivityService {
	return &ActivityService{db: db, security: security, hub: hub}
}

// Record logs a new activity entry and notifies live subscribers.
// Activity logging is best-effort and never fails the calling operation.
func (s *ActivityService) Record(groupID, activityType, message string) {
	activity := models.Activity{
		ID:        uuid.New().String(),
		GroupID:   groupID,
		Type:      activityType,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec("INSERT INTO activities (id, group_id, type, message, created_at) VALUES (?, ?, ?, ?, ?)",
		activity.ID, activity.GroupID, activity.Type, activity.Message, activity.CreatedAt.Unix())
	if err != nil {
		log.Error().Err(err).Str("group_id", groupID).Str("type", activityType).Msg("Failed to record activity")
		return
	}

	if s.hub != nil {
		payload, err := json.Marshal(websocket.Message{Action: "activity", Payload: activity})
		if err == nil {
			s.hub.BroadcastTo(groupID, payload)
		}
	}
}

// GetRecentActivities returns the most recent activity entries for a
// group. The requester must be a member.
func (s *ActivityService) GetRecentActivities(groupID, requesterID string, limit int) ([]models.Activity, error) {
	if err := s.security.VerifyMember(groupID, requesterID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		"SELECT id, group_id, type, message, created_at FROM activities WHERE group_id = ? ORDER BY created_at DESC LIMIT ?",
		groupID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var a models.Activity
		var created int64
		if err := rows.Scan(&a.ID, &a.GroupID, &a.Type, &a.Message, &created); err != nil {
			return nil, err
		}
		a.CreatedAt = time.Unix(created, 0).UTC()
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
