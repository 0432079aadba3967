package services

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/roomshare/roomshare-be/internal/database"
	"github.com/roomshare/roomshare-be/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, users UserServiceProvider, name, email string) models.User {
	t.Helper()

	user, err := users.CreateVerifiedUser(name, email, "test-hash")
	if err != nil {
		t.Fatalf("failed to create test user %s: %v", email, err)
	}
	return user
}

// noopActivity satisfies ActivityServiceProvider for tests that do not
// care about the activity log.
type noopActivity struct{}

func (noopActivity) Record(groupID, activityType, message string) {}
func (noopActivity) GetRecentActivities(groupID, requesterID string, limit int) ([]models.Activity, error) {
	return nil, nil
}
