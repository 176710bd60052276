package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-trust-api/internal/database"
	"github.com/noah-isme/gema-trust-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db, true))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username, role string) models.User {
	t.Helper()
	user := models.User{Username: username, Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func reloadUser(t *testing.T, db *gorm.DB, id uint) models.User {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, id).Error)
	return user
}

func trailActions(t *testing.T, db *gorm.DB) []string {
	t.Helper()
	var actions []string
	require.NoError(t, db.Model(&models.ActionTrailEntry{}).Order("id ASC").Pluck("action", &actions).Error)
	return actions
}

type stubStats struct {
	mu    sync.Mutex
	stats models.UserActivityStats
	err   error
	calls int
}

func (s *stubStats) UserStats(ctx context.Context, userID uint) (models.UserActivityStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return models.UserActivityStats{}, s.err
	}
	stats := s.stats
	stats.UserID = userID
	return stats, nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices map[uint][]Notice
	fail    bool
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{notices: map[uint][]Notice{}}
}

func (n *recordingNotifier) Notify(ctx context.Context, userID uint, notice Notice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("notification service unavailable")
	}
	n.notices[userID] = append(n.notices[userID], notice)
	return nil
}

func (n *recordingNotifier) count(userID uint) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notices[userID])
}

func newValidator() *validator.Validate {
	return validator.New()
}
