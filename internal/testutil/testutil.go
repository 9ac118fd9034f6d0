// Package testutil builds throwaway storage for tests.
package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"blogapi/internal/db"
	"blogapi/internal/model"
)

// Clock is a fake time source that advances one second on every reading,
// so rows created in sequence get strictly increasing timestamps.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a clock at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current fake time and advances the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// NewDB opens a private in-memory SQLite database with the schema applied.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	clock := NewClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		NowFunc:        clock.Now,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

// CreateUser inserts a user directly, bypassing registration.
func CreateUser(t testing.TB, gdb *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{
		ID:           uuid.New(),
		Name:         "Ada",
		LastName:     "Lovelace",
		Email:        email,
		PasswordHash: "x",
	}
	require.NoError(t, gdb.Create(user).Error)
	return user
}
