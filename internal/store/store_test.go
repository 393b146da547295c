package store

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"platechat-server/internal/models"
)

// newTestDB opens an isolated in-memory database with the full schema.
// The pool is limited to one connection so every query sees the same
// in-memory instance.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.Migrate(db))
	return db
}

// createUser inserts a user with the given plates; the first plate becomes
// primary.
func createUser(t *testing.T, db *gorm.DB, email string, plates ...string) *models.User {
	t.Helper()

	user := models.User{Email: email}
	require.NoError(t, user.SetPassword("secret-password"))
	require.NoError(t, db.Create(&user).Error)

	for i, plate := range plates {
		vehicle := models.Vehicle{
			UserID:    user.ID,
			Plate:     plate,
			IsPrimary: i == 0,
		}
		require.NoError(t, db.Create(&vehicle).Error)
	}
	return &user
}
