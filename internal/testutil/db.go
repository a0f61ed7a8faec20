package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/straye-as/quotation-api/internal/database"
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory SQLite database with foreign keys enforced
// and the schema migrated. It is closed when the test ends.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to :memory: is a new database, so keep exactly one
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// CreateTestUser inserts a user with the given approval state
func CreateTestUser(t *testing.T, db *gorm.DB, email, name string, approved bool) *domain.User {
	t.Helper()
	user := &domain.User{
		Email: email,
		Name:  name,
		Role:  domain.UserRoleUser,
	}
	require.NoError(t, db.WithContext(context.Background()).Create(user).Error)
	if approved {
		require.NoError(t, db.Model(user).Update("is_approved", true).Error)
		user.IsApproved = true
	}
	return user
}

// SampleDocument returns a valid document with n main items whose quantities are 1..n
func SampleDocument(title, customer string, n int) *domain.Document {
	doc := &domain.Document{
		Header: domain.Header{Title: title, CustomerName: customer},
		Terms:  domain.Terms{ExpiryDate: domain.DefaultExpiryTerms, Conditions: "net 30"},
		Tabs:   domain.DefaultTabConfig(),
	}
	for i := 1; i <= n; i++ {
		doc.Main = append(doc.Main, domain.Item{
			Name:      "item",
			Unit:      "ea",
			Quantity:  float64(i),
			UnitPrice: 100,
		})
	}
	return doc
}
