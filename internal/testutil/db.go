// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"legal-aid-be/internal/entity"
	"legal-aid-be/internal/model"
	"legal-aid-be/internal/repository/unitofwork"
	"legal-aid-be/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a private in-memory SQLite database with every table migrated.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.NewSQLiteDB(dsn, true)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SeedUser inserts an active user and returns it.
func SeedUser(t testing.TB, factory unitofwork.RepositoryFactory, email string) *entity.User {
	t.Helper()

	u := &entity.User{
		Email:         email,
		PasswordHash:  "x",
		FullName:      "Test User",
		Role:          entity.UserRoleUser,
		Status:        entity.UserStatusActive,
		EmailVerified: true,
	}
	ctx := context.Background()
	require.NoError(t, factory.NewUnitOfWork(ctx).UserRepository().Create(ctx, u))
	return u
}
