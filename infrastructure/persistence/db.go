// Package persistence owns the process-wide gorm client. One *gorm.DB is
// shared by every repository; gorm pools connections underneath.
package persistence

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"mysre-backend/domain/model"
)

// Open connects to Postgres and migrates the schema.
func Open(databaseURL string, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		return nil, err
	}
	logger.Info("database connected and migrated")
	return db, nil
}

// Ping verifies database connectivity for the readiness probe.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
