package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/config"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/models"
)

// Database abstracts the gorm handle so services can be tested against an
// in-memory store.
type Database interface {
	Create(value interface{}) error
	Save(value interface{}) error
	First(dest interface{}, conds ...interface{}) error
	Find(dest interface{}, conds ...interface{}) error
	Where(query interface{}, args ...interface{}) Database
	Preload(query string, args ...interface{}) Database
	Order(value interface{}) Database
	Limit(limit int) Database
	Model(value interface{}) Database
	Update(column string, value interface{}) error
	Updates(values interface{}) error
	Delete(value interface{}, conds ...interface{}) error
	Count(count *int64) error
	Transaction(fn func(tx Database) error) error
	DB() *gorm.DB
}

// RedisClient is the slice of the redis API this service uses. Kept small so
// tests can stub it without a running server.
type RedisClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

func Connect(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(postgres.Open(cfg.URL), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConnections)
	sqlDB.SetConnMaxLifetime(cfg.ConnectionLifetime)

	return db, nil
}

// AutoMigrate keeps development databases in step with the models. Deployed
// environments run the versioned migrations instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Client{},
		&models.Activity{},
		&models.Appointment{},
		&models.GHLIntegration{},
		&models.WebhookEvent{},
	)
}
