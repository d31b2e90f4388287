package db

import (
	"fmt"
	"kvartal/internal/logger"
	"kvartal/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init connects to PostgreSQL and migrates the schema.
func Init(dsn string) error {
	if err := Connect(dsn); err != nil {
		return err
	}
	if err := Migrate(DB); err != nil {
		return err
	}
	logger.Log.Info("Database migration completed")
	return nil
}

// Connect opens the PostgreSQL pool without touching the schema.
func Connect(dsn string) error {
	conn, err := Open(postgres.Open(dsn))
	if err != nil {
		return err
	}
	DB = conn
	logger.Log.Info("Database connection established")
	return nil
}

// Open opens a gorm connection on any dialector; tests pass SQLite here.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return conn, nil
}

// Migrate creates or updates every table the application uses.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
		&models.CommentLike{},
		&models.Favorite{},
		&models.Message{},
		// 商店
		&models.Category{},
		&models.Product{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

// Ping checks the underlying connection pool.
func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Ping(); err != nil {
		logger.Log.Warn("Database ping failed", zap.Error(err))
		return err
	}
	return nil
}
