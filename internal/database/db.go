package database

import (
	stdlog "log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"employee-directory/internal/config"
	"employee-directory/internal/models"
)

var logLevels = map[string]logger.LogLevel{
	"silent": logger.Silent,
	"error":  logger.Error,
	"warn":   logger.Warn,
	"info":   logger.Info,
}

// Open connects to PostgreSQL and brings the schema up to date.
func Open(cfg *config.Config) (*gorm.DB, error) {
	return Connect(postgres.Open(cfg.DatabaseDSN), cfg.DBLogLevel)
}

// Connect opens any gorm dialector with the service's settings and runs
// Migrate.
func Connect(dialector gorm.Dialector, logLevel string) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, Config(logLevel))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to database")
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("database connected, schema is up to date")
	return db, nil
}

func Config(logLevel string) *gorm.Config {
	level, ok := logLevels[logLevel]
	if !ok {
		level = logger.Warn
	}

	gormLogger := logger.New(
		stdlog.New(os.Stdout, "", stdlog.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	return &gorm.Config{
		Logger:  gormLogger,
		NowFunc: Now,
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Employee{}, &models.AuditLog{}); err != nil {
		return errors.Wrap(err, "migrating schema")
	}
	return nil
}

// Now is the clock for created_at/updated_at: UTC at the microsecond
// precision PostgreSQL stores, so values read back compare equal.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
