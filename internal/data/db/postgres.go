package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	types "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/domain"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/envutil"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
)

type Config struct {
	Driver string // postgres | sqlite
	DSN    string

	MaxOpenConns int
	MaxIdleConns int
}

// ConfigFromEnv prefers DATABASE_DSN and otherwise assembles a postgres DSN
// from POSTGRES_* variables.
func ConfigFromEnv() Config {
	driver := strings.ToLower(envutil.String("DB_DRIVER", "postgres"))
	dsn := envutil.String("DATABASE_DSN", "")
	if dsn == "" && driver == "postgres" {
		dsn = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=%s",
			envutil.String("POSTGRES_USER", "postgres"),
			envutil.String("POSTGRES_PASSWORD", ""),
			envutil.String("POSTGRES_HOST", "localhost"),
			envutil.String("POSTGRES_PORT", "5432"),
			envutil.String("POSTGRES_NAME", "decisionclarity"),
			envutil.String("POSTGRES_SSLMODE", "disable"),
		)
	}
	if dsn == "" && driver == "sqlite" {
		dsn = "file:decisionclarity.db?_busy_timeout=5000"
	}
	return Config{
		Driver:       driver,
		DSN:          dsn,
		MaxOpenConns: envutil.Int("DB_MAX_OPEN_CONNS", 20),
		MaxIdleConns: envutil.Int("DB_MAX_IDLE_CONNS", 5),
	}
}

func Open(baseLog *logger.Logger, cfg Config) (*gorm.DB, error) {
	serviceLog := baseLog.With("service", "Database", "driver", cfg.Driver)

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres", "":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql handle: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	serviceLog.Info("database connected")
	return db, nil
}

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
