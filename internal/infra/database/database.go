package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ManishSRawat/e-sell/internal/config"
	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Open connects to the configured database and tunes its connection pool.
func Open(cfg config.DBConfig, workdir string) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg, workdir)
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: false,
		},
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}
	if cfg.Debug {
		gormCfg.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", cfg.Type)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Type == "sqlite" {
		// one writer at a time
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxConn)
		sqlDB.SetMaxIdleConns(cfg.IdleConn)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
		sqlDB.SetConnMaxIdleTime(1 * time.Minute)
	}
	return db, nil
}

func dialectorFor(cfg config.DBConfig, workdir string) (gorm.Dialector, error) {
	switch cfg.Type {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true",
			cfg.User, cfg.Passwd, cfg.Host, cfg.Port, cfg.Name)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Passwd, cfg.Name)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(sqlitePath(cfg.Name, workdir) + "?_foreign_keys=1&_busy_timeout=5000"), nil
	default:
		return nil, errors.Errorf("unsupported database type %q", cfg.Type)
	}
}

func sqlitePath(name, workdir string) string {
	if name == ":memory:" || filepath.IsAbs(name) || workdir == "" {
		return name
	}
	_ = os.MkdirAll(workdir, 0o755)
	return filepath.Join(workdir, name)
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.Tables...); err != nil {
		return errors.Wrap(err, "auto migrate")
	}
	return nil
}
