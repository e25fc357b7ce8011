// Package db provides database connectivity and operations
package db

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/productbird/connector/config"
	"github.com/productbird/connector/internal/db/models"
)

// Database configuration constants
const (
	// DefaultHost is the default database host
	DefaultHost = "localhost"
	// DefaultPort is the default database port
	DefaultPort = 5432
	// DefaultUser is the default database user
	DefaultUser = "postgres"
	// DefaultPassword is the default database password
	DefaultPassword = "postgres"
	// DefaultDBName is the default database name
	DefaultDBName = "postgres"
	// DefaultSSLEnabled is the default SSL setting
	DefaultSSLEnabled = false
)

// Options represents database connection configuration options
type Options struct {
	Host       string
	User       string
	Password   string
	DBName     string
	Port       int
	SSLEnabled *bool
	LogLevel   logger.LogLevel
}

// New creates a new database connection with the given options
func New(opts Options) (*gorm.DB, error) {
	opts = setDefaults(opts)
	sslMode := "disable"
	if opts.SSLEnabled != nil && *opts.SSLEnabled {
		sslMode = "enable"
	}
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		opts.Host, opts.User, opts.Password, opts.DBName, opts.Port, sslMode)

	// Configure custom logger to ignore record not found errors
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			LogLevel:                  opts.LogLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: newLogger})
	if err != nil {
		return nil, err
	}
	if err := Migrate(gormDB); err != nil {
		return nil, err
	}

	return gormDB, nil
}

// NewFromEnv creates a database connection from DB_* environment variables,
// falling back to the package defaults for anything unset
func NewFromEnv() (*gorm.DB, error) {
	port := DefaultPort
	if raw := config.GetEnv(config.EnvDBPort, ""); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", config.EnvDBPort, err)
		}
		port = parsed
	}

	sslEnabled := config.GetEnv(config.EnvDBSSLMode, "") == "enable"

	return New(Options{
		Host:       config.GetEnv(config.EnvDBHost, DefaultHost),
		User:       config.GetEnv(config.EnvDBUser, DefaultUser),
		Password:   config.GetEnv(config.EnvDBPassword, DefaultPassword),
		DBName:     config.GetEnv(config.EnvDBName, DefaultDBName),
		Port:       port,
		SSLEnabled: &sslEnabled,
	})
}

// Migrate runs the schema migrations for all connector models
func Migrate(gormDB *gorm.DB) error {
	return gormDB.AutoMigrate(
		&models.GenerationRecord{},
		&models.Item{},
	)
}

func setDefaults(opts Options) Options {
	if opts.Host == "" {
		opts.Host = DefaultHost
	}
	if opts.User == "" {
		opts.User = DefaultUser
	}
	if opts.Password == "" {
		opts.Password = DefaultPassword
	}
	if opts.DBName == "" {
		opts.DBName = DefaultDBName
	}
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}
	if opts.SSLEnabled == nil {
		sslMode := DefaultSSLEnabled
		opts.SSLEnabled = &sslMode
	}
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}
	return opts
}
