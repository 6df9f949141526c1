// Package database provides the relational database component backed by GORM.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	mysqldriver "gorm.io/driver/mysql"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	options "github.com/camos-io/camos-assist/pkg/options/database"
)

// Client wraps gorm.DB for the selected engine.
//
// Example usage:
//
//	opts := options.NewOptions()
//	client, err := New(opts)
//	if err != nil {
//	    log.Fatalf("failed to open database: %v", err)
//	}
//	defer client.Close()
//
//	db := client.DB()
//	db.AutoMigrate(&User{})
type Client struct {
	db   *gorm.DB
	opts *options.Options
}

// New creates a new database client from the provided options.
func New(opts *options.Options) (*Client, error) {
	return NewWithContext(context.Background(), opts)
}

// NewWithContext creates a new database client with context support.
// The context bounds the initial ping verification.
func NewWithContext(ctx context.Context, opts *options.Options) (*Client, error) {
	if opts == nil {
		return nil, fmt.Errorf("database options cannot be nil")
	}
	if errs := opts.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid database options: %v", errs)
	}

	var dialector gorm.Dialector
	switch opts.Engine {
	case options.EngineSQLite:
		dialector = sqlite.Open(opts.DSN)
	case options.EngineMySQL:
		dialector = mysqldriver.Open(opts.DSN)
	case options.EnginePostgres:
		dialector = postgresdriver.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database engine: %s", opts.Engine)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", opts.Engine, err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}

	// Verify connection
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{
		db:   db,
		opts: opts,
	}, nil
}

// Name returns the component type identifier.
func (c *Client) Name() string {
	return c.opts.Engine
}

// DB returns the underlying GORM database.
func (c *Client) DB() *gorm.DB {
	return c.db
}

// Ping checks if the database connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health returns a health check function for database monitoring.
func (c *Client) Health() func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return c.Ping(ctx)
	}
}
