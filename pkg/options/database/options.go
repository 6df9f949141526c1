// Package database provides relational database configuration options.
package database

import (
	"fmt"

	"github.com/camos-io/camos-assist/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Supported database engines.
const (
	EngineSQLite   = "sqlite"
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
)

// Options contains relational database configuration.
type Options struct {
	// Engine selects the driver: sqlite, mysql or postgres.
	Engine string `json:"engine" mapstructure:"engine"`

	// DSN is the data source name. For sqlite this is the database file path.
	DSN string `json:"dsn" mapstructure:"dsn"`

	// MaxOpenConns is the maximum number of open connections.
	MaxOpenConns int `json:"max-open-conns" mapstructure:"max-open-conns"`

	// MaxIdleConns is the maximum number of idle connections.
	MaxIdleConns int `json:"max-idle-conns" mapstructure:"max-idle-conns"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Engine:       EngineSQLite,
		DSN:          "_output/assist.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
	}
}

// AddFlags adds flags for database options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Engine, options.Join(prefixes...)+"db.engine", o.Engine, "Database engine (sqlite, mysql, postgres).")
	fs.StringVar(&o.DSN, options.Join(prefixes...)+"db.dsn", o.DSN, "Database DSN (file path for sqlite).")
	fs.IntVar(&o.MaxOpenConns, options.Join(prefixes...)+"db.max-open-conns", o.MaxOpenConns, "Maximum number of open connections.")
	fs.IntVar(&o.MaxIdleConns, options.Join(prefixes...)+"db.max-idle-conns", o.MaxIdleConns, "Maximum number of idle connections.")
}

// Validate validates the database options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	switch o.Engine {
	case EngineSQLite, EngineMySQL, EnginePostgres:
	default:
		errs = append(errs, fmt.Errorf("unsupported database engine: %s", o.Engine))
	}
	if o.DSN == "" {
		errs = append(errs, fmt.Errorf("db dsn is required"))
	}
	return errs
}

// Complete completes the database options with defaults.
func (o *Options) Complete() error {
	if o.Engine == "" {
		o.Engine = EngineSQLite
	}
	return nil
}
