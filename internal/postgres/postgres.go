package postgres

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/launchpad/pkg/logger"
	"github.com/gaze-network/launchpad/pkg/logger/slogx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	pgxslog "github.com/mcosta74/pgx-slog"
)

const (
	DefaultMaxConns = 16
	DefaultMinConns = 0
	DefaultLogLevel = tracelog.LogLevelError
)

type Config struct {
	Host     string `mapstructure:"host" env:"HOST"`         // Default is 127.0.0.1
	Port     string `mapstructure:"port" env:"PORT"`         // Default is 5432
	User     string `mapstructure:"user" env:"USER"`         // Default is empty
	Password string `mapstructure:"password" env:"PASSWORD"` // Default is empty
	DBName   string `mapstructure:"db_name" env:"DBNAME"`    // Default is postgres
	SSLMode  string `mapstructure:"ssl_mode" env:"SSLMODE"`  // Default is prefer
	URL      string `mapstructure:"url" env:"URL"`           // If URL is provided, other fields are ignored

	MaxConns int32 `mapstructure:"max_conns" env:"MAX_CONNS"` // Default is 16
	MinConns int32 `mapstructure:"min_conns" env:"MIN_CONNS"` // Default is 0

	Debug bool `mapstructure:"debug" env:"DEBUG"`
}

// Validate reports configurations that can never connect.
func (conf Config) Validate() error {
	if conf.MinConns < 0 || conf.MaxConns < 0 {
		return errors.Wrap(errs.InvalidArgument, "connection limits must not be negative")
	}
	if conf.MaxConns > 0 && conf.MinConns > conf.MaxConns {
		return errors.Wrapf(errs.InvalidArgument, "min_conns (%d) is greater than max_conns (%d)", conf.MinConns, conf.MaxConns)
	}
	if conf.URL == "" && conf.Password != "" && conf.User == "" {
		return errors.Wrap(errs.InvalidArgument, "password is set without user")
	}
	return nil
}

// NewPool creates a new connection pool to the database
func NewPool(ctx context.Context, conf Config) (*pgxpool.Pool, error) {
	if err := conf.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}

	connConfig, err := pgxpool.ParseConfig(conf.String())
	if err != nil {
		return nil, errors.Wrap(errs.InvalidArgument, err.Error())
	}
	connConfig.MaxConns = utils.Default(conf.MaxConns, DefaultMaxConns)
	connConfig.MinConns = utils.Default(conf.MinConns, DefaultMinConns)
	connConfig.ConnConfig.Tracer = conf.QueryTracer()

	connPool, err := pgxpool.NewWithConfig(ctx, connConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create a new connection pool")
	}

	start := time.Now()
	logger.InfoContext(ctx, "Connecting to Postgres...", slogx.String("database", conf.Redacted()))
	if err := connPool.Ping(ctx); err != nil {
		connPool.Close()
		return nil, errors.Wrapf(err, "can't connect to Postgres %q", conf.Redacted())
	}
	logger.InfoContext(ctx, "Connected to Postgres", slogx.Duration("latency", time.Since(start)))

	return connPool, nil
}

// Redacted returns the connection target without credentials.
func (conf Config) Redacted() string {
	if conf.URL != "" {
		u, err := url.Parse(conf.URL)
		if err != nil {
			return "invalid url"
		}
		return u.Redacted()
	}
	conf.User, conf.Password = "", ""
	return conf.String()
}

// String returns the connection string (DSN format or URL format)
func (conf Config) String() string {
	if conf.Host == "" {
		conf.Host = "127.0.0.1"
	}
	if conf.Port == "" {
		conf.Port = "5432"
	}
	if conf.SSLMode == "" {
		conf.SSLMode = "prefer"
	}
	if conf.DBName == "" {
		conf.DBName = "postgres"
	}

	// Construct DSN
	connString := fmt.Sprintf("host=%s dbname=%s port=%s sslmode=%s", conf.Host, conf.DBName, conf.Port, conf.SSLMode)
	if conf.User != "" {
		connString = fmt.Sprintf("%s user=%s", connString, conf.User)
	}
	if conf.Password != "" {
		connString = fmt.Sprintf("%s password=%s", connString, conf.Password)
	}

	// Prefer URL over DSN format
	if conf.URL != "" {
		connString = conf.URL
	}

	return connString
}

func (conf Config) QueryTracer() pgx.QueryTracer {
	loglevel := DefaultLogLevel
	if conf.Debug {
		loglevel = tracelog.LogLevelTrace
	}
	return &tracelog.TraceLog{
		Logger:   pgxslog.NewLogger(logger.With("package", "postgres")),
		LogLevel: loglevel,
	}
}
