package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/ruslano69/dataaccess/pkg/execlog"
)

// LogConfig - настройки журнала выполнения команд
type LogConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Level         string        `yaml:"level,omitempty"` // minimal | standard | full
	Async         bool          `yaml:"async,omitempty"`
	BufferSize    int           `yaml:"buffer_size,omitempty"`
	FlushInterval time.Duration `yaml:"flush_interval,omitempty"`

	Console  ConsoleLogConfig  `yaml:"console,omitempty"`
	File     FileLogConfig     `yaml:"file,omitempty"`
	Database DatabaseLogConfig `yaml:"database,omitempty"`
	Redis    RedisLogConfig    `yaml:"redis,omitempty"`
	Stderr   StderrLogConfig   `yaml:"stderr,omitempty"`
	Metrics  bool              `yaml:"metrics,omitempty"` // Prometheus counters/histogram
}

// StderrLogConfig - structured zerolog events on stderr
type StderrLogConfig struct {
	Enabled bool `yaml:"enabled"`
	Pretty  bool `yaml:"pretty,omitempty"` // zerolog.ConsoleWriter instead of JSON
}

// ConsoleLogConfig - вывод в stdout
type ConsoleLogConfig struct {
	Enabled bool `yaml:"enabled"`
	JSON    bool `yaml:"json,omitempty"`
}

// FileLogConfig - файл с ротацией
type FileLogConfig struct {
	Path       string `yaml:"path,omitempty"`
	MaxSizeMB  int64  `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
	Compress   bool   `yaml:"compress,omitempty"`
	JSON       bool   `yaml:"json,omitempty"`
}

// DatabaseLogConfig - таблица журнала в отдельной БД
type DatabaseLogConfig struct {
	Driver    string `yaml:"driver,omitempty"` // database/sql driver name, e.g. sqlite, pgx
	DSN       string `yaml:"dsn,omitempty"`
	Table     string `yaml:"table,omitempty"`
	BatchSize int    `yaml:"batch_size,omitempty"`
}

// RedisLogConfig - публикация в Redis
type RedisLogConfig struct {
	Address  string        `yaml:"address,omitempty"`
	Password string        `yaml:"password,omitempty"`
	DB       int           `yaml:"db,omitempty"`
	Prefix   string        `yaml:"prefix,omitempty"`
	TTL      time.Duration `yaml:"ttl,omitempty"`
}

// Build assembles the configured appenders into a logger. A disabled section
// yields execlog.NullLogger. reg is used when Metrics is set; nil means
// prometheus.DefaultRegisterer.
func (c LogConfig) Build(reg prometheus.Registerer) (execlog.Logger, error) {
	if !c.Enabled {
		return execlog.NewNullLogger(), nil
	}

	level, err := execlog.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	var appenders []execlog.Appender
	fail := func(err error) (execlog.Logger, error) {
		for _, a := range appenders {
			a.Close()
		}
		return nil, err
	}

	if c.Console.Enabled {
		appenders = append(appenders, execlog.NewConsoleAppender(level, c.Console.JSON))
	}

	if c.File.Path != "" {
		fa, err := execlog.NewFileAppender(execlog.FileAppenderConfig{
			FilePath:   c.File.Path,
			MaxSize:    c.File.MaxSizeMB,
			MaxBackups: c.File.MaxBackups,
			Compress:   c.File.Compress,
			Level:      level,
			FormatJSON: c.File.JSON,
		})
		if err != nil {
			return fail(err)
		}
		appenders = append(appenders, fa)
	}

	if c.Database.DSN != "" {
		if c.Database.Driver == "" {
			return fail(errors.New("log.database.driver is required"))
		}
		db, err := sqlx.Open(c.Database.Driver, c.Database.DSN)
		if err != nil {
			return fail(fmt.Errorf("failed to open log database: %w", err))
		}
		da, err := execlog.NewDatabaseAppender(execlog.DatabaseAppenderConfig{
			DB:              db,
			TableName:       c.Database.Table,
			Level:           level,
			BatchSize:       c.Database.BatchSize,
			AutoCreateTable: true,
			CloseDB:         true,
		})
		if err != nil {
			db.Close()
			return fail(err)
		}
		appenders = append(appenders, da)
	}

	if c.Redis.Address != "" {
		appenders = append(appenders, execlog.NewRedisAppender(execlog.RedisAppenderConfig{
			Address:  c.Redis.Address,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Prefix:   c.Redis.Prefix,
			TTL:      c.Redis.TTL,
			Level:    level,
		}))
	}

	if c.Metrics {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		ma, err := execlog.NewMetricsAppender(reg)
		if err != nil {
			return fail(err)
		}
		appenders = append(appenders, ma)
	}

	if c.Stderr.Enabled {
		appenders = append(appenders, execlog.NewZerologAppender(stderrLogger(c.Stderr.Pretty), level))
	}

	return execlog.NewLogger(execlog.LoggerConfig{
		AsyncMode:     c.Async,
		BufferSize:    c.BufferSize,
		FlushInterval: c.FlushInterval,
		OnError: func(err error) {
			fmt.Fprintf(os.Stderr, "exec log: %v\n", err)
		},
	}, appenders...), nil
}

func stderrLogger(pretty bool) zerolog.Logger {
	if pretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
