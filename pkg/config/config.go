package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ruslano69/dataaccess/pkg/adapters"
	"github.com/ruslano69/dataaccess/pkg/execlog"
)

// Config represents the main configuration structure
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log,omitempty"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Type        string `yaml:"type"`                   // oracle, mssql, mysql, postgres, sqlite
	Driver      string `yaml:"driver,omitempty"`       // postgres: pgx|pq, sqlite: sqlite|sqlite3
	DSN         string `yaml:"dsn,omitempty"`          // Готовая строка подключения, перекрывает поля ниже
	Host        string `yaml:"host,omitempty"`         // For network databases
	Port        int    `yaml:"port,omitempty"`         // Database port
	Database    string `yaml:"database,omitempty"`     // Database name, Oracle service name or file path
	User        string `yaml:"user,omitempty"`         // Username
	Password    string `yaml:"password,omitempty"`     // Password
	Schema      string `yaml:"schema,omitempty"`       // PostgreSQL schema (default: public)
	WindowsAuth bool   `yaml:"windows_auth,omitempty"` // MS SQL Windows authentication
	SSLMode     string `yaml:"sslmode,omitempty"`      // PostgreSQL SSL mode
	ODBCDriver  string `yaml:"odbc_driver,omitempty"`  // Oracle ODBC driver name
}

// Load loads configuration from YAML file
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Save saves configuration to YAML file
func Save(filename string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the fields needed to connect.
func (c *Config) Validate() error {
	db := c.Database
	if db.Type == "" {
		return fmt.Errorf("database.type is required")
	}
	if _, err := normalizeType(db.Type); err != nil {
		return err
	}
	if db.DSN == "" && db.Database == "" {
		return fmt.Errorf("database.dsn or database.database is required")
	}
	if _, err := execlog.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Sample creates sample configuration for different database types
func Sample(dbType string) *Config {
	config := &Config{
		Database: DatabaseConfig{
			Type: dbType,
		},
		Log: LogConfig{
			Enabled: true,
			Level:   "standard",
			File: FileLogConfig{
				Path:       "exec.log",
				MaxSizeMB:  100,
				MaxBackups: 5,
				Compress:   true,
			},
		},
	}

	switch dbType {
	case "oracle":
		config.Database.Host = "localhost"
		config.Database.Port = 1521
		config.Database.Database = "ORCL"
		config.Database.User = "scott"
		config.Database.Password = "tiger"
		config.Database.ODBCDriver = "Oracle in OraClient19Home1"

	case "postgres", "postgresql":
		config.Database.Host = "localhost"
		config.Database.Port = 5432
		config.Database.Database = "mydb"
		config.Database.User = "postgres"
		config.Database.Password = "password"
		config.Database.Schema = "public"
		config.Database.SSLMode = "disable"

	case "mssql", "sqlserver":
		config.Database.Host = "localhost"
		config.Database.Port = 1433
		config.Database.Database = "mydb"
		config.Database.User = "sa"
		config.Database.Password = "YourPassword123"
		config.Database.WindowsAuth = false

	case "sqlite":
		config.Database.Database = "database.db"

	case "mysql":
		config.Database.Host = "localhost"
		config.Database.Port = 3306
		config.Database.Database = "mydb"
		config.Database.User = "root"
		config.Database.Password = "password"
	}

	return config
}

func normalizeType(dbType string) (adapters.DatabaseType, error) {
	switch strings.ToLower(dbType) {
	case "oracle":
		return adapters.TypeOracle, nil
	case "mssql", "sqlserver":
		return adapters.TypeMSSQL, nil
	case "mysql":
		return adapters.TypeMySQL, nil
	case "postgres", "postgresql":
		return adapters.TypePostgres, nil
	case "sqlite":
		return adapters.TypeSQLite, nil
	default:
		return "", fmt.Errorf("%w: %s", adapters.ErrUnknownDatabaseType, dbType)
	}
}

// AdapterConfig converts the database section into adapters.Config.
func (c *DatabaseConfig) AdapterConfig() (adapters.Config, error) {
	dbType, err := normalizeType(c.Type)
	if err != nil {
		return adapters.Config{}, err
	}
	return adapters.Config{
		Type:   dbType,
		DSN:    c.BuildDSN(),
		Driver: c.Driver,
	}, nil
}

// BuildDSN constructs database connection string from config
func (c *DatabaseConfig) BuildDSN() string {
	if c.DSN != "" {
		return c.DSN
	}

	switch strings.ToLower(c.Type) {
	case "oracle":
		driver := c.ODBCDriver
		if driver == "" {
			driver = "Oracle"
		}
		dbq := c.Database
		if c.Host != "" {
			port := c.Port
			if port == 0 {
				port = 1521
			}
			dbq = fmt.Sprintf("%s:%d/%s", c.Host, port, c.Database)
		}
		return fmt.Sprintf("DRIVER={%s};DBQ=%s;UID=%s;PWD=%s", driver, dbq, c.User, c.Password)

	case "postgres", "postgresql":
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		schema := c.Schema
		if schema == "" {
			schema = "public"
		}
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(c.User, c.Password),
			Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
			Path:   "/" + c.Database,
		}
		q := url.Values{}
		q.Set("sslmode", sslMode)
		q.Set("search_path", schema)
		u.RawQuery = q.Encode()
		return u.String()

	case "mssql", "sqlserver":
		q := url.Values{}
		q.Set("database", c.Database)
		u := url.URL{
			Scheme: "sqlserver",
			Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		}
		if c.WindowsAuth {
			q.Set("integrated security", "SSPI")
		} else {
			u.User = url.UserPassword(c.User, c.Password)
		}
		u.RawQuery = q.Encode()
		return u.String()

	case "sqlite":
		return c.Database

	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true",
			c.User, c.Password, c.Host, c.Port, c.Database)

	default:
		return ""
	}
}
