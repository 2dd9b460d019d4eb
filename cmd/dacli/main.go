package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/ruslano69/dataaccess/pkg/adapters"
	_ "github.com/ruslano69/dataaccess/pkg/adapters/mssql"
	_ "github.com/ruslano69/dataaccess/pkg/adapters/mysql"
	_ "github.com/ruslano69/dataaccess/pkg/adapters/oracle"
	_ "github.com/ruslano69/dataaccess/pkg/adapters/postgres"
	_ "github.com/ruslano69/dataaccess/pkg/adapters/sqlite"
	"github.com/ruslano69/dataaccess/pkg/config"
	"github.com/ruslano69/dataaccess/pkg/execlog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Parse flags
	flags, err := ParseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fatal("%v", err)
	}

	// Handle version
	if *flags.Version {
		PrintVersion()
		return
	}

	// Handle help
	if *flags.Help {
		PrintHelp()
		return
	}

	// Handle config creation
	if *flags.CreateConfig != "" {
		createConfigTemplate(*flags.CreateConfig)
		return
	}

	if *flags.Mode == "" {
		PrintHelp()
		os.Exit(1)
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}

	adapterConfig, err := cfg.Database.AdapterConfig()
	if err != nil {
		fatal("Invalid database config: %v", err)
	}

	logger, err := cfg.Log.Build(nil)
	if err != nil {
		fatal("Failed to set up execution log: %v", err)
	}

	params, err := parseParams(*flags.Params)
	if err != nil {
		closeLogger(logger)
		fatal("%v", err)
	}

	runErr := run(ctx, adapterConfig, logger, flags, params)
	closeLogger(logger)
	if runErr != nil {
		fatal("Command failed: %v", runErr)
	}
}

// loadConfig reads the config file and applies command-line overrides.
// With --type and --dsn given the file is optional.
func loadConfig(flags *Flags) (*config.Config, error) {
	var cfg *config.Config
	if *flags.DBType != "" && *flags.DSN != "" {
		cfg = &config.Config{}
		if loaded, err := config.Load(*flags.Config); err == nil {
			cfg.Log = loaded.Log
		}
	} else {
		loaded, err := config.Load(*flags.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if *flags.DBType != "" {
		cfg.Database.Type = *flags.DBType
	}
	if *flags.DSN != "" {
		cfg.Database.DSN = *flags.DSN
	}
	if *flags.Driver != "" {
		cfg.Database.Driver = *flags.Driver
	}
	if *flags.LogLevel != "" {
		cfg.Log.Enabled = true
		cfg.Log.Level = *flags.LogLevel
		if cfg.Log.File.Path == "" && cfg.Log.Database.DSN == "" && cfg.Log.Redis.Address == "" {
			cfg.Log.Console.Enabled = true
		}
	}

	return cfg, cfg.Validate()
}

// createConfigTemplate creates a sample configuration file
func createConfigTemplate(dbType string) {
	cfg := config.Sample(dbType)
	if err := cfg.Validate(); err != nil {
		fatal("Unsupported database type: %v", err)
	}

	if err := config.Save("config.yaml", cfg); err != nil {
		fatal("Failed to save config: %v", err)
	}

	fmt.Printf("✓ Created sample %s config: config.yaml\n", dbType)
	fmt.Println("Edit the file with your database credentials and run:")
	fmt.Printf("  dacli --mode scalar --sql \"SELECT 1\" --config config.yaml\n")
}

func closeLogger(logger execlog.Logger) {
	if err := logger.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close execution log: %v\n", err)
	}
}

// fatal prints error and exits
func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// run opens the adapter, executes the selected mode and releases everything.
func run(ctx context.Context, cfg adapters.Config, logger execlog.Logger, flags *Flags, params adapters.Parameters) (err error) {
	db, err := adapters.New(cfg, adapters.WithLogger(logger))
	if err != nil {
		return err
	}
	defer db.Dispose()

	if err := db.Open(ctx); err != nil {
		return err
	}

	if *flags.Tx {
		if err := db.BeginTransaction(ctx, nil); err != nil {
			return err
		}
		defer func() {
			if db.Transaction() == nil {
				return
			}
			if err != nil {
				db.Rollback()
				return
			}
			err = db.Commit()
		}()
	}

	out := newPrinter(os.Stdout, cfg.Type, *flags.MaxRows, *flags.ShowTypes)
	return execute(ctx, db, out, flags, params)
}
