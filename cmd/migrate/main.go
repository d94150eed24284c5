// Command migrate applies or rolls back the embedded schema migrations.
//
//	migrate up            apply every pending migration
//	migrate down [steps]  roll back steps migrations (default 1)
//	migrate version       print the current version
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"go.uber.org/zap"

	"github.com/helpline-io/support-portal/internal/config"
	"github.com/helpline-io/support-portal/internal/observability"
	"github.com/helpline-io/support-portal/internal/persistence"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: migrate up | down [steps] | version")
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	m, err := persistence.NewMigrator(cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal("init migrator", zap.Error(err))
	}
	defer m.Close()

	if err := run(m, flag.Args(), logger); err != nil {
		logger.Fatal("migrate", zap.String("command", flag.Arg(0)), zap.Error(err))
	}
}

func run(m *migrate.Migrate, args []string, logger *zap.Logger) error {
	switch args[0] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid step count %q", args[1])
			}
			steps = n
		}
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
	case "version":
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		logger.Info("no migrations applied")
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
