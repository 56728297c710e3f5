// Command migrate applies the storefront SQL schema migrations.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/migration"
	"github.com/storefront/backend/migrations"
	"go.uber.org/zap"
)

var errUsage = errors.New("usage")

// schemaMigrator is the part of migration.Migrator the commands drive
type schemaMigrator interface {
	Up() error
	Down() error
	Steps(n int) error
	GoTo(version uint) error
	Version() (uint, bool, error)
	Force(version int) error
	Close() error
}

type options struct {
	path     string
	logLevel string
}

func main() {
	var opts options
	flag.StringVar(&opts.path, "path", "", "Read migrations from this directory instead of the embedded set")
	flag.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = func() { printUsage(os.Stderr) }
	flag.Parse()

	if flag.NArg() == 0 {
		printUsage(os.Stderr)
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{
		Level:      opts.logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	if err := run(opts, flag.Args(), os.Stdout, log); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			printUsage(os.Stderr)
			os.Exit(2)
		}
		log.Error("Migration command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		os.Exit(1)
	}
}

func run(opts options, args []string, out io.Writer, log *zap.Logger) error {
	command, rest := args[0], args[1:]
	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("source", sourceName(opts.path)),
	)

	switch command {
	case "create":
		return create(opts.path, rest, log)
	case "list":
		return list(opts.path, out)
	case "up", "down", "step", "goto", "version", "force":
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	var m *migration.Migrator
	if opts.path == "" {
		m, err = migration.New(db, log)
	} else {
		m, err = migration.NewFromPath(db, opts.path, log)
	}
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	return apply(m, command, rest, out, log)
}

func openDatabase() (*sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Database.Driver != "postgres" {
		return nil, fmt.Errorf("versioned migrations target postgres, got driver %q; sqlite schemas are created on startup", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// apply runs one schema command against m
func apply(m schemaMigrator, command string, args []string, out io.Writer, log *zap.Logger) error {
	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "step":
		n, err := intArg(args, "step count")
		if err != nil {
			return err
		}
		return m.Steps(n)
	case "goto":
		n, err := intArg(args, "version")
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("%w: version must not be negative", errUsage)
		}
		return m.GoTo(uint(n))
	case "force":
		n, err := intArg(args, "version")
		if err != nil {
			return err
		}
		log.Warn("Forcing migration version; the schema is not checked", zap.Int("version", n))
		return m.Force(n)
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if version == 0 {
			fmt.Fprintln(out, "no migrations applied")
			return nil
		}
		state := "clean"
		if dirty {
			state = "dirty"
		}
		fmt.Fprintf(out, "%06d (%s)\n", version, state)
		return nil
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, command)
}

func intArg(args []string, name string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: %s required", errUsage, name)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", errUsage, name, args[0])
	}
	return n, nil
}

func create(dir string, args []string, log *zap.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: migration name required", errUsage)
	}
	if dir == "" {
		dir = "migrations"
	}
	description := ""
	if len(args) > 1 {
		description = args[1]
	}
	mf, err := migration.CreateMigration(dir, args[0], description)
	if err != nil {
		return err
	}
	log.Info("Migration created",
		zap.Uint("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func list(dir string, out io.Writer) error {
	if dir == "" {
		versions, err := migration.Sources(migrations.FS, ".")
		if err != nil {
			return fmt.Errorf("list embedded migrations: %w", err)
		}
		for _, v := range versions {
			fmt.Fprintf(out, "%06d\n", v)
		}
		return nil
	}

	entries, err := migration.ListMigrations(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%06d %s\n", e.Version, e.Name)
	}
	return nil
}

func sourceName(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Storefront database migrations

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    apply all pending migrations
  down                  roll back all migrations
  step <n>              apply n migrations, negative rolls back
  goto <version>        migrate to a version
  version               print the current version
  force <version>       set the version without migrating
  create <name> [desc]  write a new up/down pair
  list                  list available migrations

Flags:
  -path string          migrations directory (default: the embedded set; create writes to ./migrations)
  -log-level string     debug, info, warn, error (default: info)

The database is read from config.toml and STOREFRONT_DATABASE_* variables.
`)
}
