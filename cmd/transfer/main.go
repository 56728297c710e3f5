package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	transferapp "github.com/storefront/backend/internal/application/transfer"
	"github.com/storefront/backend/internal/bootstrap"
	"github.com/storefront/backend/internal/domain/transfer"
	"github.com/storefront/backend/internal/infrastructure/archive"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const requestedBy = "cli"

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string, stdout io.Writer) error {
	switch command {
	case "export":
		return runExport(ctx, args, stdout)
	case "import":
		return runImport(ctx, args, stdout)
	case "token":
		return runToken(args, stdout)
	case "types":
		return printTypes(stdout)
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		printUsage(os.Stderr)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runExport(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	types := fs.String("types", "", "Comma separated collections, e.g. settings,users (default: all)")
	format := fs.String("format", "json", "Archive format: json or csv")
	out := fs.String("out", "", "Output file (default: export-<timestamp>.<ext> in the current directory)")
	logLevel := fs.String("log-level", "warn", "Log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	names := splitTypes(*types)
	if len(names) == 0 {
		for _, t := range transfer.AllTypes() {
			names = append(names, t.String())
		}
	}

	return withRuntime(ctx, *logLevel, func(rt *bootstrap.Runtime) error {
		result, err := rt.ExportService().Export(ctx, transferapp.ExportInput{
			Types:       names,
			Format:      *format,
			RequestedBy: requestedBy,
		})
		if err != nil {
			return err
		}

		path := *out
		if path == "" {
			path = result.FileName
		}
		if err := os.WriteFile(path, result.Data, 0o644); err != nil {
			return fmt.Errorf("write archive: %w", err)
		}
		fmt.Fprintf(stdout, "wrote %s (%d bytes)\n", path, len(result.Data))
		return nil
	})
}

func runImport(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	file := fs.String("file", "", "Archive to import (.json, .tar.gz)")
	clear := fs.Bool("clear", false, "Delete existing data of the imported collections first")
	noImport := fs.Bool("no-import", false, "Only clear, import nothing")
	logLevel := fs.String("log-level", "warn", "Log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("-file is required")
	}

	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()

	return withRuntime(ctx, *logLevel, func(rt *bootstrap.Runtime) error {
		report, err := rt.ImportService().Import(ctx, transferapp.ImportInput{
			FileName:    filepath.Base(*file),
			MimeType:    archive.MIMEFromFileName(*file),
			Body:        f,
			Clear:       *clear,
			NoImport:    *noImport,
			RequestedBy: requestedBy,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
		if len(report.Errors) > 0 {
			return fmt.Errorf("%d collection(s) failed", len(report.Errors))
		}
		return nil
	})
}

// runToken mints a bearer token for calling the HTTP API
func runToken(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	email := fs.String("email", "admin@localhost", "Email claim")
	userID := fs.Uint("user-id", 1, "User id claim")
	role := fs.String("role", "admin", "Role claim")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	token, expires, err := auth.NewJWTService(cfg.JWT).GenerateToken(*userID, *email, *role)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expires.UTC().Format(time.RFC3339))
	return nil
}

func printTypes(stdout io.Writer) error {
	for _, d := range transfer.DependencyOrder() {
		deps := make([]string, 0, len(d.DependsOn))
		for _, dep := range d.DependsOn {
			deps = append(deps, dep.String())
		}
		if len(deps) == 0 {
			fmt.Fprintln(stdout, d.Type)
			continue
		}
		fmt.Fprintf(stdout, "%s (needs %s)\n", d.Type, strings.Join(deps, ", "))
	}
	return nil
}

func withRuntime(ctx context.Context, logLevel string, fn func(rt *bootstrap.Runtime) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(&logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stderr",
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	rt, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Shutdown(context.Background()); err != nil {
			rt.Logger.Warn("Shutdown failed", zap.Error(err))
		}
	}()

	return fn(rt)
}

func splitTypes(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `Storefront bulk transfer tool

Usage:
  transfer <command> [flags]

Commands:
  export   Write collections to a JSON or tar.gz archive
           -types settings,users  -format json|csv  -out file
  import   Load an archive into the configured database
           -file archive.tar.gz  [-clear]  [-no-import]
  types    List collections in dependency order
  token    Print a bearer token for the HTTP API
           -email admin@localhost  -user-id 1  -role admin

Configuration is read from config.toml and STOREFRONT_* environment variables.`)
}
