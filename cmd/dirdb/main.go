// dirdb is a one-shot front door to a dirdb data directory. Every verb is
// a thin wrapper over the engine's operation registry.
//
//	dirdb tables
//	dirdb import <table> <file>
//	dirdb export <table> <file>
//	dirdb get <table> <id>
//	dirdb del <table> <id>
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/dirdb/dirdb/engine"
	"github.com/dirdb/dirdb/internal/config"
	"github.com/dirdb/dirdb/jsonval"
)

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "dirdb: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	dataDir := flag.String("data-dir", "", "Data directory (overrides config)")
	user := flag.String("user", "", "User scope (overrides config)")
	database := flag.String("database", "", "Database scope (overrides config)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *user != "" {
		cfg.User = *user
	}
	if *database != "" {
		cfg.Database = *database
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	slog.SetDefault(initLogger(cfg.LogLevel))

	e, err := engine.New(engine.Options{
		BaseDir:  cfg.DataDir,
		User:     cfg.User,
		Database: cfg.Database,
	})
	if err != nil {
		return err
	}

	args := flag.Args()
	if len(args) == 0 {
		return fmt.Errorf("missing verb; one of: tables, import, export, get, del")
	}
	verb, rest := args[0], args[1:]
	switch verb {
	case "tables":
		return run(e, "list_tables", nil, cfg.Indent)
	case "import":
		if len(rest) != 2 {
			return fmt.Errorf("usage: dirdb import <table> <file>")
		}
		return run(e, "import_json", fileOpArgs(rest[0], rest[1]), cfg.Indent)
	case "export":
		if len(rest) != 2 {
			return fmt.Errorf("usage: dirdb export <table> <file>")
		}
		a := fileOpArgs(rest[0], rest[1])
		a.Set("indent", jsonval.Int(int64(cfg.Indent)))
		return run(e, "export_json", a, cfg.Indent)
	case "get":
		if len(rest) != 2 {
			return fmt.Errorf("usage: dirdb get <table> <id>")
		}
		return run(e, "find_by_id", recordOpArgs(rest[0], rest[1]), cfg.Indent)
	case "del":
		if len(rest) != 2 {
			return fmt.Errorf("usage: dirdb del <table> <id>")
		}
		return run(e, "delete", recordOpArgs(rest[0], rest[1]), cfg.Indent)
	default:
		return fmt.Errorf("unknown verb %q", verb)
	}
}

// run invokes a registry operation and prints its result to stdout.
func run(e *engine.Engine, name string, args *jsonval.Value, indent int) error {
	op, ok := engine.FindOperation(name)
	if !ok {
		return fmt.Errorf("unknown operation %q", name)
	}
	if args == nil {
		args = jsonval.Object()
	}
	out, err := op.Invoke(e, args)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", jsonval.Write(out, indent))
	return nil
}

func fileOpArgs(table, path string) *jsonval.Value {
	a := jsonval.Object()
	a.Set("table", jsonval.String(table))
	a.Set("path", jsonval.String(path))
	return a
}

func recordOpArgs(table, id string) *jsonval.Value {
	a := jsonval.Object()
	a.Set("table", jsonval.String(table))
	a.Set("id", jsonval.String(id))
	return a
}

func initLogger(level string) *slog.Logger {
	ll := slog.LevelInfo
	switch level {
	case "debug":
		ll = slog.LevelDebug
	case "warn":
		ll = slog.LevelWarn
	case "error":
		ll = slog.LevelError
	}
	return slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
}
