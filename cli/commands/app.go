package commands

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/satishbabariya/migrate-go/cli/internal/config"
	"github.com/satishbabariya/migrate-go/cli/internal/sqllog"
	"github.com/satishbabariya/migrate-go/cli/internal/target"
	"github.com/satishbabariya/migrate-go/cli/internal/ui"
	"github.com/satishbabariya/migrate-go/cli/internal/version"
	"github.com/satishbabariya/migrate-go/internal/debug"
	"github.com/satishbabariya/migrate-go/migrate"
	"github.com/satishbabariya/migrate-go/migrate/history"
)

// openDB opens the configured database. Tests replace it.
var openDB = sqllog.Open

// app is the state shared by all commands of one invocation
type app struct {
	registry   *migrate.Registry
	loader     *config.Loader
	configFile string
	output     string
	debug      bool
}

// session is an open database with an engine bound to it
type session struct {
	cfg    *config.Config
	db     *sql.DB
	engine *migrate.Engine
}

func (s *session) Close() error {
	return s.db.Close()
}

func (a *app) config() (*config.Config, error) {
	return a.loader.Load(a.configFile)
}

// open connects to the configured database and builds an engine. Options
// passed in are applied after the configured ones.
func (a *app) open(ctx context.Context, cfg *config.Config, opts ...migrate.Option) (*session, error) {
	dialect, err := cfg.Dialect()
	if err != nil {
		return nil, err
	}
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	var sqlLogger *slog.Logger
	if cfg.LogSQL {
		sqlLogger = debug.Logger()
	}
	db, err := openDB(cfg.DriverName(), dsn, sqlLogger)
	if err != nil {
		return nil, err
	}
	checkServer(ctx, db, cfg.Provider)

	base := []migrate.Option{
		migrate.WithHistory(history.NewSQLRepository(dialect, history.WithTable(cfg.HistoryTable))),
		migrate.WithTimeout(cfg.Timeout),
		migrate.WithLogger(debug.Logger()),
	}
	if cfg.WhatIf {
		base = append(base, migrate.WithWhatIf(ui.Out()))
	}

	return &session{
		cfg:    cfg,
		db:     db,
		engine: migrate.NewEngine(db, dialect, a.registry, append(base, opts...)...),
	}, nil
}

// checkServer warns when the server is older than the dialect expects.
// Failing to read the version is not an error.
func checkServer(ctx context.Context, db *sql.DB, provider string) {
	raw, err := serverVersion(ctx, db, provider)
	if err != nil {
		debug.Debug("Could not read server version", "provider", provider, "error", err)
		return
	}
	debug.Debug("Connected", "provider", provider, "server", raw)
	if err := version.CheckServer(provider, raw); err != nil {
		ui.PrintWarning("%v", err)
	}
}

func serverVersion(ctx context.Context, db *sql.DB, provider string) (string, error) {
	query := version.ServerQuery(provider)
	if query == "" {
		return "", fmt.Errorf("unknown provider %q", provider)
	}
	var raw string
	if err := db.QueryRowContext(ctx, query).Scan(&raw); err != nil {
		return "", err
	}
	return raw, nil
}

// resolveTarget turns the optional target argument into a version
func (a *app) resolveTarget(args []string) (int64, error) {
	s := ""
	if len(args) > 0 {
		s = args[0]
	}
	v, err := target.Resolve(s, a.registry)
	if err != nil {
		return 0, fmt.Errorf("invalid target %q: %w", s, err)
	}
	return v, nil
}

func (a *app) name(v int64) string {
	if m, ok := a.registry.Get(v); ok {
		return m.Name
	}
	return ""
}
