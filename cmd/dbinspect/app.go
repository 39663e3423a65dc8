package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jadedragon942/dbinspect/adapter"
	"github.com/jadedragon942/dbinspect/config"
	"github.com/jadedragon942/dbinspect/conn"
	"github.com/jadedragon942/dbinspect/inspector"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// flags holds the connection flags shared by every subcommand.
type flags struct {
	configPath string
	backend    string
	driver     string
	dsn        string
	schema     string
	exclude    []string
	verbose    bool
}

type app struct {
	flags flags
	cfg   *config.Config
	log   zerolog.Logger
	ins   *inspector.Inspector
	close func() error
}

// load resolves the configuration file and applies flag overrides.
func (a *app) load(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.flags.configPath != "" {
		loaded, err := config.Load(a.flags.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("backend") {
		cfg.Backend = a.flags.backend
	}
	if f.Changed("driver") {
		cfg.Driver = a.flags.driver
	}
	if f.Changed("dsn") {
		cfg.DSN = a.flags.dsn
	}
	if f.Changed("schema") {
		cfg.Schema = a.flags.schema
	}
	if f.Changed("exclude") {
		cfg.ExcludeTables = a.flags.exclude
	}
	if a.flags.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.DSN == "" {
		return fmt.Errorf("dsn is required: set it in the config file or pass --dsn")
	}

	a.cfg = cfg
	a.log = config.NewLogger(cfg.Log, cmd.ErrOrStderr())
	adapter.SetLogger(a.log)
	return nil
}

// connect opens the configured database and binds the inspector.
func (a *app) connect(ctx context.Context) error {
	backend, err := a.cfg.BackendID()
	if err != nil {
		return err
	}

	var q adapter.Queryer
	switch {
	case backend == adapter.Scylla:
		session, err := conn.OpenScylla(a.cfg.DSN)
		if err != nil {
			return err
		}
		q, a.close = session, session.Close
	case a.cfg.Driver != "":
		db, err := conn.OpenDriver(ctx, a.cfg.Driver, a.cfg.DSN)
		if err != nil {
			return err
		}
		q, a.close = db, db.Close
	default:
		db, err := conn.Open(ctx, a.cfg.Backend, a.cfg.DSN)
		if err != nil {
			return err
		}
		q, a.close = db, db.Close
	}

	ins, err := inspector.New(q, a.cfg.Backend,
		inspector.WithSchema(a.cfg.Schema),
		inspector.WithExcludeTables(a.cfg.ExcludeTables...),
	)
	if err != nil {
		a.shutdown()
		return err
	}
	a.ins = ins

	a.log.Debug().
		Str("backend", backend.String()).
		Str("schema", a.cfg.Schema).
		Strs("exclude_tables", a.cfg.ExcludeTables).
		Msg("connected")
	return nil
}

func (a *app) shutdown() {
	if a.close == nil {
		return
	}
	if err := a.close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close connection")
	}
	a.close = nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) print(cmd *cobra.Command, v any) error {
	return printJSON(cmd.OutOrStdout(), v)
}
