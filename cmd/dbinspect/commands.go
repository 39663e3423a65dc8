package main

import (
	"github.com/jadedragon942/dbinspect/export"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	return rootCmd(&app{})
}

func rootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "dbinspect",
		Short:         "Inspect relational database schemas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Runnable() || cmd.Name() == "help" {
				return nil
			}
			if err := a.load(cmd); err != nil {
				return err
			}
			return a.connect(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "path to a TOML or YAML config file")
	pf.StringVar(&a.flags.backend, "backend", "", "database backend (mssql, mysql, postgres, cockroachdb, sqlite, oracle, scylla)")
	pf.StringVar(&a.flags.driver, "driver", "", "database/sql driver name overriding the backend default")
	pf.StringVar(&a.flags.dsn, "dsn", "", "connection string")
	pf.StringVar(&a.flags.schema, "schema", "", "schema, owner or keyspace to inspect")
	pf.StringSliceVar(&a.flags.exclude, "exclude", nil, "tables to leave out")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "log catalog queries")

	root.AddCommand(
		tablesCmd(a),
		tableInfoCmd(a),
		columnsCmd(a),
		columnInfoCmd(a),
		primaryCmd(a),
		foreignKeysCmd(a),
		snapshotCmd(a),
	)
	for _, cmd := range root.Commands() {
		if cmd.RunE != nil {
			cmd.RunE = a.closing(cmd.RunE)
		}
	}
	return root
}

// closing releases the connection once fn returns, whether or not it fails.
// cobra runs no post-run hooks after a RunE error.
func (a *app) closing(fn func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer a.shutdown()
		return fn(cmd, args)
	}
}

func tablesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List table names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := a.ins.Tables(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(cmd, tables)
		},
	}
}

func tableInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "table-info [table]",
		Short: "Describe one table, or every table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				tables, err := a.ins.AllTableInfo(cmd.Context())
				if err != nil {
					return err
				}
				return a.print(cmd, tables)
			}
			info, err := a.ins.TableInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(cmd, info)
		},
	}
}

func columnsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "columns [table]",
		Short: "List columns of one table, or of every table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refs, err := a.ins.Columns(cmd.Context(), tableArg(args))
			if err != nil {
				return err
			}
			return a.print(cmd, refs)
		},
	}
}

func columnInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "column-info [table [column]]",
		Short: "Describe columns",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				col, err := a.ins.Column(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return a.print(cmd, col)
			}
			cols, err := a.ins.ColumnInfo(cmd.Context(), tableArg(args))
			if err != nil {
				return err
			}
			return a.print(cmd, cols)
		},
	}
}

func primaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "primary <table>",
		Short: "Print the first primary key column of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pk, err := a.ins.Primary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(cmd, pk)
		},
	}
}

func foreignKeysCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "foreign-keys [table]",
		Short: "List foreign key columns of one table, or of every table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fks, err := a.ins.ForeignKeys(cmd.Context(), tableArg(args))
			if err != nil {
				return err
			}
			return a.print(cmd, fks)
		},
	}
}

func snapshotCmd(a *app) *cobra.Command {
	var format, dest, name string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture the whole schema into a file or an S3 bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := cmd.Flags()
			if !f.Changed("format") {
				format = a.cfg.Export.Format
			}
			if !f.Changed("out") {
				dest = a.cfg.Export.Dest
			}
			if !f.Changed("name") {
				name = a.cfg.Export.Name
			}

			fmtID, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			snap, err := export.Capture(ctx, a.ins)
			if err != nil {
				return err
			}

			if dest == "-" {
				data, err := export.Encode(snap, fmtID)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			var w export.Writer = export.FileWriter{Dir: dest}
			if export.IsS3URL(dest) {
				s3w, err := export.NewS3Writer(ctx, dest)
				if err != nil {
					return err
				}
				w = s3w
			}
			if name == "" {
				name = export.FileName(snap.Backend, fmtID)
			}
			if err := export.Save(ctx, w, snap, name, fmtID); err != nil {
				return err
			}

			a.log.Info().
				Str("dest", dest).
				Str("name", name).
				Int("tables", len(snap.Tables)).
				Msg("snapshot written")
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "snapshot format (json or yaml)")
	cmd.Flags().StringVar(&dest, "out", ".", "directory, s3://bucket/prefix URL, or - for stdout")
	cmd.Flags().StringVar(&name, "name", "", "file or object name (default <backend>-schema.<format>)")
	return cmd
}

func tableArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
