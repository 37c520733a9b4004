package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/astrobsm/criticalcare/internal/config"
	"github.com/astrobsm/criticalcare/internal/engine"
	"github.com/astrobsm/criticalcare/internal/platform/auth"
	"github.com/astrobsm/criticalcare/internal/platform/db"
	"github.com/astrobsm/criticalcare/internal/refdata"
	"github.com/astrobsm/criticalcare/migrations"
)

func newEngine(dir string, logger zerolog.Logger) (*engine.Service, error) {
	tables, err := refdata.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("load reference data: %w", err)
	}
	registry, err := engine.NewRegistry(tables)
	if err != nil {
		return nil, err
	}
	return engine.NewService(registry, logger), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func calcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc <calculator>",
		Short: "Run one calculator on a JSON input record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("input")
			dir, _ := cmd.Flags().GetString("tables")

			var r io.Reader = cmd.InOrStdin()
			if path != "-" {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			rec, err := engine.DecodeRecord(r)
			if err != nil {
				return err
			}

			logger := zerolog.New(cmd.ErrOrStderr()).Level(zerolog.WarnLevel)
			svc, err := newEngine(dir, logger)
			if err != nil {
				return err
			}
			out, err := svc.Run(context.Background(), args[0], rec)
			if err != nil {
				_, body := engine.ErrorBody(err)
				_ = writeJSON(cmd.OutOrStdout(), body)
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().String("input", "-", "Path to the JSON input record, - for stdin")
	cmd.Flags().String("tables", "", "Reference data directory (embedded tables when empty)")
	return cmd
}

func calculatorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calculators",
		Short: "List the available calculators",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newEngine("", zerolog.Nop())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, info := range svc.Registry().List() {
				fmt.Fprintf(w, "%-12s %s\n", info.ID, info.Title)
			}
			return nil
		},
	}
}

func tablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Reference data tools",
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Validate reference data tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			tables, err := refdata.Load(dir)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, file := range []string{refdata.CapriniFile, refdata.DosingFile, refdata.FoodsFile} {
				fmt.Fprintf(w, "%-20s version %s\n", file, tables.Versions()[file])
			}
			fmt.Fprintf(w, "%d Caprini factors, %d drugs, %d foods\n",
				len(tables.Caprini.Weights), tables.Dosing.Len(), tables.Foods.Len())
			for _, item := range tables.Dosing.Review() {
				fmt.Fprintf(w, "review: %s\n", item)
			}
			return nil
		},
	}
	checkCmd.Flags().String("dir", "", "Reference data directory (embedded tables when empty)")
	cmd.AddCommand(checkCmd)
	return cmd
}

func migrationFiles(dir string) fs.FS {
	if dir == "" {
		return migrations.FS
	}
	return os.DirFS(dir)
}

func openMigrator(ctx context.Context, dir string) (*db.Migrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.HistoryEnabled() {
		return nil, nil, fmt.Errorf("DATABASE_URL is not set")
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, err
	}
	return db.NewMigrator(pool, migrationFiles(dir)), pool.Close, nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations for calculation history",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			dir, _ := cmd.Flags().GetString("dir")
			if err := db.ValidSchema(schema); err != nil {
				return err
			}

			ctx := context.Background()
			migrator, closeFn, err := openMigrator(ctx, dir)
			if err != nil {
				return err
			}
			defer closeFn()

			fmt.Fprintf(cmd.OutOrStdout(), "Running migrations on schema: %s\n", schema)
			count, err := migrator.Up(ctx, schema)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("schema", db.DefaultSchema, "Target schema for migrations")
	upCmd.Flags().String("dir", "", "Migrations directory (embedded migrations when empty)")
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			dir, _ := cmd.Flags().GetString("dir")
			if err := db.ValidSchema(schema); err != nil {
				return err
			}

			ctx := context.Background()
			migrator, closeFn, err := openMigrator(ctx, dir)
			if err != nil {
				return err
			}
			defer closeFn()

			statuses, err := migrator.Status(ctx, schema)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			printStatus(cmd.OutOrStdout(), schema, statuses)
			return nil
		},
	}
	statusCmd.Flags().String("schema", db.DefaultSchema, "Target schema for migrations")
	statusCmd.Flags().String("dir", "", "Migrations directory (embedded migrations when empty)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func printStatus(w io.Writer, schema string, statuses []db.MigrationStatus) {
	fmt.Fprintf(w, "Migration status for schema: %s\n", schema)
	fmt.Fprintf(w, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(w, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(w, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed bearer token with AUTH_SIGNING_KEY",
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, _ := cmd.Flags().GetString("sub")
			roles, _ := cmd.Flags().GetStringSlice("role")
			ttl, _ := cmd.Flags().GetDuration("ttl")
			if subject == "" {
				return fmt.Errorf("--sub is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			jwtCfg := auth.JWTConfig{
				SigningKey: []byte(cfg.AuthSigningKey),
				Issuer:     cfg.AuthIssuer,
				Audience:   cfg.AuthAudience,
			}
			token, err := jwtCfg.Issue(subject, roles, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("sub", "", "Token subject (user id)")
	cmd.Flags().StringSlice("role", []string{auth.RoleClinician}, "Roles to grant")
	cmd.Flags().Duration("ttl", 12*time.Hour, "Token lifetime")
	return cmd
}
