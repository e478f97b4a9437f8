// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	apperrors "sqlbridge/cli/internal/errors"
	"sqlbridge/cli/internal/logging"
	"sqlbridge/cli/internal/migrations"
)

// migrateCmd manages the registry schema (regions, countries, athletes and
// the athlete save routine) in the configured database.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or remove the registry schema",
	Long: `The migrate command applies the embedded registry schema to the configured
database: tables tb_regiones, tb_paises and tb_atletas, and on PostgreSQL,
MySQL and SQL Server the sp_atletas_save_record routine.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigration("applying migrations", func(r *migrations.Runner) error { return r.Up() })
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert all applied migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigration("reverting migrations", func(r *migrations.Runner) error { return r.Down() })
	},
}

var migrateStepsCmd = &cobra.Command{
	Use:   "steps N",
	Short: "Apply N migrations, or revert them when N is negative",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil || n == 0 {
			return apperrors.Newf(apperrors.InvalidArgument, "steps must be a non-zero integer, got %q", args[0])
		}
		return runMigration(fmt.Sprintf("migrating %+d steps", n), func(r *migrations.Runner) error { return r.Steps(n) })
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the applied schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigration("", func(r *migrations.Runner) error {
			v, dirty, err := r.Version()
			if err != nil {
				return err
			}
			state := "clean"
			if dirty {
				state = "dirty"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema version %d (%s)\n", r.Dialect(), v, state)
			return nil
		})
	},
}

// runMigration opens a runner on the resolved DSN, runs fn and reports the
// resulting version. An empty label runs fn without progress output.
func runMigration(label string, fn func(*migrations.Runner) error) error {
	raw, source, err := resolveDSN()
	if err != nil {
		return err
	}
	logging.Debug("migrating", "source", source, "dsn", raw)
	r, err := migrations.Open(raw)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := r.Close(); cerr != nil {
			logging.Warn("cannot close migration connection", "error", cerr)
		}
	}()

	if label == "" {
		return fn(r)
	}
	stop := spin(label)
	err = fn(r)
	stop()
	if err != nil {
		pterm.Println(logging.PresentError("❌ migration failed", err))
		return err
	}
	if v, dirty, verr := r.Version(); verr == nil {
		pterm.Success.Printf("%s schema at version %d", r.Dialect(), v)
		if dirty {
			pterm.Print(" (dirty)")
		}
		pterm.Println()
	}
	return nil
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStepsCmd, migrateVersionCmd)
}
