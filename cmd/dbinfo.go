// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sqlbridge/cli/internal/dsn"
	"sqlbridge/cli/internal/keychain"
	"sqlbridge/cli/internal/logging"
)

// dbinfoCmd displays the active database connection with credentials masked.
var dbinfoCmd = &cobra.Command{
	Use:   "dbinfo",
	Short: "Show current database connection string",
	Long: `The dbinfo command displays the database connection string (DSN) that other
commands would use, with credentials masked. It also lists the profiles stored
in the OS keychain.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, source, err := resolveDSN()
		if err != nil {
			pterm.Println("⚠️  No database connection configured")
			pterm.Println("   Please run: sqlbridge connect")
			return nil
		}
		pterm.Println("Using DSN from " + source)
		pterm.Println()

		rows := [][]string{{"Connection", logging.Mask(raw)}}
		if info, err := dsn.ParseInfo(raw); err == nil {
			rows = append(rows,
				[]string{"Dialect", info.Type.Dialect()},
				[]string{"Target", target(info)},
			)
			if info.User != "" {
				rows = append(rows, []string{"User", info.User})
			}
		} else {
			rows = append(rows, []string{"Problem", logging.Mask(err.Error())})
		}
		table, _ := pterm.DefaultTable.WithData(rows).Srender()

		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Database Connection")).
			WithPadding(1).
			Println(table)
		pterm.Println()

		if km, err := keychain.GetManager(); err == nil {
			if profiles, err := km.Profiles(); err == nil && len(profiles) > 0 {
				pterm.Println("Stored profiles: " + strings.Join(profiles, ", "))
			}
		}
		pterm.Println("To update this connection, run: sqlbridge connect")
		pterm.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbinfoCmd)
}
