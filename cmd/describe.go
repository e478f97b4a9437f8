// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sqlbridge/cli/internal/catalog"
	"sqlbridge/cli/internal/driver"
	"sqlbridge/cli/internal/entity"
	apperrors "sqlbridge/cli/internal/errors"
)

var describeCheck bool

// describeCmd lists the catalog entities and, with --check, compares them
// against the live PostgreSQL schema.
var describeCmd = &cobra.Command{
	Use:   "describe [entity ...]",
	Short: "List entities and their fields",
	Long: `The describe command lists the entities served by sqlbridge with their table,
key and fields. With --check it connects to the database and reports where a
declared field or key disagrees with the live table (PostgreSQL only).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := args
		if len(names) == 0 {
			names = catalog.Names()
		}
		entries := make([]catalog.Entry, 0, len(names))
		for _, n := range names {
			e, err := catalog.Lookup(n)
			if err != nil {
				return err
			}
			entries = append(entries, e)
		}

		for _, e := range entries {
			printDescriptor(e.Descriptor)
		}
		if !describeCheck {
			return nil
		}

		ctx := cmd.Context()
		drv, err := connectDriver(ctx)
		if err != nil {
			return err
		}
		defer drv.Disconnect(context.Background())
		pg, ok := drv.(*driver.Postgres)
		if !ok {
			return apperrors.Newf(apperrors.Unsupported, "schema check is not available for %s", drv.Dialect().Name())
		}

		inspector := driver.NewSchemaInspector(pg.Pool())
		drift := 0
		for _, e := range entries {
			info, err := inspector.Table(ctx, e.Descriptor.Table())
			if err != nil {
				return err
			}
			diffs := driver.Diff(e.Descriptor, info)
			if len(diffs) == 0 {
				pterm.Success.Printf("%s matches %s\n", e.Descriptor.Name(), info.Table)
				continue
			}
			drift++
			pterm.Warning.Printf("%s differs from %s\n", e.Descriptor.Name(), info.Table)
			items := make([]pterm.BulletListItem, 0, len(diffs))
			for _, d := range diffs {
				items = append(items, pterm.BulletListItem{Level: 1, Text: d})
			}
			_ = pterm.DefaultBulletList.WithItems(items).Render()
		}
		if drift > 0 {
			return apperrors.Newf(apperrors.Query, "%d of %d entities differ from the database", drift, len(entries))
		}
		return nil
	},
}

func printDescriptor(d *entity.Descriptor) {
	pterm.DefaultSection.Printf("%s (%s)", d.Name(), d.Table())
	rows := [][]string{{"Field", "Type", "Key", "Flags"}}
	for _, f := range d.Fields() {
		key := ""
		if d.IsKey(f.Name) {
			key = "yes"
		}
		rows = append(rows, []string{f.Name, f.Type.String(), key, fieldFlags(f)})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	pterm.Println()
}

// fieldFlags lists the operation restrictions of f.
func fieldFlags(f entity.Field) string {
	var flags []string
	for _, fl := range []struct {
		op   entity.FieldOp
		name string
	}{
		{entity.OpComputed, "computed"},
		{entity.OpReadOnly, "read-only"},
		{entity.OpAddOnly, "add-only"},
		{entity.OpUpdateOnly, "update-only"},
	} {
		if f.Ops.Has(fl.op) {
			flags = append(flags, fl.name)
		}
	}
	return strings.Join(flags, ", ")
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().BoolVar(&describeCheck, "check", false, "Compare the entities with the live database schema")
}
