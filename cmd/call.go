// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"sqlbridge/cli/internal/dialect"
	"sqlbridge/cli/internal/driver"
	"sqlbridge/cli/internal/entity"
	apperrors "sqlbridge/cli/internal/errors"
)

var (
	callProcedure bool
	callRecords   bool
	callNamed     bool
	callRender    bool
	callArgs      []string
	callOuts      []string
)

var (
	reArgHead = regexp.MustCompile(`^([A-Za-z_@][A-Za-z0-9_@$#.]*)?(?::([A-Za-z][A-Za-z0-9 _]*?)(?:\((\d+)\))?)?$`)
	reISODate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// callCmd renders, and unless --render is set executes, a stored routine call.
var callCmd = &cobra.Command{
	Use:   "call ROUTINE",
	Short: "Call a stored function or procedure",
	Long: `The call command builds the invocation text of a stored routine for the
database's dialect and runs it, printing the rows and output arguments as
JSON. With --render it only prints the text; the dialect then comes from
--dialect or the configured DSN.

Arguments are given in order with --arg, as [name][:type[(size)]]=value:
  --arg 42                       positional value
  --arg p_codigo=A1              named value
  --arg p_codigo:varchar(15)=A1  value cast to varchar(15)
  --arg null                     SQL NULL

Output arguments of procedures use --out name:type[(size)].`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		call, err := buildCall(args[0], callArgs, callOuts)
		if err != nil {
			return err
		}

		if callRender {
			d, err := renderDialect()
			if err != nil {
				return err
			}
			text, err := d.Callable(call)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		}

		ctx := cmd.Context()
		drv, err := connectDriver(ctx)
		if err != nil {
			return err
		}
		defer drv.Disconnect(context.Background())

		res, err := drv.Call(ctx, call)
		if err != nil {
			return err
		}
		out := struct {
			Rows     []driver.Row `json:"rows"`
			Affected int64        `json:"affected"`
			Output   driver.Row   `json:"output,omitempty"`
		}{Rows: res.Rows(), Affected: res.AffectedRows(), Output: res.Output()}
		if err := res.Free(ctx); err != nil {
			return err
		}
		b, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

// buildCall assembles a routine call from the command's flags.
func buildCall(routine string, in, out []string) (dialect.Call, error) {
	c := dialect.Call{Routine: routine, Named: callNamed}
	if callProcedure {
		c.Kind = dialect.Procedure
	}
	if callRecords {
		c.Returns = dialect.Records
	}
	for _, def := range in {
		a, err := parseArg(def)
		if err != nil {
			return c, err
		}
		c.Args = append(c.Args, a)
	}
	for _, def := range out {
		a, err := parseArg(def)
		if err != nil {
			return c, err
		}
		a.Mode = dialect.ArgOut
		a.Value = nil
		c.Args = append(c.Args, a)
	}
	return c, nil
}

// parseArg reads [name][:type[(size)]]=value. An argument without '=' is a bare
// value, or, when it contains ':', a name and type with no value.
func parseArg(def string) (dialect.Arg, error) {
	head, value, hasValue := strings.Cut(def, "=")
	if !hasValue {
		if !strings.Contains(def, ":") {
			return dialect.Arg{Value: argValue(def), Type: argType(def)}, nil
		}
		head, value = def, ""
	}
	m := reArgHead.FindStringSubmatch(strings.TrimSpace(head))
	if m == nil {
		return dialect.Arg{}, apperrors.Newf(apperrors.InvalidArgument, "bad argument %q; use [name][:type[(size)]]=value", def)
	}
	a := dialect.Arg{Name: m[1], TypeName: strings.TrimSpace(m[2])}
	if m[3] != "" {
		a.Size, _ = strconv.Atoi(m[3])
	}
	if hasValue {
		a.Value = argValue(value)
		a.Type = argType(value)
	}
	return a, nil
}

// argValue converts command-line text to the Go value rendered for it.
// Numbers are converted only when they print back unchanged, so codes with
// leading zeros stay strings.
func argValue(s string) any {
	switch s {
	case "null", "NULL":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(n, 10) == s {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && strconv.FormatFloat(f, 'f', -1, 64) == s {
		return f
	}
	return s
}

func argType(s string) entity.FieldType {
	if reISODate.MatchString(s) {
		return entity.TypeDate
	}
	return entity.TypeString
}

func init() {
	rootCmd.AddCommand(callCmd)
	f := callCmd.Flags()
	f.BoolVar(&callProcedure, "procedure", false, "Call a procedure instead of a function")
	f.BoolVar(&callRecords, "records", false, "The function returns a row set")
	f.BoolVar(&callNamed, "named", false, "Pass arguments by name")
	f.BoolVar(&callRender, "render", false, "Print the call text without connecting")
	f.StringArrayVar(&callArgs, "arg", nil, "Input argument [name][:type[(size)]]=value (repeatable)")
	f.StringArrayVar(&callOuts, "out", nil, "Output argument name:type[(size)] (repeatable)")
}
