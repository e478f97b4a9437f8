// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sqlbridge/cli/internal/criteria"
	"sqlbridge/cli/internal/dataservice"
	"sqlbridge/cli/internal/driver"
	apperrors "sqlbridge/cli/internal/errors"
)

var (
	requestOp       string
	requestInput    string
	requestDryRun   bool
	requestDatabase string
	requestPretty   bool
)

// requestCmd serves one data request and prints the response envelope.
var requestCmd = &cobra.Command{
	Use:   "request [entity] [key=value ...]",
	Short: "Serve one data request and print the JSON response",
	Long: `The request command serves one SmartClient-style data request against the
configured database and prints {"response": {...}} on stdout.

Parameters are given as key=value arguments, as a JSON object read with
--input, or both (arguments win). The entity may also be passed as the
dataSource parameter.

Examples:
  sqlbridge request paises op=fetch _startRow=0 _endRow=20 _sortBy=-paises_descripcion
  sqlbridge request atletas op=add atletas_codigo=A9 atletas_nombres=Ana ...
  sqlbridge request atletas --input criteria.json --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var input []byte
		if requestInput != "" {
			var err error
			if input, err = readInput(requestInput); err != nil {
				return err
			}
		}
		entityName, params, err := requestParams(args, input)
		if err != nil {
			return err
		}
		if requestOp != "" {
			params[criteria.KeyOperation] = requestOp
		}

		ctx := cmd.Context()
		var drv driver.Driver
		if requestDryRun {
			if drv, _, err = openDriver(); err != nil {
				return err
			}
		} else {
			if drv, err = connectDriver(ctx); err != nil {
				return err
			}
			defer drv.Disconnect(context.Background())
			if requestDatabase != "" {
				if err := drv.SelectDatabase(ctx, requestDatabase); err != nil {
					return err
				}
			}
		}

		svc := dataservice.New(drv, dataservice.Options{Metrics: appMetrics, DryRun: requestDryRun})
		resp, herr := svc.Handle(ctx, entityName, params)
		out, err := resp.MarshalEnvelope()
		if err != nil {
			return err
		}
		if requestPretty {
			var buf bytes.Buffer
			if err := json.Indent(&buf, out, "", "  "); err == nil {
				out = buf.Bytes()
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return herr
	},
}

// readInput reads a file, or stdin for "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// requestParams builds the request parameters. input, when present, is a JSON
// object; string values are taken as they are and other values keep their
// JSON text, so an _acriteria list can be given inline. key=value arguments
// override it. The first argument without '=' names the entity; otherwise the
// dataSource parameter does.
func requestParams(args []string, input []byte) (string, criteria.Params, error) {
	params := criteria.Params{}
	if len(bytes.TrimSpace(input)) > 0 {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(input, &raw); err != nil {
			return "", nil, apperrors.Wrap(apperrors.InvalidArgument, "input must be a JSON object", err)
		}
		for k, v := range raw {
			text := strings.TrimSpace(string(v))
			switch {
			case text == "null":
				continue
			case strings.HasPrefix(text, `"`):
				var s string
				if err := json.Unmarshal(v, &s); err != nil {
					return "", nil, apperrors.Wrap(apperrors.InvalidArgument, "bad value for "+k, err)
				}
				params[k] = s
			default:
				params[k] = text
			}
		}
	}

	entityName := ""
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok {
			if entityName != "" {
				return "", nil, apperrors.Newf(apperrors.InvalidArgument, "unexpected argument %q; parameters are key=value", a)
			}
			entityName = a
			continue
		}
		if k == "" {
			return "", nil, apperrors.Newf(apperrors.InvalidArgument, "empty parameter name in %q", a)
		}
		params[k] = v
	}
	if entityName == "" {
		entityName = params["dataSource"]
	}
	if entityName == "" {
		return "", nil, apperrors.New(apperrors.InvalidArgument, "entity is required")
	}
	return entityName, params, nil
}

func init() {
	rootCmd.AddCommand(requestCmd)
	requestCmd.Flags().StringVar(&requestOp, "op", "", "Operation: fetch, read, custom, add, update or remove (overrides op=)")
	requestCmd.Flags().StringVarP(&requestInput, "input", "i", "", "Read parameters from a JSON object file, or - for stdin")
	requestCmd.Flags().BoolVar(&requestDryRun, "dry-run", false, "Print the generated SQL without connecting")
	requestCmd.Flags().StringVar(&requestDatabase, "database", "", "Switch to this database after connecting")
	requestCmd.Flags().BoolVar(&requestPretty, "pretty", false, "Indent the JSON response")
}
