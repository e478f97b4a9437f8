// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package driver runs SQL text against a database connection and returns
// fully read results.
//
// A Driver owns exactly one connection and is used by one request at a time.
// Each Execute leaves the driver holding a Result until the Result is freed;
// executing again before that fails with a result-pending error, so server
// resources such as open transactions and cursors cannot leak across
// statements.
package driver

import (
	"context"
	"time"

	"sqlbridge/cli/internal/dialect"
	"sqlbridge/cli/internal/dsn"
	apperrors "sqlbridge/cli/internal/errors"
)

// State is the lifecycle position of a driver.
type State int

const (
	Disconnected State = iota
	Connected
	ResultAvailable
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case ResultAvailable:
		return "result-available"
	}
	return "disconnected"
}

// Driver is a single database connection.
type Driver interface {
	Connect(ctx context.Context) error
	// Disconnect frees any held result and closes the connection.
	Disconnect(ctx context.Context) error
	SelectDatabase(ctx context.Context, name string) error
	// Execute runs sql. Blank text returns a nil result and no error.
	Execute(ctx context.Context, sql string) (*Result, error)
	// Call renders c with the driver's dialect and executes it. Output
	// arguments are available from Result.Output.
	Call(ctx context.Context, c dialect.Call) (*Result, error)
	// LastError is the most recent database error, or nil.
	LastError() *Error
	State() State
	Dialect() dialect.Dialect
}

// Observer receives one call per executed statement.
type Observer interface {
	ObserveStatement(dialect, verb string, elapsed time.Duration, err error)
}

// Options configures a driver.
type Options struct {
	// Observer, when set, is told about every executed statement.
	Observer Observer
}

// Open builds the driver for a DSN. The connection is not opened until
// Connect.
func Open(rawDSN string, opts Options) (Driver, error) {
	info, connString, err := dsn.Resolve(rawDSN)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.InvalidArgument, "cannot use DSN", err)
	}
	d, err := dialect.Lookup(info.Type.Dialect())
	if err != nil {
		return nil, err
	}
	if info.Type == dsn.DBTypePostgreSQL {
		return NewPostgres(connString, opts)
	}
	return NewSQL(d, connString, opts)
}
