// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package driver

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	mssql "github.com/microsoft/go-mssqldb"
	"modernc.org/sqlite"

	"sqlbridge/cli/internal/dialect"
	apperrors "sqlbridge/cli/internal/errors"
)

// Error is a failure reported by the database or the connection to it.
type Error struct {
	// Code is the vendor code: SQLSTATE for PostgreSQL, the error number for
	// MySQL and SQL Server, the extended result code for SQLite.
	Code    string
	Message string
	Kind    apperrors.Kind
	SQL     string
	Err     error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (code %s)", e.Message, e.Code)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorKind classifies the error for callers that only see an error value.
func (e *Error) ErrorKind() apperrors.Kind { return e.Kind }

// mysqlSignal is ER_SIGNAL_EXCEPTION, the number of every error raised with
// SIGNAL; its SQLSTATE carries the meaning.
const mysqlSignal = 1644

// vendorCode extracts the code and message of a driver-specific error.
func vendorCode(err error) (string, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		msg := pgErr.Message
		if pgErr.Detail != "" {
			msg += ": " + pgErr.Detail
		}
		return pgErr.Code, msg
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		if myErr.Number == mysqlSignal {
			return string(myErr.SQLState[:]), myErr.Message
		}
		return strconv.Itoa(int(myErr.Number)), myErr.Message
	}
	var msErr mssql.Error
	if errors.As(err, &msErr) {
		return strconv.Itoa(int(msErr.Number)), msErr.Message
	}
	var msErrPtr *mssql.Error
	if errors.As(err, &msErrPtr) {
		return strconv.Itoa(int(msErrPtr.Number)), msErrPtr.Message
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return strconv.Itoa(liteErr.Code()), liteErr.Error()
	}
	return "", err.Error()
}

// translate turns a driver error into an *Error classified by d.
func translate(d dialect.Dialect, err error, sql string) *Error {
	var already *Error
	if errors.As(err, &already) {
		return already
	}
	code, msg := vendorCode(err)
	kind := d.Classify(code, msg)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = apperrors.Connection
	}
	return &Error{Code: code, Message: msg, Kind: kind, SQL: sql, Err: err}
}
