// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package driver

import (
	"context"
	"database/sql"
	"strings"
	"time"

	// database/sql drivers for the non-PostgreSQL dialects.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"

	"sqlbridge/cli/internal/dialect"
	apperrors "sqlbridge/cli/internal/errors"
	"sqlbridge/cli/internal/logging"
)

// SQL runs statements over one database/sql connection. It serves MySQL,
// SQL Server and SQLite; the dialect decides the driver name.
type SQL struct {
	session
	connString string
	db         *sql.DB
	conn       *sql.Conn
}

// NewSQL prepares a driver for d; it does not connect.
func NewSQL(d dialect.Dialect, connString string, opts Options) (*SQL, error) {
	if d.DriverName() == "" {
		return nil, apperrors.Newf(apperrors.Unsupported, "dialect %s has no database/sql driver", d.Name())
	}
	return &SQL{
		session:    session{d: d, observer: opts.Observer},
		connString: connString,
	}, nil
}

func (s *SQL) Connect(ctx context.Context) error {
	if s.state != Disconnected {
		return nil
	}
	db, err := sql.Open(s.d.DriverName(), s.connString)
	if err != nil {
		return s.fail(err, "")
	}
	conn, err := db.Conn(ctx)
	if err == nil {
		err = conn.PingContext(ctx)
	}
	if err != nil {
		if conn != nil {
			_ = conn.Close()
		}
		_ = db.Close()
		return s.fail(err, "")
	}
	s.db, s.conn = db, conn
	s.state = Connected
	logging.Debug("connected", "dialect", s.d.Name())
	return nil
}

func (s *SQL) Disconnect(ctx context.Context) error {
	if s.state == Disconnected {
		return nil
	}
	var err error
	if s.held != nil {
		err = s.held.Free(ctx)
	}
	if cerr := s.conn.Close(); err == nil {
		err = cerr
	}
	if cerr := s.db.Close(); err == nil {
		err = cerr
	}
	s.conn, s.db = nil, nil
	s.state = Disconnected
	return err
}

// SelectDatabase switches the connection's current database with USE.
func (s *SQL) SelectDatabase(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.New(apperrors.InvalidArgument, "database name is required")
	}
	if s.d.Name() == "sqlite" {
		return apperrors.New(apperrors.Unsupported, "sqlite has a single database per file")
	}
	if err := s.ready(); err != nil {
		return err
	}
	stmt := "USE " + s.d.QuoteIdent(name)
	start := time.Now()
	if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
		e := s.fail(err, stmt)
		s.observe(stmt, start, e)
		return e
	}
	s.observe(stmt, start, nil)
	return nil
}

// DB exposes the underlying pool, for migrations.
func (s *SQL) DB() *sql.DB { return s.db }

func (s *SQL) Execute(ctx context.Context, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := s.run(ctx, text)
	if err != nil {
		// Classified first so the observer sees the error kind.
		e := s.fail(err, text)
		s.observe(text, start, e)
		return nil, e
	}
	s.observe(text, start, nil)
	s.hold(res)
	return res, nil
}

func (s *SQL) run(ctx context.Context, text string) (*Result, error) {
	if noRows(text) {
		r, err := s.conn.ExecContext(ctx, text)
		if err != nil {
			return nil, err
		}
		n, err := r.RowsAffected()
		if err != nil {
			return nil, err
		}
		return newResult(nil, n), nil
	}

	rows, err := s.conn.QueryContext(ctx, text)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []ResultSet
	for {
		set, err := readSet(rows)
		if err != nil {
			return nil, err
		}
		if len(set.Columns) > 0 {
			sets = append(sets, set)
		}
		if !rows.NextResultSet() {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return newResult(sets, 0), nil
}

// readSet scans the current result set into rows keyed by column name.
func readSet(rows *sql.Rows) (ResultSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return ResultSet{}, err
	}
	set := ResultSet{Columns: cols, Rows: []Row{}}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return ResultSet{}, err
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			row[c] = normalizeValue(values[i])
		}
		set.Rows = append(set.Rows, row)
	}
	return set, rows.Err()
}

func (s *SQL) Call(ctx context.Context, c dialect.Call) (*Result, error) {
	text, err := s.d.Callable(c)
	if err != nil {
		return nil, err
	}
	res, err := s.Execute(ctx, text)
	if err != nil {
		return nil, err
	}
	if c.HasOutput() {
		res.takeOutput()
	}
	return res, nil
}
