// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package driver

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sqlbridge/cli/internal/dialect"
	apperrors "sqlbridge/cli/internal/errors"
	"sqlbridge/cli/internal/logging"
)

// refcursorOID is the PostgreSQL type OID of refcursor values.
const refcursorOID = 1790

// Postgres runs statements over one connection acquired from a pgx pool.
// Each statement runs in its own transaction, which the Result holds until it
// is freed; refcursors returned by a statement are fetched inside that
// transaction.
type Postgres struct {
	session
	cfg  *pgxpool.Config
	pool *pgxpool.Pool
	conn *pgxpool.Conn
}

// NewPostgres parses connString; it does not connect.
func NewPostgres(connString string, opts Options) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.InvalidArgument, "invalid PostgreSQL connection string", err)
	}
	// One connection serves the request; the second lets the schema
	// inspector run while a result is held.
	cfg.MaxConns = 2
	return &Postgres{
		session: session{d: dialect.Postgres{}, observer: opts.Observer},
		cfg:     cfg,
	}, nil
}

func (p *Postgres) Connect(ctx context.Context) error {
	if p.state != Disconnected {
		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, p.cfg)
	if err != nil {
		return p.fail(err, "")
	}
	conn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		return p.fail(err, "")
	}
	p.pool, p.conn = pool, conn
	p.state = Connected
	logging.Debug("connected", "dialect", p.d.Name(), "host", p.cfg.ConnConfig.Host, "database", p.cfg.ConnConfig.Database)
	return nil
}

func (p *Postgres) Disconnect(ctx context.Context) error {
	if p.state == Disconnected {
		return nil
	}
	var err error
	if p.held != nil {
		err = p.held.Free(ctx)
	}
	p.conn.Release()
	p.pool.Close()
	p.conn, p.pool = nil, nil
	p.state = Disconnected
	return err
}

// SelectDatabase reconnects to another database on the same server;
// PostgreSQL connections cannot switch databases.
func (p *Postgres) SelectDatabase(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.New(apperrors.InvalidArgument, "database name is required")
	}
	if err := p.Disconnect(ctx); err != nil {
		return err
	}
	p.cfg.ConnConfig.Database = name
	return p.Connect(ctx)
}

// Pool exposes the underlying pool for schema inspection and migrations.
func (p *Postgres) Pool() *pgxpool.Pool { return p.pool }

func (p *Postgres) Execute(ctx context.Context, sql string) (*Result, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, nil
	}
	if err := p.ready(); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := p.run(ctx, sql)
	p.observe(sql, start, err)
	if err != nil {
		return nil, err
	}
	p.hold(res)
	return res, nil
}

func (p *Postgres) run(ctx context.Context, sql string) (*Result, error) {
	tx, err := p.conn.Begin(ctx)
	if err != nil {
		return nil, p.fail(err, sql)
	}

	set, affected, cursors, err := queryPg(ctx, tx, sql)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, p.fail(err, sql)
	}

	sets := []ResultSet{set}
	if len(cursors) > 0 {
		// A statement returning cursors is a routine handing back several
		// result sets; the cursor row itself carries no data.
		sets = sets[:0]
		for _, name := range cursors {
			cs, _, _, err := queryPg(ctx, tx, "FETCH ALL FROM "+p.d.QuoteIdent(name))
			if err != nil {
				_ = tx.Rollback(ctx)
				return nil, p.fail(err, sql)
			}
			sets = append(sets, cs)
		}
	}

	res := newResult(sets, affected)
	res.release = func(ctx context.Context) error {
		for _, name := range cursors {
			if _, err := tx.Exec(ctx, "CLOSE "+p.d.QuoteIdent(name)); err != nil {
				_ = tx.Rollback(ctx)
				return p.fail(err, "CLOSE "+name)
			}
		}
		if err := tx.Commit(ctx); err != nil {
			return p.fail(err, "COMMIT")
		}
		return nil
	}
	return res, nil
}

// queryPg reads every row of sql. It also returns the names held by
// refcursor-typed columns.
func queryPg(ctx context.Context, tx pgx.Tx, sql string) (ResultSet, int64, []string, error) {
	rows, err := tx.Query(ctx, sql)
	if err != nil {
		return ResultSet{}, 0, nil, err
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	set := ResultSet{Columns: make([]string, len(fds)), Rows: []Row{}}
	var cursorCols []int
	for i, fd := range fds {
		set.Columns[i] = fd.Name
		if fd.DataTypeOID == refcursorOID {
			cursorCols = append(cursorCols, i)
		}
	}

	var cursors []string
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return ResultSet{}, 0, nil, err
		}
		row := make(Row, len(vals))
		for i, v := range vals {
			row[set.Columns[i]] = normalizeValue(v)
		}
		for _, i := range cursorCols {
			if name, _ := normalizeValue(vals[i]).(string); name != "" {
				cursors = append(cursors, name)
			}
		}
		set.Rows = append(set.Rows, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return ResultSet{}, 0, nil, err
	}
	return set, rows.CommandTag().RowsAffected(), cursors, nil
}

func (p *Postgres) Call(ctx context.Context, c dialect.Call) (*Result, error) {
	sql, err := p.d.Callable(c)
	if err != nil {
		return nil, err
	}
	res, err := p.Execute(ctx, sql)
	if err != nil {
		return nil, err
	}
	if c.HasOutput() {
		res.takeOutput()
	}
	return res, nil
}
