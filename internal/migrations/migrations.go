// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package migrations carries the registry schema (regions, countries,
// athletes and the athlete save routine) for every supported product and
// applies it with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/database/sqlserver"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	"sqlbridge/cli/internal/dialect"
	"sqlbridge/cli/internal/dsn"
	apperrors "sqlbridge/cli/internal/errors"
	"sqlbridge/cli/internal/logging"
)

//go:embed sql
var files embed.FS

// Source returns the migration files of a dialect.
func Source(dialectName string) (source.Driver, error) {
	d, err := dialect.Lookup(dialectName)
	if err != nil {
		return nil, err
	}
	src, err := iofs.New(files, "sql/"+d.Name())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Unsupported, "no migrations for "+d.Name(), err)
	}
	return src, nil
}

// Runner applies the registry migrations to one database.
type Runner struct {
	m       *migrate.Migrate
	dialect string
}

// Open connects to the database named by rawDSN with its own connection
// pool. Close releases it.
func Open(rawDSN string) (*Runner, error) {
	info, connString, err := dsn.Resolve(rawDSN)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.InvalidArgument, "cannot use DSN", err)
	}
	d, err := dialect.Lookup(info.Type.Dialect())
	if err != nil {
		return nil, err
	}
	src, err := Source(d.Name())
	if err != nil {
		return nil, err
	}

	driverName := d.DriverName()
	if driverName == "" {
		driverName = "pgx"
	}
	db, err := sql.Open(driverName, connString)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Connection, "cannot open database", err)
	}

	target, err := instance(d.Name(), db)
	if err != nil {
		_ = db.Close()
		return nil, apperrors.Wrap(apperrors.Connection, "cannot prepare migrations", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, d.Name(), target)
	if err != nil {
		_ = target.Close()
		return nil, apperrors.Wrap(apperrors.Connection, "cannot prepare migrations", err)
	}
	m.Log = migrateLogger{}
	return &Runner{m: m, dialect: d.Name()}, nil
}

// instance wraps db in the golang-migrate driver of the dialect.
func instance(name string, db *sql.DB) (database.Driver, error) {
	switch name {
	case "postgres":
		return pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	case "mysql":
		return mysql.WithInstance(db, &mysql.Config{})
	case "mssql":
		return sqlserver.WithInstance(db, &sqlserver.Config{})
	case "sqlite":
		return sqlite.WithInstance(db, &sqlite.Config{})
	}
	return nil, fmt.Errorf("no migration driver for %s", name)
}

// Dialect is the name of the dialect the runner migrates.
func (r *Runner) Dialect() string { return r.dialect }

// Up applies every pending migration. An up-to-date schema is not an error.
func (r *Runner) Up() error {
	return r.wrap(r.m.Up())
}

// Down reverts every applied migration.
func (r *Runner) Down() error {
	return r.wrap(r.m.Down())
}

// Steps applies n migrations forward, or -n backward.
func (r *Runner) Steps(n int) error {
	return r.wrap(r.m.Steps(n))
}

// Version reports the applied version. A database without migrations
// reports version 0.
func (r *Runner) Version() (version uint, dirty bool, err error) {
	version, dirty, err = r.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, apperrors.Wrap(apperrors.Query, "cannot read schema version", err)
	}
	return version, dirty, nil
}

// Close releases the database connection.
func (r *Runner) Close() error {
	srcErr, dbErr := r.m.Close()
	if srcErr != nil {
		return srcErr
	}
	return dbErr
}

func (r *Runner) wrap(err error) error {
	if err == nil || errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return apperrors.Wrap(apperrors.Query, "migration failed", err)
}

// migrateLogger sends golang-migrate progress to the debug log.
type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...any) {
	logging.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (migrateLogger) Verbose() bool { return true }
