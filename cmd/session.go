// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"strings"
	"time"

	"sqlbridge/cli/internal/config"
	"sqlbridge/cli/internal/connerrors"
	"sqlbridge/cli/internal/dialect"
	"sqlbridge/cli/internal/driver"
	"sqlbridge/cli/internal/dsn"
	apperrors "sqlbridge/cli/internal/errors"
	"sqlbridge/cli/internal/keychain"
	"sqlbridge/cli/internal/logging"
)

const connectTimeout = 10 * time.Second

// resolveDSN finds the DSN to use: the --dsn flag, then the environment,
// then the keychain entry of the active profile. source describes where it
// came from.
func resolveDSN() (raw, source string, err error) {
	if v := strings.TrimSpace(flagDSN); v != "" {
		return v, "--dsn flag", nil
	}
	if v, ok := config.EnvDSNValue(); ok {
		return v, "environment", nil
	}

	profile := cfg.DB.Profile
	if profile == "" {
		profile = keychain.DefaultProfile
	}
	km, err := keychain.GetManager()
	if err != nil {
		return "", "", apperrors.Wrap(apperrors.InvalidArgument,
			"secure storage is not available; pass --dsn or set "+config.EnvDSN, err)
	}
	v, err := km.LoadDSN(profile)
	if err != nil || strings.TrimSpace(v) == "" {
		return "", "", apperrors.Newf(apperrors.InvalidArgument,
			"no database connection configured for profile %q; run 'sqlbridge connect'", profile)
	}
	return strings.TrimSpace(v), "keychain profile " + profile, nil
}

// target names the database a DSN points at, for messages.
func target(info *dsn.DSNInfo) string {
	if info == nil {
		return ""
	}
	if info.Type == dsn.DBTypeSQLite {
		return info.Database
	}
	if info.Database == "" {
		return info.Address()
	}
	return info.Address() + "/" + info.Database
}

// openDriver builds the driver for the resolved DSN without connecting.
func openDriver() (driver.Driver, *dsn.DSNInfo, error) {
	raw, source, err := resolveDSN()
	if err != nil {
		return nil, nil, err
	}
	info, err := dsn.ParseInfo(raw)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.InvalidArgument, "invalid database connection string", err)
	}
	drv, err := driver.Open(raw, driver.Options{Observer: appMetrics})
	if err != nil {
		return nil, nil, err
	}
	logging.Debug("database selected", "source", source, "dialect", drv.Dialect().Name(), "dsn", raw)
	return drv, info, nil
}

// connectDriver opens and connects the driver, explaining failures.
func connectDriver(ctx context.Context) (driver.Driver, error) {
	drv, info, err := openDriver()
	if err != nil {
		return nil, err
	}
	ctxConn, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	stop := spin("connecting to " + target(info))
	err = drv.Connect(ctxConn)
	stop()
	if err != nil {
		return nil, connerrors.Explain(err, target(info))
	}
	return drv, nil
}

// renderDialect picks the dialect for commands that only render SQL: the
// --dialect flag or config value, else the dialect of the resolved DSN.
func renderDialect() (dialect.Dialect, error) {
	if cfg.DB.Dialect != "" {
		return dialect.Lookup(cfg.DB.Dialect)
	}
	raw, _, err := resolveDSN()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.InvalidArgument, "pass --dialect or configure a DSN", err)
	}
	name := dsn.DetectDBType(raw).Dialect()
	if name == "" {
		return nil, apperrors.New(apperrors.Unsupported, "cannot tell the dialect from the DSN")
	}
	return dialect.Lookup(name)
}
