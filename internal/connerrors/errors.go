// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package connerrors explains failed database connections to the user.
package connerrors

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	"sqlbridge/cli/internal/driver"
	apperrors "sqlbridge/cli/internal/errors"
	"sqlbridge/cli/internal/logging"
)

// Cause is the detected reason a connection failed.
type Cause int

const (
	CauseUnknown Cause = iota
	CauseTimeout
	CauseDNS
	CauseRefused
	CauseTLS
	CauseAuth
	CauseDatabase
)

// authCodes are the vendor codes of rejected credentials.
var authCodes = map[string]bool{
	"28P01": true, "28000": true, // PostgreSQL
	"1045":  true, // MySQL
	"18456": true, // SQL Server
}

// Classify detects why err prevented a connection.
func Classify(err error) Cause {
	if err == nil {
		return CauseUnknown
	}
	var dbErr *driver.Error
	if errors.As(err, &dbErr) {
		if authCodes[dbErr.Code] {
			return CauseAuth
		}
		if dbErr.Code == "3D000" || dbErr.Code == "1049" || dbErr.Code == "4060" {
			return CauseDatabase
		}
	}

	lower := strings.ToLower(err.Error())
	var netErr net.Error
	var dnsErr *net.DNSError
	var opErr *net.OpError
	switch {
	case errors.As(err, &dnsErr), strings.Contains(lower, "no such host"):
		return CauseDNS
	case errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED),
		strings.Contains(lower, "connection refused"):
		return CauseRefused
	case errors.As(err, &netErr) && netErr.Timeout(),
		strings.Contains(lower, "timeout"), strings.Contains(lower, "deadline exceeded"):
		return CauseTimeout
	case strings.Contains(lower, "password authentication failed"),
		strings.Contains(lower, "access denied"),
		strings.Contains(lower, "login failed"):
		return CauseAuth
	case strings.Contains(lower, "tls"), strings.Contains(lower, "ssl"),
		strings.Contains(lower, "certificate"):
		return CauseTLS
	}
	return CauseUnknown
}

// Explain prints advice for a failed connection to host and returns err
// categorized as a connection error.
func Explain(err error, host string) error {
	if err == nil {
		return nil
	}
	if host == "" {
		host = "the database"
	}
	switch Classify(err) {
	case CauseTimeout:
		pterm.Printf("⏱️  Timed out connecting to %s\n", host)
		pterm.Println()
		pterm.Println("The server did not answer in time. Check that it is running")
		pterm.Println("and that no firewall drops traffic to its port.")
	case CauseDNS:
		pterm.Printf("🌐 Cannot resolve %s\n", host)
		pterm.Println()
		pterm.Println("Check the host name in the DSN and your DNS settings.")
	case CauseRefused:
		pterm.Printf("🚫 Connection refused by %s\n", host)
		pterm.Println()
		pterm.Println("Nothing is listening on that address. This could mean:")
		pterm.Println("  • The database server is stopped")
		pterm.Println("  • The port in the DSN is wrong")
		pterm.Println("  • The server only listens on another interface")
	case CauseTLS:
		pterm.Printf("🔒 Secure connection to %s failed\n", host)
		pterm.Println()
		pterm.Println("Check the sslmode / encrypt / tls settings in the DSN and the")
		pterm.Println("server certificate.")
	case CauseAuth:
		pterm.Printf("🔑 %s rejected the credentials\n", host)
		pterm.Println()
		pterm.Println("Check the user name and password, then run 'sqlbridge connect' again.")
	case CauseDatabase:
		pterm.Printf("🗄️  The database named in the DSN does not exist on %s\n", host)
		pterm.Println()
		pterm.Println("Create it, or run 'sqlbridge migrate up' against an existing one.")
	default:
		pterm.Printf("❌ Cannot connect to %s\n", host)
	}
	pterm.Println()
	pterm.Debug.Printf("Technical details: %s\n", logging.Mask(err.Error()))

	if apperrors.KindOf(err) == apperrors.Connection {
		return err
	}
	return apperrors.Wrap(apperrors.Connection, fmt.Sprintf("cannot connect to %s", host), err)
}
