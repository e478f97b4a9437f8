// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package driver

import (
	"strings"
	"time"

	"sqlbridge/cli/internal/dialect"
	apperrors "sqlbridge/cli/internal/errors"
	"sqlbridge/cli/internal/logging"
	"sqlbridge/cli/internal/sqlbuild"
)

// session is the state machine shared by all drivers.
type session struct {
	d        dialect.Dialect
	state    State
	last     *Error
	held     *Result
	observer Observer
}

func (s *session) Dialect() dialect.Dialect { return s.d }
func (s *session) State() State             { return s.state }
func (s *session) LastError() *Error        { return s.last }

// ready reports whether a statement may run now.
func (s *session) ready() error {
	switch s.state {
	case Disconnected:
		return apperrors.New(apperrors.Connection, "not connected")
	case ResultAvailable:
		return apperrors.New(apperrors.ResultPending, "previous result has not been freed")
	}
	return nil
}

// hold makes r the pending result until it is freed.
func (s *session) hold(r *Result) {
	s.held = r
	s.state = ResultAvailable
	r.done = func() {
		if s.held == r {
			s.held = nil
			if s.state == ResultAvailable {
				s.state = Connected
			}
		}
	}
}

// fail records err as the last error and returns it classified.
func (s *session) fail(err error, sql string) *Error {
	e := translate(s.d, err, sql)
	s.last = e
	logging.Debug("statement failed", "dialect", s.d.Name(), "code", e.Code, "kind", string(e.Kind), "error", e.Message)
	return e
}

// observe logs and reports a finished statement.
func (s *session) observe(sql string, start time.Time, err error) {
	elapsed := time.Since(start)
	verb := statementVerb(sql)
	kv := []any{"dialect", s.d.Name(), "verb", verb, "elapsed", elapsed.String()}
	if st, perr := sqlbuild.ParseDML(sql); perr == nil {
		kv = append(kv, "table", st.Table, "columns", strings.Join(st.Columns, ","))
		if st.Limit > 0 {
			kv = append(kv, "limit", st.Limit)
		}
	}
	logging.Debug(sql, kv...)
	if s.observer != nil {
		s.observer.ObserveStatement(s.d.Name(), verb, elapsed, err)
	}
}

// statementVerb is the lower-cased leading keyword, used as a metric label.
func statementVerb(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "other"
	}
	switch v := strings.ToLower(strings.TrimRight(fields[0], ";(")); v {
	case "select", "with", "values":
		return "select"
	case "insert", "update", "delete", "call", "exec", "execute", "declare", "fetch", "use",
		"create", "alter", "drop", "truncate":
		return v
	}
	return "other"
}

// noRows reports whether sql is DML or DDL that returns no rows.
func noRows(sql string) bool {
	switch statementVerb(sql) {
	case "insert", "update", "delete":
		return !strings.Contains(strings.ToLower(sql), " returning ")
	case "create", "alter", "drop", "truncate":
		return true
	}
	return false
}
