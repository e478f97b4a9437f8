// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dataservice serves data requests: it parses the request
// parameters, asks the entity's accessor for SQL, runs it on a driver and
// shapes the rows into a response.
package dataservice

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"sqlbridge/cli/internal/accessor"
	"sqlbridge/cli/internal/catalog"
	"sqlbridge/cli/internal/criteria"
	"sqlbridge/cli/internal/driver"
	"sqlbridge/cli/internal/entity"
	apperrors "sqlbridge/cli/internal/errors"
	"sqlbridge/cli/internal/logging"
	"sqlbridge/cli/internal/metrics"
	"sqlbridge/cli/internal/sqlbuild"
)

// Operations.
const (
	OpFetch  = "fetch"
	OpRead   = "read"
	OpCustom = "custom"
	OpAdd    = "add"
	OpUpdate = "update"
	OpRemove = "remove"
)

// Options configures a Service.
type Options struct {
	// Metrics, when set, records every handled request.
	Metrics *metrics.Metrics
	// DryRun renders the statements into the response without running them.
	DryRun bool
}

// Service handles requests over one driver. Like the driver, it serves one
// request at a time.
type Service struct {
	drv  driver.Driver
	opts Options
}

// New returns a service over drv, which must already be connected unless
// DryRun is set.
func New(drv driver.Driver, opts Options) *Service {
	return &Service{drv: drv, opts: opts}
}

// request is the state of one Handle call.
type request struct {
	id   string
	acc  accessor.Accessor
	rec  *entity.Record
	req  *criteria.Request
	resp *Response
}

// Handle serves one request for entityName. The returned response is never
// nil; on failure it describes the error, which is also returned.
func (s *Service) Handle(ctx context.Context, entityName string, params criteria.Params) (*Response, error) {
	id := uuid.NewString()
	start := time.Now()
	op := strings.TrimSpace(params[criteria.KeyOperation])

	resp, err := s.handle(ctx, id, entityName, params)
	if err != nil {
		var keys []string
		if e, lerr := catalog.Lookup(entityName); lerr == nil {
			keys = e.Descriptor.Keys()
		}
		resp = failure(err, keys)
		logging.Warn("request failed", "id", id, "entity", entityName, "op", op, "kind", string(apperrors.KindOf(err)), "error", err)
	} else {
		logging.Debug("request served", "id", id, "entity", entityName, "op", op, "rows", len(resp.Data), "elapsed", time.Since(start).String())
	}
	resp.RequestID = id
	if s.opts.Metrics != nil {
		s.opts.Metrics.ObserveRequest(entityName, op, len(resp.Data), err)
	}
	return resp, err
}

func (s *Service) handle(ctx context.Context, id, entityName string, params criteria.Params) (*Response, error) {
	entry, err := catalog.Lookup(entityName)
	if err != nil {
		return nil, err
	}
	rec := entity.NewRecord(entry.Descriptor)
	req, err := criteria.Parse(params, rec)
	if err != nil {
		return nil, err
	}
	r := &request{id: id, acc: entry.Accessor(s.drv.Dialect()), rec: rec, req: req}

	switch req.Operation {
	case OpFetch:
		return s.fetch(ctx, r)
	case OpRead, OpCustom:
		return s.read(ctx, r)
	case OpAdd:
		return s.add(ctx, r)
	case OpUpdate:
		return s.update(ctx, r)
	case OpRemove:
		return s.remove(ctx, r)
	}
	return nil, apperrors.Newf(apperrors.InvalidArgument, "unsupported operation %q", req.Operation)
}

func (s *Service) fetch(ctx context.Context, r *request) (*Response, error) {
	cons := r.req.Constraints
	q, err := r.acc.FetchQuery(r.rec, cons)
	if err != nil {
		return nil, err
	}
	if s.opts.DryRun {
		return dryRun(q.SQL, q.Count), nil
	}

	rows, err := s.query(ctx, q.SQL)
	if err != nil {
		return nil, err
	}
	total := cons.StartRow + len(rows)
	if cons.Paged {
		if total, err = s.count(ctx, q.Count); err != nil {
			return nil, err
		}
	}
	return success(rows, cons.StartRow, total), nil
}

// read serves a single record by key. Requests without a complete key fall
// back to a fetch.
func (s *Service) read(ctx context.Context, r *request) (*Response, error) {
	if _, err := r.rec.KeyValues(); err != nil {
		return s.fetch(ctx, r)
	}
	text, err := r.acc.ReadQuery(r.rec)
	if err != nil {
		return nil, err
	}
	if s.opts.DryRun {
		return dryRun(text), nil
	}
	rows, err := s.query(ctx, text)
	if err != nil {
		return nil, err
	}
	return success(rows, 0, len(rows)), nil
}

func (s *Service) add(ctx context.Context, r *request) (*Response, error) {
	text, err := r.acc.AddQuery(r.rec)
	if err != nil {
		return nil, err
	}
	if s.opts.DryRun {
		return dryRun(text), nil
	}
	if _, err := s.exec(ctx, text); err != nil {
		return nil, err
	}
	return s.reread(ctx, r)
}

func (s *Service) update(ctx context.Context, r *request) (*Response, error) {
	text, err := r.acc.UpdateQuery(r.rec)
	if err != nil {
		return nil, err
	}
	if s.opts.DryRun {
		return dryRun(text), nil
	}
	affected, err := s.exec(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := s.checkStale(r, text, affected); err != nil {
		return nil, err
	}
	return s.reread(ctx, r)
}

func (s *Service) remove(ctx context.Context, r *request) (*Response, error) {
	text, err := r.acc.RemoveQuery(r.rec)
	if err != nil {
		return nil, err
	}
	if s.opts.DryRun {
		return dryRun(text), nil
	}
	affected, err := s.exec(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := s.checkStale(r, text, affected); err != nil {
		return nil, err
	}
	keys := make(driver.Row)
	for _, k := range r.acc.Descriptor().Keys() {
		keys[k] = r.rec.Value(k)
	}
	return success([]driver.Row{keys}, 0, 1), nil
}

// checkStale reports a versioned UPDATE or DELETE that touched no row: the
// version the client read is gone, or the row itself is. Routine calls
// report their own conflicts.
func (s *Service) checkStale(r *request, text string, affected int64) error {
	if affected > 0 {
		return nil
	}
	if _, versioned := r.acc.Descriptor().VersionField(); !versioned {
		return nil
	}
	st, err := sqlbuild.ParseDML(text)
	if err != nil || st.Kind == sqlbuild.KindInsert {
		return nil
	}
	return apperrors.Newf(apperrors.StaleRow, "%s was changed or removed by someone else; reload and try again", r.acc.Descriptor().Name())
}

// reread returns the stored form of the record just written, with computed
// fields and the new version.
func (s *Service) reread(ctx context.Context, r *request) (*Response, error) {
	text, err := r.acc.ReadQuery(r.rec)
	if err != nil {
		return nil, err
	}
	rows, err := s.query(ctx, text)
	if err != nil {
		return nil, err
	}
	return success(rows, 0, len(rows)), nil
}

func (s *Service) query(ctx context.Context, text string) ([]driver.Row, error) {
	res, err := s.drv.Execute(ctx, text)
	if err != nil {
		return nil, err
	}
	rows := res.Rows()
	if err := res.Free(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) exec(ctx context.Context, text string) (int64, error) {
	res, err := s.drv.Execute(ctx, text)
	if err != nil {
		return 0, err
	}
	n := res.AffectedRows()
	if err := res.Free(ctx); err != nil {
		return 0, err
	}
	return n, nil
}

// count runs a COUNT query and reads its single value.
func (s *Service) count(ctx context.Context, text string) (int, error) {
	rows, err := s.query(ctx, text)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, apperrors.New(apperrors.Query, "count query returned no rows")
	}
	for _, v := range rows[0] {
		n, err := toInt(v)
		if err != nil {
			return 0, apperrors.Wrap(apperrors.Query, "cannot read row count", err)
		}
		return n, nil
	}
	return 0, apperrors.New(apperrors.Query, "count query returned no columns")
}

func dryRun(statements ...string) *Response {
	r := success(nil, 0, 0)
	r.SQL = statements
	return r
}
