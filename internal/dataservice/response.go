// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dataservice

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"sqlbridge/cli/internal/driver"
	apperrors "sqlbridge/cli/internal/errors"
)

// Response status codes understood by SmartClient data sources.
const (
	StatusSuccess         = 0
	StatusFailure         = -1
	StatusValidationError = -4
)

// generalErrorKey holds validation messages that belong to no single field.
const generalErrorKey = "_general"

// Response is the body of a data response.
type Response struct {
	Status    int          `json:"status"`
	StartRow  int          `json:"startRow"`
	EndRow    int          `json:"endRow"`
	TotalRows int          `json:"totalRows"`
	Data      []driver.Row `json:"data"`
	// Errors maps field names to validation messages.
	Errors map[string]string `json:"errors,omitempty"`
	// Message describes a failure that is not a validation error.
	Message   string   `json:"message,omitempty"`
	RequestID string   `json:"requestId,omitempty"`
	SQL       []string `json:"sql,omitempty"`
}

// MarshalEnvelope renders r wrapped as {"response": {...}}.
func (r *Response) MarshalEnvelope() ([]byte, error) {
	return json.Marshal(struct {
		Response *Response `json:"response"`
	}{r})
}

func success(rows []driver.Row, startRow, totalRows int) *Response {
	if rows == nil {
		rows = []driver.Row{}
	}
	return &Response{
		Status:    StatusSuccess,
		StartRow:  startRow,
		EndRow:    startRow + len(rows),
		TotalRows: totalRows,
		Data:      rows,
	}
}

// failure turns err into a response. Errors the client can fix by changing
// the record are reported as validation errors keyed by field.
func failure(err error, keys []string) *Response {
	r := &Response{Data: []driver.Row{}}
	kind := apperrors.KindOf(err)
	switch kind {
	case apperrors.DuplicateKey:
		r.Status = StatusValidationError
		r.Errors = make(map[string]string, len(keys))
		for _, k := range keys {
			r.Errors[k] = "a record with this key already exists"
		}
	case apperrors.InvalidArgument, apperrors.ForeignKey, apperrors.StaleRow,
		apperrors.MissingOperation, apperrors.MalformedCriteria:
		r.Status = StatusValidationError
		r.Errors = map[string]string{generalErrorKey: message(err)}
	default:
		r.Status = StatusFailure
		r.Message = message(err)
	}
	return r
}

// message prefers the database's own text over the wrapped chain.
func message(err error) string {
	var dbErr *driver.Error
	if errors.As(err, &dbErr) {
		return dbErr.Message
	}
	var e *apperrors.E
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// toInt reads a COUNT(*) value, which drivers return as various integer
// types or text.
func toInt(v any) (int, error) {
	switch x := v.(type) {
	case int64:
		return int(x), nil
	case int32:
		return int(x), nil
	case int:
		return x, nil
	case float64:
		return int(x), nil
	case string:
		return strconv.Atoi(x)
	}
	return 0, fmt.Errorf("unexpected count value %T", v)
}
