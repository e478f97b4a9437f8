package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

type kindedErr struct{}

func (kindedErr) Error() string   { return "duplicate" }
func (kindedErr) ErrorKind() Kind { return DuplicateKey }

func TestKindOf(t *testing.T) {
	base := stderrors.New("boom")
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain", err: base, want: Unknown},
		{name: "typed", err: New(MissingOperation, "op is required"), want: MissingOperation},
		{name: "wrapped typed", err: fmt.Errorf("ctx: %w", Wrap(MalformedCriteria, "bad json", base)), want: MalformedCriteria},
		{name: "kinded", err: fmt.Errorf("exec: %w", kindedErr{}), want: DuplicateKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := Wrap(Query, "select failed", stderrors.New("syntax error"))
	if got, want := err.Error(), "query: select failed: syntax error"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !stderrors.Is(err, err.Err) {
		t.Error("expected Unwrap to expose the wrapped error")
	}
	if got, want := Newf(InvalidArgument, "field %q", "x").Error(), `invalid_argument: field "x"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
