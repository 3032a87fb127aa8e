package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func pgErr(code string) *pgconn.PgError { return &pgconn.PgError{Code: code} }

func TestDBErrorCodeMappings(t *testing.T) {
	cases := []struct {
		code string
		want ErrorCode
	}{
		{"23505", ErrorCodeDuplicateKey},
		{"23502", ErrorCodeValidation},
		{"23514", ErrorCodeValidation},
		{"22P02", ErrorCodeInvalidArgument},
		{"57014", ErrorCodeTimeout},
		{"42P01", ErrorCodeUnavailable},
		{"42704", ErrorCodeUnavailable},
		{"57P03", ErrorCodeUnavailable},
		{"08006", ErrorCodeUnavailable},
		{"40001", ErrorCodeDB},
		{"XXXXX", ErrorCodeDB},
	}
	for _, c := range cases {
		got, ok := DBErrorCode(fmt.Errorf("wrapped: %w", pgErr(c.code)))
		if !ok || got != c.want {
			t.Fatalf("DBErrorCode(%s) = %v, %v; want %v", c.code, got, ok, c.want)
		}
	}
	if _, ok := DBErrorCode(stderrs.New("plain")); ok {
		t.Fatalf("plain error should not map")
	}
}

func TestFromPostgres(t *testing.T) {
	if FromPostgres(nil, "x") != nil {
		t.Fatalf("nil in, nil out")
	}
	if err := FromPostgres(pgErr("42P01"), "guidance: nearest"); !IsCode(err, ErrorCodeUnavailable) {
		t.Fatalf("missing table should be unavailable, got %v", CodeOf(err))
	}
	if err := FromPostgres(stderrs.New("dial tcp: refused"), "x"); !IsCode(err, ErrorCodeUnavailable) {
		t.Fatalf("transport error should be unavailable, got %v", CodeOf(err))
	}
	if err := FromPostgres(context.DeadlineExceeded, "x"); !IsCode(err, ErrorCodeTimeout) {
		t.Fatalf("deadline should be timeout, got %v", CodeOf(err))
	}
	if !IsSQLState(FromPostgres(pgErr("23505"), "x"), "23505") {
		t.Fatalf("wrapped error should keep its SQLSTATE")
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.Canceled, false},
		{fmt.Errorf("tx: %w", context.DeadlineExceeded), false},
		{pgErr("40001"), true},
		{pgErr("40P01"), true},
		{pgErr("57P03"), true},
		{pgErr("23505"), false},
		{stderrs.New("commit unexpectedly resulted in rollback"), true},
		{stderrs.New("boom"), false},
	}
	for i, c := range cases {
		if got := IsRetryable(c.err); got != c.want {
			t.Fatalf("case %d IsRetryable(%v) = %v, want %v", i, c.err, got, c.want)
		}
	}
}
