package errors

import (
	"context"
	stderrs "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repos branch on
const (
	pgErrUniqueViolation      = "23505"
	pgErrNotNullViolation     = "23502"
	pgErrCheckViolation       = "23514"
	pgErrDataException        = "22000"
	pgErrInvalidTextRepr      = "22P02"
	pgErrSerializationFailure = "40001"
	pgErrDeadlockDetected     = "40P01"
	pgErrLockNotAvailable     = "55P03"
	pgErrQueryCanceled        = "57014"
	pgErrCannotConnectNow     = "57P03"
	pgErrUndefinedTable       = "42P01"
	pgErrUndefinedObject      = "42704"
)

// ExtractPgError returns the *pgconn.PgError at the root of err
func ExtractPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsSQLState reports whether err carries the given SQLSTATE
func IsSQLState(err error, code string) bool {
	pgErr, ok := ExtractPgError(err)
	return ok && pgErr.Code == code
}

// DBErrorCode maps a Postgres error to an ErrorCode; !ok means err is not a PgError
// A missing table or missing vector type means the index was never provisioned,
// which callers treat the same as an unreachable server
func DBErrorCode(err error) (ErrorCode, bool) {
	pgErr, ok := ExtractPgError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}
	switch {
	case pgErr.Code == pgErrUniqueViolation:
		return ErrorCodeDuplicateKey, true
	case pgErr.Code == pgErrNotNullViolation, pgErr.Code == pgErrCheckViolation:
		return ErrorCodeValidation, true
	case pgErr.Code == pgErrDataException, pgErr.Code == pgErrInvalidTextRepr:
		return ErrorCodeInvalidArgument, true
	case pgErr.Code == pgErrQueryCanceled:
		return ErrorCodeTimeout, true
	case pgErr.Code == pgErrUndefinedTable, pgErr.Code == pgErrUndefinedObject,
		pgErr.Code == pgErrCannotConnectNow, strings.HasPrefix(pgErr.Code, "08"):
		return ErrorCodeUnavailable, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps err with its mapped code; non-pg errors become Unavailable
// since a failed round trip without a server reply means the server was not reached
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	if cerr := FromContext(err, msg); cerr != nil {
		return cerr
	}
	if code, ok := DBErrorCode(err); ok {
		return Wrap(err, code, msg)
	}
	return Wrap(err, ErrorCodeUnavailable, msg)
}

// IsRetryable reports whether a database error is transient contention worth retrying
// Local cancellation is never retryable
func IsRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pgErr, ok := ExtractPgError(err); ok {
		switch pgErr.Code {
		case pgErrSerializationFailure, pgErrDeadlockDetected, pgErrLockNotAvailable, pgErrCannotConnectNow:
			return true
		}
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "commit unexpectedly resulted in rollback") ||
		strings.Contains(s, "deadlock detected") ||
		strings.Contains(s, "could not serialize access")
}
