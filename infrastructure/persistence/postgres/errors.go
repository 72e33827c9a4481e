package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

const (
	codeUniqueViolation     = "23505"
	codeSerializationFailed = "40001"
)

// mapError converts pgx errors to application errors. Context errors pass
// through unchanged and pgx.ErrNoRows is left to the caller.
func mapError(err error, operation string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	if pkgerrors.IsAppError(err) {
		return err
	}
	return pkgerrors.NewStorageError(operation, err)
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != codeUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeSerializationFailed
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
