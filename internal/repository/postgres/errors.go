// Package postgres implements the repositories on GORM with the Postgres driver.
package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/stackit-qa/stackit/backend/internal/apperr"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translate maps driver errors to domain errors; anything else is wrapped with op.
func translate(err error, op, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFoundf("%s not found", entity)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.AlreadyExists(entity + " already exists").WithCause(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperr.AlreadyExists(entity + " already exists").WithCause(err)
		case pgForeignKeyViolation:
			return apperr.NotFound("referenced record not found").WithCause(err)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
