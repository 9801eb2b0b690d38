package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"summa/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Queryable is satisfied by both *pgxpool.Pool and pgx.Tx
type Queryable interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translateWriteError maps constraint violations onto domain errors
func translateWriteError(err error, cols columns) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgForeignKeyViolation:
		for _, c := range cols {
			if c.ref != "" && pgErr.ConstraintName != "" && containsColumn(pgErr.ConstraintName, c.name) {
				return &entities.NotFoundError{Resource: c.ref, Key: keyString(c.value)}
			}
		}
		return &entities.NotFoundError{Resource: pgErr.TableName, Key: pgErr.Detail}
	case pgUniqueViolation:
		if pgErr.ConstraintName == "users_username_key" {
			return &entities.ValidationError{
				Entity: "user",
				Fields: []entities.FieldError{{Field: "username", Rule: "unique"}},
			}
		}
		if strings.HasSuffix(pgErr.ConstraintName, "_pkey") {
			return fmt.Errorf("%s %s: %w", pgErr.TableName, pgErr.Detail, entities.ErrAlreadyExists)
		}
	}
	return err
}
