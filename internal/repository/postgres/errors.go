package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func pgErrCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// IsPgDuplicateError reports a unique violation (23505), e.g. two sibling
// folders racing to the same name under one parent.
func IsPgDuplicateError(err error) bool {
	return pgErrCode(err, "23505")
}

// IsPgNoRowsError reports that a single-row query matched nothing
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsPgForeignKeyError reports a foreign key violation (23503), e.g. a link
// pointing at a folder removed by a concurrent delete.
func IsPgForeignKeyError(err error) bool {
	return pgErrCode(err, "23503")
}
