package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrDuplicate is returned when an insert hits a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

const (
	uniqueViolation           = pq.ErrorCode("23505")
	invalidTextRepresentation = pq.ErrorCode("22P02")
)

// translate maps driver errors onto repository sentinels.
func translate(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

// malformedID reports whether Postgres refused a parameter it could not cast,
// which for uuid columns means the id cannot name any row.
func malformedID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == invalidTextRepresentation
}

// lookupError normalises a failed single-row read. Missing rows and
// unparseable ids both come back as sql.ErrNoRows.
func lookupError(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) || malformedID(err) {
		return sql.ErrNoRows
	}
	return fmt.Errorf("%s: %w", op, err)
}

func pageBounds(page, size int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return size, (page - 1) * size
}
