package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/josh-kwaku/edificio/internal/domain"
)

const pqUniqueViolation = "23505"

// mapError translates driver errors into domain sentinels and prefixes the operation name.
func mapError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrDuplicate, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// checkAffected turns an UPDATE or DELETE that touched nothing into ErrNotFound.
func checkAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}
