package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes the services translate into client errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var (
	// ErrNotFound aliases gorm.ErrRecordNotFound so services need not import gorm for it.
	ErrNotFound = gorm.ErrRecordNotFound
	// ErrDuplicate wraps unique-constraint violations.
	ErrDuplicate = errors.New("duplicate key")
	// ErrReferenced wraps foreign-key violations.
	ErrReferenced = errors.New("row is referenced")
)

// Classify maps driver errors onto ErrDuplicate / ErrReferenced, keeping the original
// error in the chain. Other errors are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return errors.Join(ErrDuplicate, err)
		case pgForeignKeyViolation:
			return errors.Join(ErrReferenced, err)
		}
	}
	return err
}

// IsNotFound reports whether err is a missing-row error.
func IsNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

func paginate(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return (page - 1) * limit, limit
}
