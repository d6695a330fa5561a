package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestClassify(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "uni_proveedores_cuit"})
	assert.ErrorIs(t, Classify(dup), ErrDuplicate)
	var pgErr *pgconn.PgError
	assert.True(t, errors.As(Classify(dup), &pgErr), "cause stays reachable")

	fk := &pgconn.PgError{Code: "23503"}
	assert.ErrorIs(t, Classify(fk), ErrReferenced)

	other := errors.New("boom")
	assert.Equal(t, other, Classify(other))
	assert.NoError(t, Classify(nil))
	assert.True(t, IsNotFound(fmt.Errorf("x: %w", gorm.ErrRecordNotFound)))
}

func TestPaginate(t *testing.T) {
	off, lim := paginate(3, 20)
	assert.Equal(t, 40, off)
	assert.Equal(t, 20, lim)
	off, lim = paginate(0, 10000)
	assert.Equal(t, 0, off)
	assert.Equal(t, 100, lim)
}
