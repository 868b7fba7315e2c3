package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// uniqueConstraint devuelve el nombre del índice violado, o "" si no es 23505.
func uniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

func isUnique(err error) bool {
	_, ok := uniqueConstraint(err)
	return ok
}

// translate mapea not found y unique a errores de dominio; el resto pasa igual.
func translate(err, notFound, conflict error) error {
	switch {
	case err == nil:
		return nil
	case notFound != nil && isNotFound(err):
		return notFound
	case conflict != nil && isUnique(err):
		return conflict
	default:
		return err
	}
}
