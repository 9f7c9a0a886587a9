package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgStringTooLong       = "22001"
)

// mapWriteError turns constraint violations raised by Postgres into domain errors.
// Anything else is returned unchanged.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	details := map[string]any{"constraint": pgErr.ConstraintName}
	switch pgErr.Code {
	case pgUniqueViolation:
		field := uniqueField(pgErr.ConstraintName)
		details["field"] = field
		return apperrors.NewConflict(field+" already in use", details)
	case pgForeignKeyViolation:
		return apperrors.NewValidationError("referenced record does not exist", details)
	case pgCheckViolation:
		return apperrors.NewValidationError("value violates constraint", details)
	case pgStringTooLong:
		return apperrors.NewValidationError("value too long", details)
	}
	return err
}

// uniqueIndexFields names the column behind unique indexes that do not follow
// the default naming.
var uniqueIndexFields = map[string]string{
	"users_email_lower_key": "email",
}

// uniqueField extracts the column from Postgres' default "<table>_<column>_key" names.
func uniqueField(constraint string) string {
	if field, ok := uniqueIndexFields[constraint]; ok {
		return field
	}
	name := strings.TrimSuffix(constraint, "_key")
	if i := strings.Index(name, "_"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "value"
	}
	return name
}
