package postgres

import (
	"errors"

	"github.com/lib/pq"
)

// PostgreSQL error codes the repositories translate into domain errors.
const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
	codeExclusionViolation  = "23P01"
)

// Foreign keys of the bookings table, as named by Postgres for inline REFERENCES.
const (
	fkBookingRoom        = "bookings_room_id_fkey"
	fkBookingPrimaryUser = "bookings_primary_user_id_fkey"
)

// pqConstraint returns the violated constraint of err when it is a *pq.Error.
func pqConstraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

// pqCode returns the SQLSTATE of err when it is a *pq.Error.
func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pqCode(err) == codeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pqCode(err) == codeForeignKeyViolation
}
