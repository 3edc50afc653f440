package dbutil

import (
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Rebind rewrites a '?'-placeholder query to postgres '$N' placeholders.
func Rebind(query string) string {
	return sqlx.Rebind(sqlx.DOLLAR, query)
}

func IsConflict(err error) bool {
	if pgErr, ok := err.(*pq.Error); ok {
		return pgErr.Code == "23505"
	}
	return false
}

func IsDuplicateObject(err error) bool {
	if pgErr, ok := err.(*pq.Error); ok {
		// 42P07: relation already exists. Concurrent index creation races
		// resolve here instead of failing the caller.
		return pgErr.Code == "42P07"
	}
	return false
}
