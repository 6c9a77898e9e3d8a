package sqlstore

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

const sqliteUniquePrefix = "UNIQUE constraint failed: "

// uniqueViolation reports whether err is a unique-constraint failure and, if
// so, which column of table caused it.
//
//	PostgreSQL: constraint "users_email_key", detail "Key (email)=(a@b.c) already exists."
//	SQLite:     "UNIQUE constraint failed: users.email"
func uniqueViolation(err error, table string) (column string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return "", false
		}
		if col, found := strings.CutPrefix(pgErr.ConstraintName, table+"_"); found {
			return strings.TrimSuffix(col, "_key"), true
		}
		if _, rest, found := strings.Cut(pgErr.Detail, "Key ("); found {
			col, _, _ := strings.Cut(rest, ")")
			return col, true
		}
		return "", true
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		// Code is either the extended (2067) or the primary (19) constraint code.
		if liteErr.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
			return "", false
		}
		msg := liteErr.Error()
		idx := strings.LastIndex(msg, sqliteUniquePrefix)
		if idx < 0 {
			return "", false
		}
		// "users.email (2067)" -> "email"
		first, _, _ := strings.Cut(msg[idx+len(sqliteUniquePrefix):], ",")
		first, _, _ = strings.Cut(first, " ")
		return strings.TrimPrefix(first, table+"."), true
	}

	return "", false
}
