package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NumberPrefix builds the numbering bucket for a prefix. Work and
// maintenance orders bucket per YYMM (WO-2405-, MO-2405-); jobs use a
// single global sequence (J-).
func NumberPrefix(prefix string, now time.Time) string {
	if prefix == "J" {
		return "J-"
	}
	return fmt.Sprintf("%s-%s-", prefix, now.Format("0601"))
}

// NextNumber allocates the next human-readable identifier for a column:
// the lexicographically greatest existing value under the current bucket,
// trailing digits parsed and incremented, zero-padded to width. Falls back
// to 1 when the bucket is empty or the query fails.
//
// The read-then-increment is not an atomic counter: two concurrent callers
// with no intervening insert can read the same last value and allocate the
// same number. Creation paths run this inside their insert transaction,
// narrowing but not closing that window.
func (db *DB) NextNumber(prefix, table, column string, width int) string {
	return nextNumber(db.DB, db, prefix, table, column, width)
}

func (db *DB) nextNumberTx(tx *sql.Tx, prefix, table, column string, width int) string {
	return nextNumber(tx, db, prefix, table, column, width)
}

type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func nextNumber(q querier, db *DB, prefix, table, column string, width int) string {
	bucket := NumberPrefix(prefix, time.Now())
	var last sql.NullString
	query := db.Q(fmt.Sprintf(`SELECT %s FROM %s WHERE %s LIKE ? ORDER BY %s DESC LIMIT 1`, column, table, column, column))
	q.QueryRow(query, bucket+"%").Scan(&last)

	next := 1
	if last.Valid {
		suffix := strings.TrimPrefix(last.String, bucket)
		if n, err := strconv.Atoi(suffix); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%0*d", bucket, width, next)
}
