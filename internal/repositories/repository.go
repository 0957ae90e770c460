package repositories

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrRecordNotFound is returned when a lookup matches no row.
var ErrRecordNotFound = errors.New("record not found")

// BatchSize bounds bulk inserts and batched scans.
const BatchSize = 500

// translate maps gorm's not-found error to ErrRecordNotFound and annotates
// everything else with the failing operation.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	return errors.Wrap(err, op)
}

// increment is a relative counter update: column = column + 1.
func increment(column string) clause.Expr {
	return gorm.Expr(column + " + 1")
}

// decrementFloor is a relative counter update that never goes below zero.
func decrementFloor(column string) clause.Expr {
	return gorm.Expr("CASE WHEN " + column + " > 0 THEN " + column + " - 1 ELSE 0 END")
}

// insertIgnoringConflicts creates value unless a unique constraint already
// holds an equivalent row. It reports whether a row was written.
func insertIgnoringConflicts(tx *gorm.DB, value interface{}) (bool, error) {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(value)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// applyCursor restricts a timeline query to rows strictly older than before.
func applyCursor(q *gorm.DB, column string, before *time.Time) *gorm.DB {
	if before == nil {
		return q
	}
	return q.Where(column+" < ?", before.UTC())
}
