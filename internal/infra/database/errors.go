package database

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var ErrTenantNotFound = fmt.Errorf("workshop not found")
var ErrRuleNotFound = fmt.Errorf("alert rule not found")
var ErrNotificationNotFound = fmt.Errorf("notification not found")
var ErrDuplicateDedupKey = fmt.Errorf("notification with this dedup key already exists")
var ErrDuplicateMilestone = fmt.Errorf("milestone already recorded for this workshop")

const uniqueViolation = pq.ErrorCode("23505")

// isUniqueViolation reports whether err is a unique-constraint failure on the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == uniqueViolation && pqErr.Constraint == constraint
}
