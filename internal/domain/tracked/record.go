// internal/domain/tracked/record.go
package tracked

import (
	"database/sql"
	"slices"
)

// Kind identifies the collection a tracked record was loaded from.
type Kind string

const (
	KindDocument     Kind = "document"      // documents.expiry_date
	KindProcess      Kind = "process"       // process_schedules.due_date
	KindCoexContract Kind = "coex_contract" // coex_contracts.end_date
	KindSubscription Kind = "subscription"  // subscriptions.due_date (payment status)
)

// Kinds lists every scannable deadline collection.
var Kinds = []Kind{KindDocument, KindProcess, KindCoexContract, KindSubscription}

func (k Kind) Valid() bool {
	return slices.Contains(Kinds, k)
}

// closedStatuses are terminal states; records in them no longer have a live deadline.
var closedStatuses = map[Kind][]string{
	KindDocument:     {"archived", "replaced"},
	KindProcess:      {"completed", "cancelled"},
	KindCoexContract: {"cancelled", "renewed", "terminated"},
	KindSubscription: {"paid", "cancelled"},
}

// Record is the common projection of every deadline-bearing entity.
type Record struct {
	ID         string
	Kind       Kind
	TenantID   string
	Title      string
	Status     string
	TargetDate sql.NullTime
}

// IsClosed reports whether the record's status is terminal for its kind.
func (r *Record) IsClosed() bool {
	return slices.Contains(closedStatuses[r.Kind], r.Status)
}
