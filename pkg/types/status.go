// Lifecycle status of a change-tracked record.
package types

// Status is the lifecycle state a tracked record derives from its history.
type Status string

// Record statuses. A record starts Pristine (loaded from storage) or New
// (created in this session) and moves between states only through its
// mutating verbs.
const (
	StatusPristine Status = "pristine"
	StatusModified Status = "modified"
	StatusDeleted  Status = "deleted"
	StatusNew      Status = "new"
)

// validStatuses is the set of recognized status values.
var validStatuses = map[Status]bool{
	StatusPristine: true,
	StatusModified: true,
	StatusDeleted:  true,
	StatusNew:      true,
}

// Valid reports whether s is one of the Status constants.
func (s Status) Valid() bool {
	return validStatuses[s]
}

// IsInitial reports whether a record may be constructed in status s.
// Only Pristine and New are initial states.
func (s Status) IsInitial() bool {
	return s == StatusPristine || s == StatusNew
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}
