package tracking

import (
	"strconv"

	"github.com/google/uuid"
)

// IDGenerator returns a process-unique identity token.
type IDGenerator func() string

// NewUUID generates a UUID v7 string. It is the default IDGenerator.
func NewUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

// SequentialIDs returns a deterministic generator yielding prefix-1,
// prefix-2, and so on. Each call to SequentialIDs starts a new sequence.
func SequentialIDs(prefix string) IDGenerator {
	n := 0
	return func() string {
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}
