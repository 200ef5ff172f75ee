package common

import (
	"sync/atomic"

	"github.com/google/uuid"
)

var sequence atomic.Uint64

// GenerateSessionID generates a unique picker session ID.
func GenerateSessionID() string {
	return uuid.New().String()
}

// NextSequence returns a process-wide monotonically increasing counter,
// starting at 1.
func NextSequence() uint64 {
	return sequence.Add(1)
}
