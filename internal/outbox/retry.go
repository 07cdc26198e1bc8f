package outbox

import "github.com/jwyliao/lifeledger/internal/models"

// MaxRetries is the retry ceiling. A mutation that has failed this many
// drain attempts is evicted and never tried again.
const MaxRetries = 3

// Outcome describes the result of one submit attempt for a mutation.
// A transport-level error and a backend rejection are both failures;
// they are retried identically up to the ceiling.
type Outcome struct {
	Success bool
	Status  int
	Err     error
}

// Decision is what the retry policy instructs the engine to do.
type Decision int

const (
	// Ack removes the mutation as successfully synced.
	Ack Decision = iota
	// Retry leaves the mutation queued with its retry count incremented.
	Retry
	// Evict removes the mutation permanently without a success signal.
	Evict
)

// Decide is the pure retry policy. It performs no I/O: the engine owns
// incrementing and persisting the retry count.
func Decide(m *models.PendingMutation, outcome Outcome) Decision {
	if outcome.Success {
		return Ack
	}
	if m.RetryCount+1 >= MaxRetries {
		return Evict
	}
	return Retry
}
