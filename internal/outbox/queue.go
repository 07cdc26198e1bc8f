// Package outbox provides durable queue management for offline mutations.
package outbox

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jwyliao/lifeledger/internal/kv"
	"github.com/jwyliao/lifeledger/internal/logging"
	"github.com/jwyliao/lifeledger/internal/models"
)

// QueueKey is the key under which the pending mutation list is persisted.
const QueueKey = "sync.pending_mutations"

// Queue is the durable ordered store of pending mutations. The whole
// list is persisted as one JSON array under one key; order of insertion
// is order of processing, global FIFO across all entities.
//
// Only the sync engine and the enqueue path may mutate the queue.
type Queue struct {
	store kv.Store
	mu    sync.Mutex
	log   *logrus.Entry
}

// NewQueue creates a Queue over the given persistent store.
func NewQueue(store kv.Store) *Queue {
	return &Queue{
		store: store,
		log:   logging.WithComponent("outbox"),
	}
}

// Enqueue appends a mutation to the end of the queue and persists the
// updated list. IDs are assumed unique by construction; there is no
// dedup.
func (q *Queue) Enqueue(m *models.PendingMutation) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending := q.load()
	pending = append(pending, *m)

	if err := q.persist(pending); err != nil {
		return err
	}

	q.log.WithFields(logrus.Fields{
		"id":     m.ID,
		"type":   m.Type,
		"entity": m.Entity,
	}).Info("enqueued offline mutation")

	return nil
}

// ReadAll returns the current ordered snapshot of the queue.
func (q *Queue) ReadAll() ([]models.PendingMutation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load(), nil
}

// Remove removes exactly one entry by ID and persists the updated
// list. Removing an unknown ID is a no-op.
func (q *Queue) Remove(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending := q.load()
	for i := range pending {
		if pending[i].ID == id {
			pending = append(pending[:i], pending[i+1:]...)
			return q.persist(pending)
		}
	}
	return nil
}

// Replace persists an updated copy of an existing entry, keeping its
// position. Used to commit an incremented retry count. Replacing an
// unknown ID is a no-op.
func (q *Queue) Replace(m *models.PendingMutation) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending := q.load()
	for i := range pending {
		if pending[i].ID == m.ID {
			pending[i] = *m
			return q.persist(pending)
		}
	}
	return nil
}

// Clear empties the queue.
func (q *Queue) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.store.Remove(QueueKey)
}

// Len returns the number of pending mutations.
func (q *Queue) Len() (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.load()), nil
}

// load hydrates the pending list from the store. A missing key is an
// empty queue. A corrupt blob is also treated as an empty queue: the
// queue must never crash its caller over bad persisted data.
func (q *Queue) load() []models.PendingMutation {
	raw, found, err := q.store.Get(QueueKey)
	if err != nil {
		q.log.WithError(err).Warn("failed to read pending mutations, treating as empty")
		return nil
	}
	if !found || raw == "" {
		return nil
	}

	var pending []models.PendingMutation
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		q.log.WithError(err).Warn("pending mutations blob is corrupt, treating as empty")
		return nil
	}
	return pending
}

func (q *Queue) persist(pending []models.PendingMutation) error {
	if len(pending) == 0 {
		return q.store.Remove(QueueKey)
	}

	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to serialize pending mutations: %w", err)
	}
	return q.store.Set(QueueKey, string(data))
}
