package syncengine

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/jwyliao/lifeledger/internal/invalidate"
	"github.com/jwyliao/lifeledger/internal/logging"
	"github.com/jwyliao/lifeledger/internal/models"
	"github.com/jwyliao/lifeledger/internal/outbox"
	"github.com/jwyliao/lifeledger/internal/transport"
)

// OnlineChecker is the synchronous connectivity check the write path
// consults before attempting a direct request.
type OnlineChecker interface {
	IsOnline() bool
}

// Writer is the app-facing write path. When the device is offline, or
// a direct attempt fails, the write becomes a pending mutation instead
// of being lost.
type Writer struct {
	queue     *outbox.Queue
	transport transport.Transport
	online    OnlineChecker
	notifier  *invalidate.Notifier

	log *logrus.Entry
}

// WriteResult reports how a write was resolved.
type WriteResult struct {
	// Queued is true when the write was staged for a later drain
	// instead of being applied directly.
	Queued   bool
	Mutation *models.PendingMutation
	Response *transport.Response // nil when queued without a network attempt
}

// NewWriter creates a Writer from its collaborators.
func NewWriter(queue *outbox.Queue, tr transport.Transport, online OnlineChecker, notifier *invalidate.Notifier) *Writer {
	return &Writer{
		queue:     queue,
		transport: tr,
		online:    online,
		notifier:  notifier,
		log:       logging.WithComponent("writer"),
	}
}

// Create submits a new record, queueing it when that is not possible.
func (w *Writer) Create(ctx context.Context, entity models.Entity, payload interface{}) (*WriteResult, error) {
	return w.write(ctx, models.MutationCreate, entity, payload)
}

// Update submits changes to an existing record. The payload must carry
// the server-assigned record ID.
func (w *Writer) Update(ctx context.Context, entity models.Entity, payload interface{}) (*WriteResult, error) {
	return w.write(ctx, models.MutationUpdate, entity, payload)
}

// Delete removes an existing record. The payload must carry the
// server-assigned record ID.
func (w *Writer) Delete(ctx context.Context, entity models.Entity, payload interface{}) (*WriteResult, error) {
	return w.write(ctx, models.MutationDelete, entity, payload)
}

func (w *Writer) write(ctx context.Context, mutType models.MutationType, entity models.Entity, payload interface{}) (*WriteResult, error) {
	data, err := models.Marshal(payload)
	if err != nil {
		return nil, err
	}

	m, err := models.NewMutation(mutType, entity, data)
	if err != nil {
		return nil, err
	}

	// Offline: enqueue immediately, no network attempt.
	if !w.online.IsOnline() {
		return w.enqueue(m, nil)
	}

	method, path, err := m.Request()
	if err != nil {
		return nil, err
	}

	var body []byte
	if mutType != models.MutationDelete {
		body = m.Data
	}

	resp, err := w.transport.Send(ctx, method, path, body)
	if err != nil {
		w.log.WithError(err).WithFields(logrus.Fields{
			"type":   mutType,
			"entity": entity,
		}).Info("direct write failed, queueing for sync")
		return w.enqueue(m, nil)
	}
	if !resp.OK() {
		w.log.WithFields(logrus.Fields{
			"type":   mutType,
			"entity": entity,
			"status": resp.Status,
		}).Info("direct write rejected, queueing for sync")
		return w.enqueue(m, resp)
	}

	// Applied directly: the cached data for this domain is stale now.
	w.notifier.Notify([]models.Entity{entity})

	return &WriteResult{Mutation: m, Response: resp}, nil
}

func (w *Writer) enqueue(m *models.PendingMutation, resp *transport.Response) (*WriteResult, error) {
	if err := w.queue.Enqueue(m); err != nil {
		return nil, err
	}
	return &WriteResult{Queued: true, Mutation: m, Response: resp}, nil
}
