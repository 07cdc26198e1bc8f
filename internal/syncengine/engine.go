// Package syncengine replays queued offline mutations against the backend.
package syncengine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/jwyliao/lifeledger/internal/errors"
	"github.com/jwyliao/lifeledger/internal/invalidate"
	"github.com/jwyliao/lifeledger/internal/logging"
	"github.com/jwyliao/lifeledger/internal/models"
	"github.com/jwyliao/lifeledger/internal/outbox"
	"github.com/jwyliao/lifeledger/internal/transport"
)

// OnSynced is the user notification hook, invoked after any drain that
// synced at least one mutation ("Synced N offline item(s)").
type OnSynced func(count int)

// Config holds the engine's collaborators.
type Config struct {
	Queue     *outbox.Queue
	Transport transport.Transport
	Notifier  *invalidate.Notifier
	OnSynced  OnSynced // optional
}

// Engine orchestrates drain cycles over the offline queue. A drain is
// one strictly sequential pass: one outbound request at a time, in
// enqueue order, with every per-mutation outcome resolved locally.
type Engine struct {
	queue     *outbox.Queue
	transport transport.Transport
	notifier  *invalidate.Notifier
	onSynced  OnSynced

	draining  atomic.Bool
	lastDrain atomic.Pointer[DrainResult]

	log *logrus.Entry
}

// DrainResult summarizes one drain cycle.
type DrainResult struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Attempted int
	Synced    int
	Retried   int
	Evicted   int
	Domains   []models.Entity
}

// NewEngine creates an Engine from its collaborators.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		queue:     cfg.Queue,
		transport: cfg.Transport,
		notifier:  cfg.Notifier,
		onSynced:  cfg.OnSynced,
		log:       logging.WithComponent("syncengine"),
	}
}

// DrainTrigger delivers the connectivity-restored event that schedules
// a drain. Satisfied by *connectivity.Monitor.
type DrainTrigger interface {
	OnBecomeOnline(callback func())
}

// Start arms the engine: every debounced offline-to-online transition
// triggers one drain. Mutations that remain queued after a drain wait
// for the next trigger; there is no in-process retry loop.
func (e *Engine) Start(ctx context.Context, trigger DrainTrigger) {
	trigger.OnBecomeOnline(func() {
		if _, err := e.Drain(ctx); err != nil && !apperrors.Is(err, apperrors.ErrSyncInProgress) {
			e.log.WithError(err).Error("connectivity-triggered drain failed")
		}
	})
}

// LastDrain returns the result of the most recent completed drain, or
// nil if none has run.
func (e *Engine) LastDrain() *DrainResult {
	return e.lastDrain.Load()
}

// Drain performs one full sequential pass over the current queue
// snapshot. Calling Drain while a drain is running is a no-op and
// returns ErrSyncInProgress.
//
// Per mutation: success removes it and records its domain; failure is
// handed to the retry policy, which either evicts it silently or
// persists an incremented retry count. One failure never aborts the
// rest of the pass. After the pass the notifier is told the distinct
// set of synced domains, once.
func (e *Engine) Drain(ctx context.Context) (*DrainResult, error) {
	if !e.draining.CompareAndSwap(false, true) {
		return nil, apperrors.New(apperrors.ErrSyncInProgress, "drain already in progress")
	}
	defer e.draining.Store(false)

	result := &DrainResult{StartTime: time.Now()}
	defer func() {
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)
		e.lastDrain.Store(result)
	}()

	pending, err := e.queue.ReadAll()
	if err != nil {
		return result, apperrors.Wrap(apperrors.ErrStorage, "failed to snapshot queue", err)
	}
	if len(pending) == 0 {
		return result, nil
	}

	e.log.WithFields(logrus.Fields{"pending": len(pending)}).Info("drain started")

	seen := make(map[models.Entity]struct{})

	for i := range pending {
		// A cancelled context stops the pass early; untouched
		// mutations stay queued as-is for the next trigger.
		if ctx.Err() != nil {
			e.log.WithError(ctx.Err()).Warn("drain interrupted")
			break
		}

		m := pending[i]
		result.Attempted++

		outcome := e.submit(ctx, &m)

		switch outbox.Decide(&m, outcome) {
		case outbox.Ack:
			if err := e.queue.Remove(m.ID); err != nil {
				e.log.WithError(err).WithFields(logrus.Fields{"id": m.ID}).
					Error("failed to remove synced mutation")
				continue
			}
			result.Synced++
			if _, ok := seen[m.Entity]; !ok {
				seen[m.Entity] = struct{}{}
				result.Domains = append(result.Domains, m.Entity)
			}

		case outbox.Evict:
			// Retry ceiling reached. Eviction is silent: the domain is
			// not reported synced and no user notification fires.
			if err := e.queue.Remove(m.ID); err != nil {
				e.log.WithError(err).WithFields(logrus.Fields{"id": m.ID}).
					Error("failed to evict mutation")
				continue
			}
			result.Evicted++
			e.log.WithFields(logrus.Fields{
				"id":     m.ID,
				"type":   m.Type,
				"entity": m.Entity,
			}).Warn("mutation evicted after retry ceiling")

		case outbox.Retry:
			m.RetryCount++
			if err := e.queue.Replace(&m); err != nil {
				e.log.WithError(err).WithFields(logrus.Fields{"id": m.ID}).
					Error("failed to persist retry count")
				continue
			}
			result.Retried++
		}
	}

	if len(result.Domains) > 0 {
		e.notifier.Notify(result.Domains)
	}
	if result.Synced > 0 && e.onSynced != nil {
		e.onSynced(result.Synced)
	}

	e.log.WithFields(logrus.Fields{
		"attempted": result.Attempted,
		"synced":    result.Synced,
		"retried":   result.Retried,
		"evicted":   result.Evicted,
	}).Info("drain finished")

	return result, nil
}

// submit translates one mutation into its outbound request and awaits
// the outcome. This is the drain loop's only suspension point; the next
// mutation is never started before this one resolves.
func (e *Engine) submit(ctx context.Context, m *models.PendingMutation) outbox.Outcome {
	method, path, err := m.Request()
	if err != nil {
		// A persisted mutation from an older build can carry an entity
		// this build no longer knows. It can never succeed, so it runs
		// through the ordinary failure path until evicted.
		e.log.WithError(err).WithFields(logrus.Fields{"id": m.ID}).
			Warn("mutation cannot be translated into a request")
		return outbox.Outcome{Err: err}
	}

	var body []byte
	if m.Type != models.MutationDelete {
		body = m.Data
	}

	resp, err := e.transport.Send(ctx, method, path, body)
	if err != nil {
		return outbox.Outcome{Err: err}
	}

	// A backend rejection (validation-class status) is treated exactly
	// like a transient failure and retried up to the same ceiling.
	return outbox.Outcome{Success: resp.OK(), Status: resp.Status}
}
