// Package invalidate signals the caching layer that synced domains are stale.
package invalidate

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jwyliao/lifeledger/internal/logging"
	"github.com/jwyliao/lifeledger/internal/models"
)

// Invalidator refreshes the cached data for one domain. Implementations
// belong to the caching layer; the notifier only dispatches to them.
type Invalidator func(entity models.Entity) error

// Notifier fans a drain's synced-domain set out to registered cache
// hooks. Notification is fire-and-forget: a failing hook is logged and
// never rolls back the already-committed queue removals.
type Notifier struct {
	mu       sync.RWMutex
	hooks    map[models.Entity][]Invalidator
	catchAll []Invalidator

	log *logrus.Entry
}

// NewNotifier creates an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{
		hooks: make(map[models.Entity][]Invalidator),
		log:   logging.WithComponent("invalidate"),
	}
}

// Register adds a hook for one domain.
func (n *Notifier) Register(entity models.Entity, hook Invalidator) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.hooks[entity] = append(n.hooks[entity], hook)
}

// RegisterAll adds a hook invoked for every synced domain.
func (n *Notifier) RegisterAll(hook Invalidator) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.catchAll = append(n.catchAll, hook)
}

// Notify tells the caching layer which domains changed. Each hook runs
// once per domain in the given order.
func (n *Notifier) Notify(entities []models.Entity) {
	if len(entities) == 0 {
		return
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, entity := range entities {
		for _, hook := range n.hooks[entity] {
			n.invoke(entity, hook)
		}
		for _, hook := range n.catchAll {
			n.invoke(entity, hook)
		}
	}
}

func (n *Notifier) invoke(entity models.Entity, hook Invalidator) {
	if err := hook(entity); err != nil {
		n.log.WithFields(logrus.Fields{"entity": entity}).
			WithError(err).Warn("cache invalidation hook failed")
	}
}
