// Package connectivity tracks online/offline state and drives sync triggers.
package connectivity

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jwyliao/lifeledger/internal/logging"
)

// Signal is the external connectivity source. Implementations report
// the current state synchronously and push transitions to subscribers.
type Signal interface {
	IsOnline() bool
	Subscribe(onChange func(online bool))
}

// Monitor wraps a Signal and exposes the offline-to-online transition
// as a debounced event. Rapid flapping within the debounce window
// collapses into a single callback so a flaky link never triggers
// overlapping drains.
type Monitor struct {
	signal   Signal
	debounce time.Duration

	mu        sync.Mutex
	online    bool
	timer     *time.Timer
	callbacks []func()

	log *logrus.Entry
}

// NewMonitor creates a Monitor over the given signal. A zero debounce
// fires callbacks synchronously on the transition.
func NewMonitor(signal Signal, debounce time.Duration) *Monitor {
	m := &Monitor{
		signal:   signal,
		debounce: debounce,
		online:   signal.IsOnline(),
		log:      logging.WithComponent("connectivity"),
	}
	signal.Subscribe(m.handleChange)
	return m
}

// IsOnline reports the current connectivity state.
func (m *Monitor) IsOnline() bool {
	return m.signal.IsOnline()
}

// OnBecomeOnline registers a callback invoked once per debounced
// offline-to-online transition.
func (m *Monitor) OnBecomeOnline(callback func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

func (m *Monitor) handleChange(online bool) {
	m.mu.Lock()

	if online == m.online {
		m.mu.Unlock()
		return
	}
	m.online = online

	if !online {
		// Dropped offline inside the debounce window: the pending
		// trigger no longer reflects reality.
		if m.timer != nil {
			m.timer.Stop()
			m.timer = nil
		}
		m.mu.Unlock()
		m.log.Info("connection lost")
		return
	}

	m.log.Info("connection restored")

	if m.debounce <= 0 {
		m.mu.Unlock()
		m.fire()
		return
	}

	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.debounce, m.fire)
	m.mu.Unlock()
}

func (m *Monitor) fire() {
	m.mu.Lock()
	if !m.online {
		m.mu.Unlock()
		return
	}
	m.timer = nil
	callbacks := make([]func(), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	for _, callback := range callbacks {
		callback()
	}
}

// ManualSignal is a Signal whose state is set by the caller. The app
// shells feed it OS-level reachability events; tests drive it directly.
type ManualSignal struct {
	mu     sync.RWMutex
	online bool
	subs   []func(online bool)
}

// NewManualSignal creates a ManualSignal with the given initial state.
func NewManualSignal(online bool) *ManualSignal {
	return &ManualSignal{online: online}
}

// IsOnline reports the current state.
func (s *ManualSignal) IsOnline() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online
}

// Subscribe registers a transition callback.
func (s *ManualSignal) Subscribe(onChange func(online bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, onChange)
}

// Set changes the state and notifies subscribers on transitions.
func (s *ManualSignal) Set(online bool) {
	s.mu.Lock()
	if s.online == online {
		s.mu.Unlock()
		return
	}
	s.online = online
	subs := make([]func(bool), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub(online)
	}
}
