// Package connectivity tests for the debounced monitor and signals.
package connectivity

import (
	"sync/atomic"
	"testing"
	"time"
)

// TestMonitor_isOnline verifies the synchronous check delegates to the signal.
func TestMonitor_isOnline(t *testing.T) {
	signal := NewManualSignal(true)
	m := NewMonitor(signal, 0)

	if !m.IsOnline() {
		t.Error("IsOnline = false, want true")
	}

	signal.Set(false)
	if m.IsOnline() {
		t.Error("IsOnline = true, want false")
	}
}

// TestMonitor_firesOncePerTransition verifies exactly one callback per
// offline-to-online transition with zero debounce.
func TestMonitor_firesOncePerTransition(t *testing.T) {
	signal := NewManualSignal(false)
	m := NewMonitor(signal, 0)

	var fired atomic.Int32
	m.OnBecomeOnline(func() { fired.Add(1) })

	signal.Set(true)
	if got := fired.Load(); got != 1 {
		t.Errorf("fired = %d after first transition, want 1", got)
	}

	// Staying online fires nothing more
	signal.Set(true)
	if got := fired.Load(); got != 1 {
		t.Errorf("fired = %d after duplicate online, want 1", got)
	}

	// A full offline/online cycle fires again
	signal.Set(false)
	signal.Set(true)
	if got := fired.Load(); got != 2 {
		t.Errorf("fired = %d after second cycle, want 2", got)
	}
}

// TestMonitor_debounceCoalescesFlapping verifies rapid flapping inside
// the window produces a single callback.
func TestMonitor_debounceCoalescesFlapping(t *testing.T) {
	signal := NewManualSignal(false)
	m := NewMonitor(signal, 30*time.Millisecond)

	var fired atomic.Int32
	m.OnBecomeOnline(func() { fired.Add(1) })

	// Flap within the window
	signal.Set(true)
	signal.Set(false)
	signal.Set(true)
	signal.Set(false)
	signal.Set(true)

	if got := fired.Load(); got != 0 {
		t.Errorf("fired = %d during the window, want 0", got)
	}

	time.Sleep(100 * time.Millisecond)

	if got := fired.Load(); got != 1 {
		t.Errorf("fired = %d after the window, want exactly 1", got)
	}
}

// TestMonitor_offlineCancelsPendingTrigger verifies dropping offline
// inside the window suppresses the callback entirely.
func TestMonitor_offlineCancelsPendingTrigger(t *testing.T) {
	signal := NewManualSignal(false)
	m := NewMonitor(signal, 30*time.Millisecond)

	var fired atomic.Int32
	m.OnBecomeOnline(func() { fired.Add(1) })

	signal.Set(true)
	signal.Set(false)

	time.Sleep(100 * time.Millisecond)

	if got := fired.Load(); got != 0 {
		t.Errorf("fired = %d, want 0 when the link dropped inside the window", got)
	}
}

// TestMonitor_multipleCallbacks verifies every registered callback runs.
func TestMonitor_multipleCallbacks(t *testing.T) {
	signal := NewManualSignal(false)
	m := NewMonitor(signal, 0)

	var first, second atomic.Int32
	m.OnBecomeOnline(func() { first.Add(1) })
	m.OnBecomeOnline(func() { second.Add(1) })

	signal.Set(true)

	if first.Load() != 1 || second.Load() != 1 {
		t.Errorf("callbacks = (%d, %d), want (1, 1)", first.Load(), second.Load())
	}
}

// TestManualSignal_noNotifyWithoutTransition verifies Set is quiet when
// the state does not change.
func TestManualSignal_noNotifyWithoutTransition(t *testing.T) {
	signal := NewManualSignal(true)

	var notified atomic.Int32
	signal.Subscribe(func(bool) { notified.Add(1) })

	signal.Set(true)
	if notified.Load() != 0 {
		t.Errorf("notified = %d, want 0 without a transition", notified.Load())
	}

	signal.Set(false)
	if notified.Load() != 1 {
		t.Errorf("notified = %d, want 1 after a transition", notified.Load())
	}
}
