package connectivity

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jwyliao/lifeledger/internal/logging"
)

// healthPath is the backend endpoint probed for reachability.
const healthPath = "/api/health"

// Prober is a Signal backed by periodic HTTP health checks against the
// backend. It is the default signal when the host platform provides no
// native reachability events.
type Prober struct {
	client   *http.Client
	url      string
	interval time.Duration

	mu        sync.RWMutex
	online    bool
	subs      []func(online bool)
	isRunning bool

	stopCh chan struct{}
	wg     sync.WaitGroup

	log *logrus.Entry
}

// NewProber creates a Prober against the backend base URL. A nil
// client falls back to a default with a short probe timeout.
func NewProber(baseURL string, client *http.Client, interval time.Duration) *Prober {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Prober{
		client:   client,
		url:      baseURL + healthPath,
		interval: interval,
		stopCh:   make(chan struct{}),
		log:      logging.WithComponent("prober"),
	}
}

// IsOnline reports the last observed state.
func (p *Prober) IsOnline() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.online
}

// Subscribe registers a transition callback.
func (p *Prober) Subscribe(onChange func(online bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, onChange)
}

// Start begins the probe loop. Starting a running prober is a no-op.
func (p *Prober) Start(ctx context.Context) {
	p.mu.Lock()
	if p.isRunning {
		p.mu.Unlock()
		return
	}
	p.isRunning = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.probeLoop(ctx)

	p.log.Info("connectivity prober started")
}

// Stop stops the probe loop and waits for it to exit.
func (p *Prober) Stop() {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return
	}
	p.isRunning = false
	p.mu.Unlock()

	close(p.stopCh)
	p.wg.Wait()

	p.log.Info("connectivity prober stopped")
}

func (p *Prober) probeLoop(ctx context.Context) {
	defer p.wg.Done()

	// First probe immediately so startup state is not a full interval stale.
	p.setOnline(p.probe(ctx))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.setOnline(p.probe(ctx))
		}
	}
}

// probe considers the backend reachable when the health endpoint
// answers at all with a non-5xx status.
func (p *Prober) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < 500
}

func (p *Prober) setOnline(online bool) {
	p.mu.Lock()
	if p.online == online {
		p.mu.Unlock()
		return
	}
	p.online = online
	subs := make([]func(bool), len(p.subs))
	copy(subs, p.subs)
	p.mu.Unlock()

	p.log.WithFields(logrus.Fields{"online": online}).Info("connectivity changed")

	for _, sub := range subs {
		sub(online)
	}
}
