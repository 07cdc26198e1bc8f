package syncengine

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/jwyliao/lifeledger/internal/transport"
)

// sentRequest records one outbound request for assertions.
type sentRequest struct {
	method string
	path   string
	body   []byte
}

// stubResult is one scripted transport outcome.
type stubResult struct {
	resp *transport.Response
	err  error
}

func ok() stubResult {
	return stubResult{resp: &transport.Response{Status: 200, Body: json.RawMessage(`{}`)}}
}

func created(body string) stubResult {
	return stubResult{resp: &transport.Response{Status: 201, Body: json.RawMessage(body)}}
}

func rejected(status int) stubResult {
	return stubResult{resp: &transport.Response{Status: status, Body: json.RawMessage(`{"error":"rejected"}`)}}
}

func netFail() stubResult {
	return stubResult{err: errors.New("connection refused")}
}

// fakeTransport replays scripted outcomes in order and records every
// request. With an empty script every request succeeds. An optional
// gate blocks Send until released, for re-entrancy tests.
type fakeTransport struct {
	mu       sync.Mutex
	requests []sentRequest
	script   []stubResult
	gate     chan struct{}
}

func (f *fakeTransport) Send(ctx context.Context, method, path string, body []byte) (*transport.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, sentRequest{method: method, path: path, body: body})

	next := ok()
	if len(f.script) > 0 {
		next = f.script[0]
		f.script = f.script[1:]
	}
	f.mu.Unlock()

	if f.gate != nil {
		<-f.gate
	}

	return next.resp, next.err
}

func (f *fakeTransport) sent() []sentRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentRequest, len(f.requests))
	copy(out, f.requests)
	return out
}
