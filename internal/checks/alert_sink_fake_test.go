package checks

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/junkusano/famille-shift-matching-sub002/internal/repository"
)

// fakeAlertSink reproduces the store's dedup contract in memory: a
// fingerprint already live is never inserted twice.
type fakeAlertSink struct {
	mu      sync.Mutex
	live    map[string]string // fingerprint → alert_id
	inserts []repository.EnsureAlertParams
	failOn  map[string]error // fingerprint → forced error
}

func newFakeAlertSink() *fakeAlertSink {
	return &fakeAlertSink{
		live:   map[string]string{},
		failOn: map[string]error{},
	}
}

func (f *fakeAlertSink) EnsureSystemAlert(ctx context.Context, params repository.EnsureAlertParams) (repository.EnsureAlertResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if params.Fingerprint == "" {
		return repository.EnsureAlertResult{}, fmt.Errorf("fingerprint is required")
	}
	if err, ok := f.failOn[params.Fingerprint]; ok {
		return repository.EnsureAlertResult{}, err
	}
	if id, ok := f.live[params.Fingerprint]; ok {
		return repository.EnsureAlertResult{Created: false, AlertID: id}, nil
	}

	id := uuid.New().String()
	f.live[params.Fingerprint] = id
	f.inserts = append(f.inserts, params)
	return repository.EnsureAlertResult{Created: true, AlertID: id}, nil
}

// resolve simulates a human closing the alert in the portal: the
// fingerprint stops matching and a re-observed violation opens fresh.
func (f *fakeAlertSink) resolve(fingerprint string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live, fingerprint)
}
