package dashboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/metric"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/require"
)

// fakeSource serves canned records per metric and counts fetches
type fakeSource struct {
	mu      sync.Mutex
	records map[metric.Kind][]metric.Record
	errs    map[metric.Kind]error
	block   map[metric.Kind]bool
	delay   map[metric.Kind]time.Duration
	calls   map[metric.Kind]int
	dims    []metric.Dimension
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		records: make(map[metric.Kind][]metric.Record),
		errs:    make(map[metric.Kind]error),
		block:   make(map[metric.Kind]bool),
		delay:   make(map[metric.Kind]time.Duration),
		calls:   make(map[metric.Kind]int),
	}
}

func (f *fakeSource) Fetch(ctx context.Context, kind metric.Kind, dimension metric.Dimension) ([]metric.Record, error) {
	f.mu.Lock()
	f.calls[kind]++
	f.dims = append(f.dims, dimension)
	records, err, block, delay := f.records[kind], f.errs[kind], f.block[kind], f.delay[kind]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (f *fakeSource) callCount(kind metric.Kind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[kind]
}

// memoryFilterRepo keeps filter payloads in memory
type memoryFilterRepo struct {
	mu       sync.Mutex
	payloads map[string][]byte
	saves    int
}

func newMemoryFilterRepo() *memoryFilterRepo {
	return &memoryFilterRepo{payloads: make(map[string][]byte)}
}

func (m *memoryFilterRepo) Load(ctx context.Context, userID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.payloads[userID]
	if !ok {
		return nil, dashboard.ErrFilterStateNotFound
	}
	return payload, nil
}

func (m *memoryFilterRepo) Save(ctx context.Context, userID string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads[userID] = payload
	m.saves++
	return nil
}

func userContext(t *testing.T, userID string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"user_id": userID,
		"type":    "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}
