package advisor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
)

type mockAdvisor struct {
	mock.Mock
}

func (m *mockAdvisor) Advise(ctx context.Context, req Request) (*Result, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*Result)
	return result, args.Error(1)
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
	setErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	data, ok := c.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return data, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = value
	return nil
}

func sampleResult() *Result {
	over := 500.0
	return &Result{Advisory: []Advisory{{
		TaskName:          "Engine Oil",
		Status:            StatusDueBefore,
		KilometersOverdue: &over,
		Message:           "Overdue by 500 km.",
	}}}
}

func TestCached_ServesRepeatsFromCache(t *testing.T) {
	next := new(mockAdvisor)
	req := sampleRequest()
	next.On("Advise", mock.Anything, req).Return(sampleResult(), nil).Once()
	cache := newMemoryCache()

	cached := NewCached(next, cache, time.Hour, clockz.NewFakeClock())

	first, err := cached.Advise(context.Background(), req)
	require.NoError(t, err)
	second, err := cached.Advise(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, cache.entries, 1)
	next.AssertExpectations(t)
}

func TestCached_DifferentRequestsMiss(t *testing.T) {
	next := new(mockAdvisor)
	a := sampleRequest()
	b := sampleRequest()
	b.Destination = "Pokhara"
	next.On("Advise", mock.Anything, a).Return(sampleResult(), nil).Once()
	next.On("Advise", mock.Anything, b).Return(&Result{Advisory: []Advisory{}}, nil).Once()

	cached := NewCached(next, newMemoryCache(), time.Hour, clockz.NewFakeClock())

	_, err := cached.Advise(context.Background(), a)
	require.NoError(t, err)
	result, err := cached.Advise(context.Background(), b)
	require.NoError(t, err)

	assert.Empty(t, result.Advisory)
	next.AssertExpectations(t)
}

func TestCached_NewDayMisses(t *testing.T) {
	next := new(mockAdvisor)
	req := sampleRequest()
	next.On("Advise", mock.Anything, req).Return(sampleResult(), nil).Twice()
	clock := clockz.NewFakeClock()

	cached := NewCached(next, newMemoryCache(), 72*time.Hour, clock)

	_, err := cached.Advise(context.Background(), req)
	require.NoError(t, err)
	clock.Advance(24 * time.Hour)
	_, err = cached.Advise(context.Background(), req)
	require.NoError(t, err)

	next.AssertExpectations(t)
}

func TestCached_FailuresAreNotStored(t *testing.T) {
	next := new(mockAdvisor)
	req := sampleRequest()
	next.On("Advise", mock.Anything, req).Return(nil, ErrAdvisoryFailed).Twice()
	cache := newMemoryCache()

	cached := NewCached(next, cache, time.Hour, clockz.NewFakeClock())

	for i := 0; i < 2; i++ {
		result, err := cached.Advise(context.Background(), req)
		assert.ErrorIs(t, err, ErrAdvisoryFailed)
		assert.Nil(t, result)
	}
	assert.Empty(t, cache.entries)
	next.AssertExpectations(t)
}

func TestCached_CacheErrorsFallThrough(t *testing.T) {
	next := new(mockAdvisor)
	req := sampleRequest()
	next.On("Advise", mock.Anything, req).Return(sampleResult(), nil).Once()
	cache := newMemoryCache()
	cache.getErr = errors.New("connection refused")
	cache.setErr = errors.New("connection refused")

	cached := NewCached(next, cache, time.Hour, clockz.NewFakeClock())
	result, err := cached.Advise(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, sampleResult(), result)
	next.AssertExpectations(t)
}

func TestCached_WrapsLocal(t *testing.T) {
	clock := clockz.NewFakeClock()
	cache := newMemoryCache()
	cached := NewCached(NewLocal(clock), cache, time.Hour, clock)
	req := NewRequest("Mustang", clock.Now(), 500, 0, 7000, []Task{kmTask("Engine Oil", 3000, 5000)})

	result, err := cached.Advise(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, result.Advisory, 1)
	assert.Equal(t, StatusDueDuring, result.Advisory[0].Status)
	assert.Len(t, cache.entries, 1)
}
