package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeCache struct{ enabled, healthy bool }

func (f fakeCache) Enabled() bool                  { return f.enabled }
func (f fakeCache) IsHealthy(context.Context) bool { return f.healthy }

func TestCheckBasic(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		db       error
		cache    CacheProbe
		want     string
		cacheSts string
	}{
		{"db up, no cache", nil, nil, StatusHealthy, StatusDisabled},
		{"db up, cache disabled", nil, fakeCache{}, StatusHealthy, StatusDisabled},
		{"db up, cache up", nil, fakeCache{enabled: true, healthy: true}, StatusHealthy, StatusHealthy},
		{"db up, cache down", nil, fakeCache{enabled: true}, StatusUnhealthy, StatusUnhealthy},
		{"db down", errors.New("refused"), nil, StatusUnhealthy, StatusDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := NewHealthChecker(fakePinger{err: tt.db}, tt.cache).CheckBasic(ctx)
			assert.Equal(t, tt.want, status.Status)
			assert.Equal(t, tt.cacheSts, status.Cache.Status)
		})
	}
}

func TestCheckDetailedIncludesBasic(t *testing.T) {
	status := NewHealthChecker(fakePinger{}, nil).CheckDetailed(context.Background())
	assert.Equal(t, StatusHealthy, status.Status)
	assert.Positive(t, status.Goroutines)
	assert.NotEmpty(t, status.Uptime)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 GB", formatBytes(2*1024*1024*1024))
}
