package refresh

import (
	"context"
	"testing"
	"time"

	"github.com/folioreads/folio/pkg/metadata"
	"github.com/stretchr/testify/assert"
)

func TestRandomDelayOnlyThrottlesSensitiveProviders(t *testing.T) {
	d := NewRandomDelay(50*time.Millisecond, 60*time.Millisecond)

	start := time.Now()
	d.Wait(context.Background(), metadata.ProviderGoogleBooks)
	d.Wait(context.Background(), metadata.ProviderOpenLibrary)
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	start = time.Now()
	d.Wait(context.Background(), metadata.ProviderGoodreads)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestRandomDelayHonorsContextCancellation(t *testing.T) {
	d := NewRandomDelay(10*time.Second, 20*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	d.Wait(ctx, metadata.ProviderGoodreads)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNopThrottle(t *testing.T) {
	start := time.Now()
	NopThrottle{}.Wait(context.Background(), metadata.ProviderGoodreads)
	assert.Less(t, time.Since(start), 10*time.Millisecond)
}
