package refresh

import (
	"context"
	"math/rand"
	"time"

	"github.com/folioreads/folio/pkg/metadata"
)

// ThrottlePolicy paces bulk refreshes between books. Scraped providers ban
// clients that hammer them, so the pause is per-provider.
type ThrottlePolicy interface {
	Wait(ctx context.Context, provider string)
}

// RandomDelay sleeps a random duration between Min and Max after each book,
// but only for providers that are sensitive to request rates.
type RandomDelay struct {
	Min       time.Duration
	Max       time.Duration
	Sensitive map[string]bool
}

// NewRandomDelay returns the default policy: random pauses for Goodreads only.
func NewRandomDelay(min, max time.Duration) *RandomDelay {
	return &RandomDelay{
		Min:       min,
		Max:       max,
		Sensitive: map[string]bool{metadata.ProviderGoodreads: true},
	}
}

func (d *RandomDelay) Wait(ctx context.Context, provider string) {
	if !d.Sensitive[provider] {
		return
	}

	delay := d.Min
	if d.Max > d.Min {
		delay += time.Duration(rand.Int63n(int64(d.Max - d.Min)))
	}
	if delay <= 0 {
		return
	}

	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}

// NopThrottle never waits. Tests use it.
type NopThrottle struct{}

func (NopThrottle) Wait(context.Context, string) {}
