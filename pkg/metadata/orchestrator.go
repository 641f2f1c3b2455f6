package metadata

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

// detailFetchLimit caps how many search results each provider resolves to a
// full record during FetchAll. Detail fetches are the expensive part of the
// pipeline and relevance drops off fast after the first few hits.
const detailFetchLimit = 3

// Orchestrator fans one metadata query out to multiple providers in parallel
// and merges their candidate lists into a single ordered sequence.
type Orchestrator struct {
	providers []Provider
	byName    map[string]Provider
}

// NewOrchestrator builds an orchestrator over the given providers. The slice
// order is the declaration order used by the round-robin interleave.
func NewOrchestrator(providers ...Provider) *Orchestrator {
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &Orchestrator{providers: providers, byName: byName}
}

// Providers returns the declared provider names in order.
func (o *Orchestrator) Providers() []string {
	names := make([]string, len(o.providers))
	for i, p := range o.providers {
		names[i] = p.Name()
	}
	return names
}

// FetchAll queries every requested provider concurrently and returns the
// interleaved candidates. A provider that fails contributes an empty list and
// a log line; one bad provider must not poison the batch. If names is empty,
// every declared provider is queried.
func (o *Orchestrator) FetchAll(ctx context.Context, q Query, names []string) []Record {
	log := logger.FromContext(ctx)

	requested := o.requestedProviders(names)
	lists := make([][]Record, len(requested))

	var wg sync.WaitGroup
	for i, p := range requested {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Error("provider panicked", logger.Data{"provider": p.Name(), "panic": r})
				}
			}()

			records, err := o.fetchFromProvider(ctx, p, q)
			if err != nil {
				log.Err(err).Warn("provider fetch failed", logger.Data{"provider": p.Name()})
				return
			}
			lists[i] = records
		}(i, p)
	}
	wg.Wait()

	return interleave(lists)
}

// FetchTop queries exactly one named provider and returns its single best
// candidate: the first search result's detail. It returns nil when the
// provider yields nothing usable.
func (o *Orchestrator) FetchTop(ctx context.Context, q Query, name string) (*Record, error) {
	p, ok := o.byName[name]
	if !ok {
		return nil, errors.Errorf("unknown metadata provider %q", name)
	}

	ids, err := p.Search(ctx, q)
	if err != nil {
		if errors.Is(err, ErrMissingQueryInput) {
			return nil, nil
		}
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	return p.FetchDetail(ctx, ids[0])
}

func (o *Orchestrator) requestedProviders(names []string) []Provider {
	if len(names) == 0 {
		return o.providers
	}
	// Preserve declaration order, not request order, so the interleave stays
	// deterministic no matter how the request lists providers.
	requested := make([]Provider, 0, len(names))
	for _, p := range o.providers {
		for _, name := range names {
			if p.Name() == name {
				requested = append(requested, p)
				break
			}
		}
	}
	return requested
}

func (o *Orchestrator) fetchFromProvider(ctx context.Context, p Provider, q Query) ([]Record, error) {
	log := logger.FromContext(ctx)

	ids, err := p.Search(ctx, q)
	if err != nil {
		if errors.Is(err, ErrMissingQueryInput) {
			// No usable search key is a local condition, not a provider
			// failure: the provider simply contributes nothing.
			return nil, nil
		}
		return nil, err
	}
	if len(ids) > detailFetchLimit {
		ids = ids[:detailFetchLimit]
	}

	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		rec, err := p.FetchDetail(ctx, id)
		if err != nil {
			log.Err(err).Warn("detail fetch failed", logger.Data{"provider": p.Name(), "provider_book_id": id})
			continue
		}
		records = append(records, *rec)
	}
	return records, nil
}

// interleave merges the per-provider lists round-robin: the i-th element of
// every list in provider-declaration order for i = 0, 1, 2, ..., skipping
// lists that have fewer than i+1 results, until all lists are exhausted. No
// provider's results dominate the front of the merged sequence just because it
// returned more candidates.
func interleave(lists [][]Record) []Record {
	total := 0
	maxLen := 0
	for _, list := range lists {
		total += len(list)
		if len(list) > maxLen {
			maxLen = len(list)
		}
	}

	merged := make([]Record, 0, total)
	for i := 0; i < maxLen; i++ {
		for _, list := range lists {
			if i < len(list) {
				merged = append(merged, list[i])
			}
		}
	}
	return merged
}
