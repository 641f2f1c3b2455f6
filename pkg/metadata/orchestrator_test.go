package metadata

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name      string
	ids       []string
	searchErr error
	detailErr error
	panics    bool
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Search(_ context.Context, _ Query) ([]string, error) {
	if p.panics {
		panic("provider exploded")
	}
	if p.searchErr != nil {
		return nil, p.searchErr
	}
	return p.ids, nil
}

func (p *fakeProvider) FetchDetail(_ context.Context, id string) (*Record, error) {
	if p.detailErr != nil {
		return nil, p.detailErr
	}
	title := fmt.Sprintf("%s-%s", p.name, id)
	return &Record{Title: &title, Provider: p.name, ProviderBookID: id}, nil
}

func titles(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = *r.Title
	}
	return out
}

func TestFetchAllInterleavesRoundRobin(t *testing.T) {
	o := NewOrchestrator(
		&fakeProvider{name: "a", ids: []string{"1", "2"}},
		&fakeProvider{name: "b", ids: []string{"1"}},
		&fakeProvider{name: "c", ids: []string{"1", "2", "3"}},
	)

	records := o.FetchAll(context.Background(), Query{Title: "anything"}, nil)

	assert.Equal(t, []string{"a-1", "b-1", "c-1", "a-2", "c-2", "c-3"}, titles(records))
}

func TestFetchAllIsDeterministic(t *testing.T) {
	o := NewOrchestrator(
		&fakeProvider{name: "a", ids: []string{"1", "2"}},
		&fakeProvider{name: "b", ids: []string{"1", "2"}},
	)

	first := o.FetchAll(context.Background(), Query{Title: "anything"}, nil)
	for i := 0; i < 10; i++ {
		again := o.FetchAll(context.Background(), Query{Title: "anything"}, nil)
		require.Equal(t, titles(first), titles(again))
	}
}

func TestFetchAllFailedProviderIsIsolated(t *testing.T) {
	o := NewOrchestrator(
		&fakeProvider{name: "a", searchErr: errors.Wrap(ErrProviderUnavailable, "down")},
		&fakeProvider{name: "b", ids: []string{"1", "2"}},
	)

	records := o.FetchAll(context.Background(), Query{Title: "anything"}, nil)

	assert.Equal(t, []string{"b-1", "b-2"}, titles(records))
}

func TestFetchAllPanickingProviderIsIsolated(t *testing.T) {
	o := NewOrchestrator(
		&fakeProvider{name: "a", panics: true},
		&fakeProvider{name: "b", ids: []string{"1"}},
	)

	records := o.FetchAll(context.Background(), Query{Title: "anything"}, nil)

	assert.Equal(t, []string{"b-1"}, titles(records))
}

func TestFetchAllMissingQueryInputContributesNothing(t *testing.T) {
	o := NewOrchestrator(
		&fakeProvider{name: "a", searchErr: errors.WithStack(ErrMissingQueryInput)},
		&fakeProvider{name: "b", ids: []string{"1"}},
	)

	records := o.FetchAll(context.Background(), Query{}, nil)

	assert.Equal(t, []string{"b-1"}, titles(records))
}

func TestFetchAllRequestedSubsetKeepsDeclarationOrder(t *testing.T) {
	o := NewOrchestrator(
		&fakeProvider{name: "a", ids: []string{"1"}},
		&fakeProvider{name: "b", ids: []string{"1"}},
		&fakeProvider{name: "c", ids: []string{"1"}},
	)

	// Request order must not change the interleave order.
	records := o.FetchAll(context.Background(), Query{Title: "anything"}, []string{"c", "a"})

	assert.Equal(t, []string{"a-1", "c-1"}, titles(records))
}

func TestFetchAllCapsDetailFetches(t *testing.T) {
	o := NewOrchestrator(
		&fakeProvider{name: "a", ids: []string{"1", "2", "3", "4", "5"}},
	)

	records := o.FetchAll(context.Background(), Query{Title: "anything"}, nil)

	assert.Len(t, records, detailFetchLimit)
}

func TestFetchTop(t *testing.T) {
	o := NewOrchestrator(
		&fakeProvider{name: "a", ids: []string{"7", "8"}},
		&fakeProvider{name: "b", ids: []string{"9"}},
	)

	rec, err := o.FetchTop(context.Background(), Query{Title: "anything"}, "b")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "b-9", *rec.Title)
	assert.Equal(t, "b", rec.Provider)
}

func TestFetchTopUnknownProvider(t *testing.T) {
	o := NewOrchestrator(&fakeProvider{name: "a"})

	_, err := o.FetchTop(context.Background(), Query{Title: "anything"}, "nope")
	assert.Error(t, err)
}

func TestFetchTopNoResults(t *testing.T) {
	o := NewOrchestrator(&fakeProvider{name: "a"})

	rec, err := o.FetchTop(context.Background(), Query{Title: "anything"}, "a")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestFetchTopMissingQueryInput(t *testing.T) {
	o := NewOrchestrator(&fakeProvider{name: "a", searchErr: errors.WithStack(ErrMissingQueryInput)})

	rec, err := o.FetchTop(context.Background(), Query{}, "a")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestProviders(t *testing.T) {
	o := NewOrchestrator(
		&fakeProvider{name: "a"},
		&fakeProvider{name: "b"},
	)

	assert.Equal(t, []string{"a", "b"}, o.Providers())
}
