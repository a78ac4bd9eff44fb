package geocode

import (
	"context"
	"testing"
	"time"

	"triplog/internal/models"
)

type mockClient struct {
	calls          int
	placeDetailsFn func(ctx context.Context, placeID string) (*Result, error)
}

func (m *mockClient) PlaceDetails(ctx context.Context, placeID string) (*Result, error) {
	m.calls++
	return m.placeDetailsFn(ctx, placeID)
}

func newTestResolver(client Client, store Store) *Resolver {
	r := NewResolver(client, store, 3, time.Millisecond)
	r.politeness = 0
	return r
}

func TestResolveMemoizes(t *testing.T) {
	client := &mockClient{
		placeDetailsFn: func(_ context.Context, placeID string) (*Result, error) {
			return &Result{Address: "100 Queen St W, Toronto, ON"}, nil
		},
	}
	r := newTestResolver(client, NewMemoryStore())

	first, err := r.Resolve(context.Background(), "place-1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Resolve(context.Background(), "place-1")
	if err != nil {
		t.Fatal(err)
	}

	if client.calls != 1 {
		t.Errorf("expected exactly 1 external call, got %d", client.calls)
	}
	if first.Address != second.Address || second.Address != "100 Queen St W, Toronto, ON" {
		t.Errorf("cache returned different addresses: %q vs %q", first.Address, second.Address)
	}
}

func TestResolveRetriesTransientFailures(t *testing.T) {
	client := &mockClient{}
	client.placeDetailsFn = func(_ context.Context, placeID string) (*Result, error) {
		if client.calls < 3 {
			return nil, &StatusError{Status: "OVER_QUERY_LIMIT", Transient: true}
		}
		return &Result{Address: "5 King St, Guelph, ON"}, nil
	}
	r := newTestResolver(client, NewMemoryStore())

	place, err := r.Resolve(context.Background(), "place-1")
	if err != nil {
		t.Fatal(err)
	}

	if client.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", client.calls)
	}
	if !place.Resolved || place.Address != "5 King St, Guelph, ON" {
		t.Errorf("retry should eventually succeed: %+v", place)
	}
}

func TestResolveCachesUnresolvedAfterExhaustion(t *testing.T) {
	client := &mockClient{
		placeDetailsFn: func(_ context.Context, placeID string) (*Result, error) {
			return nil, &StatusError{Status: "OVER_QUERY_LIMIT", Transient: true}
		},
	}
	r := newTestResolver(client, NewMemoryStore())

	place, err := r.Resolve(context.Background(), "place-1")
	if err != nil {
		t.Fatal(err)
	}
	if place.Resolved || place.Address != models.AddressUnresolved {
		t.Errorf("exhausted retries should yield the placeholder, got %+v", place)
	}
	if client.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", client.calls)
	}

	// The failure is cached: no further external calls for this ID.
	if _, err := r.Resolve(context.Background(), "place-1"); err != nil {
		t.Fatal(err)
	}
	if client.calls != 3 {
		t.Errorf("unresolved result was not cached, calls=%d", client.calls)
	}
}

func TestResolvePermanentFailureNotRetried(t *testing.T) {
	client := &mockClient{
		placeDetailsFn: func(_ context.Context, placeID string) (*Result, error) {
			return nil, &StatusError{Status: "NOT_FOUND"}
		},
	}
	r := newTestResolver(client, NewMemoryStore())

	place, err := r.Resolve(context.Background(), "gone")
	if err != nil {
		t.Fatal(err)
	}
	if place.Resolved {
		t.Error("permanent failure should yield the placeholder")
	}
	if client.calls != 1 {
		t.Errorf("permanent failures must not be retried, calls=%d", client.calls)
	}
}

func TestResolveEmptyPlaceID(t *testing.T) {
	client := &mockClient{
		placeDetailsFn: func(_ context.Context, placeID string) (*Result, error) {
			t.Fatal("external call for empty place ID")
			return nil, nil
		},
	}
	r := newTestResolver(client, NewMemoryStore())

	place, err := r.Resolve(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if place.Resolved || place.Address != models.AddressUnresolved {
		t.Errorf("empty ID should resolve to the placeholder, got %+v", place)
	}
}
