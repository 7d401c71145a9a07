package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGetOrSetNilCacheCallsThrough(t *testing.T) {
	ctx := context.Background()

	calls := 0
	fn := func() (int64, error) {
		calls++
		return 42, nil
	}

	// Without a cache every call hits the loader; callers never branch on nil.
	for i := 0; i < 3; i++ {
		got, err := GetOrSet[int64](nil, ctx, "branch:1:notifications:unread", time.Minute, fn)
		if err != nil {
			t.Fatalf("GetOrSet() error: %v", err)
		}
		if got != 42 {
			t.Errorf("GetOrSet() = %d; want 42", got)
		}
	}
	if calls != 3 {
		t.Errorf("loader called %d times; want 3", calls)
	}
}

func TestGetOrSetNilCachePropagatesError(t *testing.T) {
	wantErr := errors.New("count failed")
	_, err := GetOrSet[int64](nil, context.Background(), "k", time.Minute, func() (int64, error) {
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("GetOrSet() error = %v; want %v", err, wantErr)
	}
}
