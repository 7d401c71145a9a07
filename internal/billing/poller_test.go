package billing

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestPollerExpiresAfterMaxAttempts(t *testing.T) {
	var checks int64
	check := func(ctx context.Context, ref string) (PollResult, error) {
		atomic.AddInt64(&checks, 1)
		return PollResultPending, nil
	}

	var expired int64
	p := NewPoller(check, PollerConfig{
		Interval:    time.Millisecond,
		MaxAttempts: 5,
		OnExpired:   func(string) { atomic.AddInt64(&expired, 1) },
	})
	defer p.Stop()

	p.Start("ref-1")
	waitFor(t, time.Second, func() bool { return p.State() == PollerExpired })

	if got := atomic.LoadInt64(&checks); got != 5 {
		t.Errorf("checks = %d; want exactly max attempts (5)", got)
	}
	if atomic.LoadInt64(&expired) != 1 {
		t.Errorf("expiry callback ran %d times; want 1", expired)
	}

	// No further network calls after expiry.
	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadInt64(&checks); got != 5 {
		t.Errorf("checks after expiry = %d; want 5", got)
	}
}

func TestPollerSuccessCallbackExactlyOnce(t *testing.T) {
	var checks int64
	check := func(ctx context.Context, ref string) (PollResult, error) {
		if atomic.AddInt64(&checks, 1) >= 3 {
			return PollResultPaid, nil
		}
		return PollResultPending, nil
	}

	var succeeded int64
	done := make(chan string, 2)
	p := NewPoller(check, PollerConfig{
		Interval:     time.Millisecond,
		MaxAttempts:  120,
		SuccessDelay: time.Millisecond,
		OnSuccess: func(ref string) {
			atomic.AddInt64(&succeeded, 1)
			done <- ref
		},
	})
	defer p.Stop()

	p.Start("ref-2")

	select {
	case ref := <-done:
		if ref != "ref-2" {
			t.Errorf("callback reference = %q; want ref-2", ref)
		}
	case <-time.After(time.Second):
		t.Fatal("success callback never fired")
	}

	if p.State() != PollerSuccess {
		t.Errorf("state = %s; want SUCCESS", p.State())
	}
	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadInt64(&succeeded); got != 1 {
		t.Errorf("success callback ran %d times; want exactly 1", got)
	}
}

func TestPollerSwallowsTransientErrors(t *testing.T) {
	var checks int64
	check := func(ctx context.Context, ref string) (PollResult, error) {
		n := atomic.AddInt64(&checks, 1)
		if n < 3 {
			return PollResultPending, errors.New("gateway timeout")
		}
		return PollResultPaid, nil
	}

	done := make(chan struct{}, 1)
	p := NewPoller(check, PollerConfig{
		Interval:     time.Millisecond,
		MaxAttempts:  120,
		SuccessDelay: time.Millisecond,
		OnSuccess:    func(string) { done <- struct{}{} },
	})
	defer p.Stop()

	p.Start("ref-3")
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller aborted on transient errors instead of continuing")
	}
}

func TestPollerStopResetsAndRestartCountsFromZero(t *testing.T) {
	var checks int64
	check := func(ctx context.Context, ref string) (PollResult, error) {
		atomic.AddInt64(&checks, 1)
		return PollResultPending, nil
	}

	p := NewPoller(check, PollerConfig{Interval: time.Millisecond, MaxAttempts: 1000})
	defer p.Stop()

	p.Start("ref-4")
	waitFor(t, time.Second, func() bool { return p.Attempts() >= 3 })

	p.Stop()
	if p.State() != PollerIdle {
		t.Errorf("state after Stop = %s; want IDLE", p.State())
	}
	if p.Attempts() != 0 {
		t.Errorf("attempts after Stop = %d; want 0", p.Attempts())
	}

	// A stopped run must not keep hitting the gateway.
	time.Sleep(10 * time.Millisecond)
	base := atomic.LoadInt64(&checks)
	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadInt64(&checks); got != base {
		t.Errorf("checks kept increasing after Stop: %d -> %d", base, got)
	}

	p.Start("ref-4")
	waitFor(t, time.Second, func() bool { return p.Attempts() >= 1 })
	p.Stop()
}

func TestPollerRestartCancelsPriorRun(t *testing.T) {
	var checks int64
	check := func(ctx context.Context, ref string) (PollResult, error) {
		atomic.AddInt64(&checks, 1)
		return PollResultPending, nil
	}

	p := NewPoller(check, PollerConfig{Interval: time.Millisecond, MaxAttempts: 1000})
	defer p.Stop()

	p.Start("old-ref")
	waitFor(t, time.Second, func() bool { return p.Attempts() >= 2 })

	p.Start("new-ref")
	// Counter restarts with the new run rather than continuing.
	waitFor(t, time.Second, func() bool { return p.Attempts() >= 1 })
	if p.State() != PollerPolling {
		t.Errorf("state = %s; want POLLING", p.State())
	}
}

func TestPollerSuccessDelayConfiguration(t *testing.T) {
	check := func(ctx context.Context, ref string) (PollResult, error) {
		return PollResultPending, nil
	}

	// Zero value selects the production default.
	p := NewPoller(check, PollerConfig{})
	if p.successDelay != 1500*time.Millisecond {
		t.Errorf("default successDelay = %s; want 1.5s", p.successDelay)
	}

	// NoSuccessDelay disables the delay entirely.
	p = NewPoller(check, PollerConfig{SuccessDelay: NoSuccessDelay})
	if p.successDelay != 0 {
		t.Errorf("successDelay with NoSuccessDelay = %s; want 0", p.successDelay)
	}

	p = NewPoller(check, PollerConfig{SuccessDelay: 50 * time.Millisecond})
	if p.successDelay != 50*time.Millisecond {
		t.Errorf("explicit successDelay = %s; want 50ms", p.successDelay)
	}
}

func TestPollerClosedLinkExpires(t *testing.T) {
	check := func(ctx context.Context, ref string) (PollResult, error) {
		return PollResultClosed, nil
	}

	expired := make(chan struct{}, 1)
	p := NewPoller(check, PollerConfig{
		Interval:    time.Millisecond,
		MaxAttempts: 120,
		OnExpired:   func(string) { expired <- struct{}{} },
	})
	defer p.Stop()

	p.Start("ref-5")
	select {
	case <-expired:
	case <-time.After(time.Second):
		t.Fatal("closed link did not expire the poller")
	}
	if p.State() != PollerExpired {
		t.Errorf("state = %s; want EXPIRED", p.State())
	}
}
