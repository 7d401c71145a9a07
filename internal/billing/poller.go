package billing

import (
	"context"
	"log"
	"sync"
	"time"
)

// PollResult is the gateway's answer to a status check.
type PollResult int

const (
	// PollResultPending means the link is still open and unpaid.
	PollResultPending PollResult = iota
	// PollResultPaid is the terminal success state.
	PollResultPaid
	// PollResultClosed means the gateway reports the link denied, expired or
	// cancelled; no payment will arrive on it.
	PollResultClosed
)

// PollerState is the lifecycle of one polling run.
type PollerState string

const (
	PollerIdle    PollerState = "IDLE"
	PollerPolling PollerState = "POLLING"
	PollerSuccess PollerState = "SUCCESS"
	PollerExpired PollerState = "EXPIRED"
)

// CheckFunc asks the gateway for the current status of a payment reference.
type CheckFunc func(ctx context.Context, referenceID string) (PollResult, error)

// NoSuccessDelay disables the completion grace delay so the success callback
// fires as soon as the gateway reports the reference paid. Tests use it.
const NoSuccessDelay time.Duration = -1

// PollerConfig tunes a Poller. Zero values fall back to the production
// defaults: 5s interval, 120 attempts (~10 minutes), 1.5s completion delay.
type PollerConfig struct {
	Interval    time.Duration
	MaxAttempts int

	// SuccessDelay postpones the success callback after a paid status. Zero
	// selects the 1.5s default; NoSuccessDelay fires immediately.
	SuccessDelay time.Duration

	// OnSuccess runs exactly once per run, SuccessDelay after the gateway
	// reports the reference paid.
	OnSuccess func(referenceID string)
	// OnExpired runs when the attempt budget is exhausted or the gateway
	// closes the link.
	OnExpired func(referenceID string)
}

// Poller watches a gateway payment reference until it settles, expires or is
// stopped. At most one polling run is active per Poller: Start cancels any
// prior run before beginning, and Stop is safe to call at any time, including
// on teardown.
//
// Transient check errors are logged and swallowed; only attempt exhaustion or
// a terminal gateway status ends a run.
type Poller struct {
	check        CheckFunc
	interval     time.Duration
	maxAttempts  int
	successDelay time.Duration
	onSuccess    func(string)
	onExpired    func(string)

	mu       sync.Mutex
	state    PollerState
	attempts int
	gen      int // bumped on every Start/Stop; stale runs see a mismatch and exit
	cancel   context.CancelFunc
}

// NewPoller creates an idle poller around the given status check.
func NewPoller(check CheckFunc, cfg PollerConfig) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 120
	}
	if cfg.SuccessDelay < 0 {
		cfg.SuccessDelay = 0
	} else if cfg.SuccessDelay == 0 {
		cfg.SuccessDelay = 1500 * time.Millisecond
	}
	return &Poller{
		check:        check,
		interval:     cfg.Interval,
		maxAttempts:  cfg.MaxAttempts,
		successDelay: cfg.SuccessDelay,
		onSuccess:    cfg.OnSuccess,
		onExpired:    cfg.OnExpired,
		state:        PollerIdle,
	}
}

// State returns the current lifecycle state.
func (p *Poller) State() PollerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Attempts returns how many checks the current run has performed.
func (p *Poller) Attempts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts
}

// Start begins polling the given reference. Any run already in flight is
// cancelled first and the attempt counter starts from zero. The first check
// happens immediately, then every interval.
func (p *Poller) Start(referenceID string) {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.gen++
	gen := p.gen
	p.attempts = 0
	p.state = PollerPolling
	p.mu.Unlock()

	go p.run(ctx, gen, referenceID)
}

// Stop cancels any active run and resets the poller to IDLE.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.gen++
	p.state = PollerIdle
	p.attempts = 0
}

func (p *Poller) run(ctx context.Context, gen int, referenceID string) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if p.pollOnce(ctx, gen, referenceID) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// pollOnce performs a single status check. It returns true when the run is
// finished and the loop should exit.
func (p *Poller) pollOnce(ctx context.Context, gen int, referenceID string) bool {
	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return true
	}
	p.mu.Unlock()

	result, err := p.check(ctx, referenceID)
	if err != nil {
		// Transient failures never abort polling; the attempt still counts.
		log.Printf("payment poller: status check for %s failed: %v", referenceID, err)
		result = PollResultPending
	}

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return true
	}
	p.attempts++

	switch {
	case result == PollResultPaid:
		p.state = PollerSuccess
		p.finishLocked()
		p.mu.Unlock()
		if p.onSuccess != nil {
			// Give the caller's UI a beat to show the success state before the
			// completion callback navigates away.
			time.AfterFunc(p.successDelay, func() { p.onSuccess(referenceID) })
		}
		return true

	case result == PollResultClosed || p.attempts >= p.maxAttempts:
		p.state = PollerExpired
		p.finishLocked()
		p.mu.Unlock()
		if p.onExpired != nil {
			p.onExpired(referenceID)
		}
		return true
	}

	p.mu.Unlock()
	return false
}

// finishLocked tears down the run's cancel handle. Callers hold p.mu.
func (p *Poller) finishLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}
