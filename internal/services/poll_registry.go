package services

import (
	"context"
	"log"
	"sync"

	"drivedesk/internal/billing"
	"drivedesk/internal/models"
)

// PollRegistry keeps one background poller per outstanding payment link. The
// registry is process-local; the gateway webhook remains the durable
// settlement path if the process restarts mid-poll.
type PollRegistry struct {
	links      *PaymentLinkService
	settlement *SettlementService
	onSettled  func(*models.Transaction) // optional follow-up after a poll settlement

	mu      sync.Mutex
	pollers map[string]*billing.Poller
	final   map[string]billing.PollerState // terminal outcomes of finished runs
}

func NewPollRegistry(links *PaymentLinkService, settlement *SettlementService, onSettled func(*models.Transaction)) *PollRegistry {
	return &PollRegistry{
		links:      links,
		settlement: settlement,
		onSettled:  onSettled,
		pollers:    map[string]*billing.Poller{},
		final:      map[string]billing.PollerState{},
	}
}

// Watch starts polling the order. Restarting an order already being watched
// resets its attempt budget.
func (r *PollRegistry) Watch(orderID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.final, orderID)
	p, ok := r.pollers[orderID]
	if !ok {
		p = billing.NewPoller(r.check, billing.PollerConfig{
			OnSuccess: r.onSuccess,
			OnExpired: r.onExpired,
		})
		r.pollers[orderID] = p
	}
	p.Start(orderID)
}

// Stop cancels the poller for the order, if any.
func (r *PollRegistry) Stop(orderID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.pollers[orderID]; ok {
		p.Stop()
		delete(r.pollers, orderID)
	}
	delete(r.final, orderID)
}

// State reports the poller state for the order. Finished runs keep reporting
// their terminal outcome; an order never watched reports IDLE.
func (r *PollRegistry) State(orderID string) (billing.PollerState, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state, ok := r.final[orderID]; ok {
		return state, 0
	}
	if p, ok := r.pollers[orderID]; ok {
		return p.State(), p.Attempts()
	}
	return billing.PollerIdle, 0
}

func (r *PollRegistry) check(ctx context.Context, orderID string) (billing.PollResult, error) {
	return r.links.CheckStatus(ctx, orderID)
}

func (r *PollRegistry) onSuccess(orderID string) {
	txn, err := r.settlement.SettleOrder(context.Background(), orderID)
	if err != nil {
		// Usually the webhook got there first; the ledger stays consistent
		// either way.
		log.Printf("poll registry: settle %s: %v", orderID, err)
	} else if r.onSettled != nil {
		r.onSettled(txn)
	}
	r.finish(orderID, billing.PollerSuccess)
}

func (r *PollRegistry) onExpired(orderID string) {
	log.Printf("poll registry: link %s expired unpaid", orderID)
	r.finish(orderID, billing.PollerExpired)
}

func (r *PollRegistry) finish(orderID string, state billing.PollerState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pollers, orderID)
	r.final[orderID] = state
}
