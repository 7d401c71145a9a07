package services

import (
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"

	"drivedesk/internal/billing"
	"drivedesk/internal/config"
)

// GatewayService is the narrow interface to the payment gateway. The gateway
// owns the payment state machine; this client only creates links, checks
// status and cancels.
type GatewayService struct {
	SnapClient snap.Client
	CoreClient coreapi.Client
}

// NewGatewayService configures the gateway clients from environment config.
func NewGatewayService(cfg *config.Config) *GatewayService {
	env := midtrans.Sandbox
	if cfg.MidtransIsProduction {
		env = midtrans.Production
	}

	var s snap.Client
	s.New(cfg.MidtransServerKey, env)

	var c coreapi.Client
	c.New(cfg.MidtransServerKey, env)

	midtrans.ServerKey = cfg.MidtransServerKey
	midtrans.ClientKey = cfg.MidtransClientKey
	midtrans.Environment = env

	return &GatewayService{SnapClient: s, CoreClient: c}
}

// CreateTransaction creates a payment link/QR session and returns the gateway
// response with redirect URL and token.
func (s *GatewayService) CreateTransaction(param *snap.Request) (*snap.Response, error) {
	resp, err := s.SnapClient.CreateTransaction(param)
	if err != nil {
		return nil, fmt.Errorf("gateway create transaction: %v", err)
	}
	return resp, nil
}

// CheckTransaction fetches the gateway-side status of an order.
func (s *GatewayService) CheckTransaction(orderID string) (*coreapi.TransactionStatusResponse, error) {
	resp, err := s.CoreClient.CheckTransaction(orderID)
	if err != nil {
		return nil, fmt.Errorf("gateway check transaction: %v", err)
	}
	return resp, nil
}

// CancelTransaction voids a pending order at the gateway.
func (s *GatewayService) CancelTransaction(orderID string) {
	// Best effort; a failed cancel leaves the link to expire on its own.
	_, _ = s.CoreClient.CancelTransaction(orderID)
}

// MapTransactionStatus folds the gateway's status vocabulary into the poller's
// three-way result.
func MapTransactionStatus(transactionStatus string) billing.PollResult {
	switch transactionStatus {
	case "settlement", "capture":
		return billing.PollResultPaid
	case "deny", "expire", "cancel", "failure":
		return billing.PollResultClosed
	default:
		return billing.PollResultPending
	}
}
