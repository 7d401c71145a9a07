package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"drivedesk/internal/billing"
	"drivedesk/internal/models"
)

// LinkValidity matches the poller budget: 120 checks at 5s spacing.
const LinkValidity = 10 * time.Minute

type PaymentLinkService struct {
	db      *gorm.DB
	gateway *GatewayService
}

func NewPaymentLinkService(db *gorm.DB, gateway *GatewayService) *PaymentLinkService {
	return &PaymentLinkService{db: db, gateway: gateway}
}

// SendLinkParams describes the payment link to create.
type SendLinkParams struct {
	Payment           *models.Payment
	InstallmentNumber int // 0 for full/pay-later settlement
	Amount            float64
	CustomerName      string
	CustomerPhone     string
	CustomerEmail     string
	Description       string
	CallbackURL       string

	// ForceNew cancels a pending link at the gateway instead of resuming it.
	ForceNew bool
}

// SendLinkResult is handed back to the caller for polling.
type SendLinkResult struct {
	OrderID     string
	Token       string
	RedirectURL string
	IsExisting  bool
	ExpiresAt   time.Time
}

// activeLink returns the newest active link for the payment/installment, or
// nil.
func (s *PaymentLinkService) activeLink(paymentID uint, installmentNumber int) (*models.PaymentLink, error) {
	var link models.PaymentLink
	err := s.db.Where("payment_id = ? AND installment_number = ? AND is_active = ?", paymentID, installmentNumber, true).
		Order("created_at desc").First(&link).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

func (s *PaymentLinkService) deactivate(link *models.PaymentLink) {
	link.IsActive = false
	s.db.Save(link)
}

// SendLink creates (or resumes) a gateway payment link for the given amount.
// The gateway is authoritative for settlement; locally only the link session
// row is stored.
func (s *PaymentLinkService) SendLink(ctx context.Context, params SendLinkParams) (*SendLinkResult, error) {
	payment := params.Payment
	if payment == nil {
		return nil, fmt.Errorf("payment is required")
	}
	if payment.PaymentStatus == models.PaymentStatusFullyPaid {
		return nil, fmt.Errorf("payment %d is already fully paid", payment.ID)
	}

	existing, err := s.activeLink(payment.ID, params.InstallmentNumber)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		statusResp, err := s.gateway.CheckTransaction(existing.OrderID)
		if err == nil {
			switch MapTransactionStatus(statusResp.TransactionStatus) {
			case billing.PollResultPaid:
				return nil, fmt.Errorf("payment already made on order %s", existing.OrderID)
			case billing.PollResultClosed:
				s.deactivate(existing)
			default:
				if params.ForceNew {
					s.gateway.CancelTransaction(existing.OrderID)
					s.deactivate(existing)
				} else {
					var resp snap.Response
					if err := json.Unmarshal(existing.ResponseMetadata, &resp); err == nil {
						return &SendLinkResult{
							OrderID:     existing.OrderID,
							Token:       resp.Token,
							RedirectURL: resp.RedirectURL,
							IsExisting:  true,
							ExpiresAt:   existing.ExpiresAt,
						}, nil
					}
					// Stored metadata is broken; retire the session.
					s.deactivate(existing)
				}
			}
		} else {
			// Can't verify the old link, treat it as dead.
			s.deactivate(existing)
		}
	}

	orderID := fmt.Sprintf("payment-%d-%d-%d", payment.ID, params.InstallmentNumber, time.Now().Unix())

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: int64(params.Amount),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: params.CustomerName,
			Email: params.CustomerEmail,
			Phone: params.CustomerPhone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    fmt.Sprintf("payment-%d", payment.ID),
				Name:  params.Description,
				Price: int64(params.Amount),
				Qty:   1,
			},
		},
		Expiry: &snap.ExpiryDetails{
			Unit:     "minute",
			Duration: int64(LinkValidity.Minutes()),
		},
	}
	if params.CallbackURL != "" {
		req.Callbacks = &snap.Callbacks{Finish: params.CallbackURL}
	}

	resp, err := s.gateway.CreateTransaction(req)
	if err != nil {
		return nil, err
	}

	reqBytes, _ := json.Marshal(req)
	respBytes, _ := json.Marshal(resp)
	expiresAt := time.Now().Add(LinkValidity)

	link := models.PaymentLink{
		BranchID:          payment.BranchID,
		PaymentID:         payment.ID,
		InstallmentNumber: params.InstallmentNumber,
		OrderID:           orderID,
		IsActive:          true,
		RequestMetadata:   reqBytes,
		ResponseMetadata:  respBytes,
		ExpiresAt:         expiresAt,
	}
	if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
		return nil, err
	}

	return &SendLinkResult{
		OrderID:     orderID,
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
		ExpiresAt:   expiresAt,
	}, nil
}

// CheckStatus is the poller transport: it asks the gateway for the current
// status of an order and folds it into the three-way poll result.
func (s *PaymentLinkService) CheckStatus(ctx context.Context, orderID string) (billing.PollResult, error) {
	resp, err := s.gateway.CheckTransaction(orderID)
	if err != nil {
		return billing.PollResultPending, err
	}
	return MapTransactionStatus(resp.TransactionStatus), nil
}
