package services

import "testing"

func TestParseOrderID(t *testing.T) {
	tests := []struct {
		name        string
		orderID     string
		wantPayment uint
		wantInst    int
		wantErr     bool
	}{
		{"full payment order", "payment-42-0-1719820800", 42, 0, false},
		{"installment order", "payment-7-2-1719820800", 7, 2, false},
		{"wrong prefix", "invoice-42-0-1719820800", 0, 0, true},
		{"missing parts", "payment-42-0", 0, 0, true},
		{"non-numeric payment id", "payment-abc-0-1719820800", 0, 0, true},
		{"non-numeric installment", "payment-42-x-1719820800", 0, 0, true},
		{"empty", "", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paymentID, inst, err := ParseOrderID(tt.orderID)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseOrderID(%q) expected error, got none", tt.orderID)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseOrderID(%q) unexpected error: %v", tt.orderID, err)
			}
			if paymentID != tt.wantPayment || inst != tt.wantInst {
				t.Errorf("ParseOrderID(%q) = (%d, %d), want (%d, %d)",
					tt.orderID, paymentID, inst, tt.wantPayment, tt.wantInst)
			}
		})
	}
}
