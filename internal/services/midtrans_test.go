package services

import (
	"testing"

	"drivedesk/internal/billing"
)

func TestMapTransactionStatus(t *testing.T) {
	tests := []struct {
		status string
		want   billing.PollResult
	}{
		{"settlement", billing.PollResultPaid},
		{"capture", billing.PollResultPaid},
		{"deny", billing.PollResultClosed},
		{"expire", billing.PollResultClosed},
		{"cancel", billing.PollResultClosed},
		{"failure", billing.PollResultClosed},
		{"pending", billing.PollResultPending},
		{"authorize", billing.PollResultPending},
		{"", billing.PollResultPending},
	}

	for _, tt := range tests {
		if got := MapTransactionStatus(tt.status); got != tt.want {
			t.Errorf("MapTransactionStatus(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
