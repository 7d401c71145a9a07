package services

import "testing"

func TestHasMore(t *testing.T) {
	tests := []struct {
		name   string
		offset int
		limit  int
		total  int64
		want   bool
	}{
		{"empty feed", 0, 20, 0, false},
		{"first page of many", 0, 20, 45, true},
		{"middle page", 20, 20, 45, true},
		{"last partial page", 40, 20, 45, false},
		{"exact boundary", 20, 20, 40, false},
		{"one past boundary", 20, 20, 41, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasMore(tt.offset, tt.limit, tt.total); got != tt.want {
				t.Errorf("HasMore(%d, %d, %d) = %v; want %v", tt.offset, tt.limit, tt.total, got, tt.want)
			}
		})
	}
}
