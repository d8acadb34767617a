package paging

import (
	"net/http/httptest"
	"testing"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		target string
		want   int64
	}{
		{"/centers", PageSize},
		{"/centers?limit=10", 10},
		{"/centers?limit=0", PageSize},
		{"/centers?limit=-3", PageSize},
		{"/centers?limit=abc", PageSize},
		{"/centers?limit=100000", MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.target, nil)
			if got := ParseLimit(r); got != tt.want {
				t.Errorf("ParseLimit(%q) = %d, want %d", tt.target, got, tt.want)
			}
		})
	}
}
