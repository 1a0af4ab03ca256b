package service

import (
	"testing"
	"time"

	"github.com/aumugisha-umu/seido-sub017/internal/contracts/repository"
)

func TestLeaseStatus(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour
	past := now.Add(-30 * day)
	future := now.Add(30 * day)

	tests := []struct {
		name  string
		start time.Time
		end   *time.Time
		want  string
	}{
		{"open ended, started", past, nil, StatusActive},
		{"ends in the future", past, &future, StatusActive},
		{"already ended", past, ptr(now.Add(-day)), StatusExpired},
		{"starts tomorrow", now.Add(day), nil, StatusUpcoming},
		{"ends today", past, ptr(now.Truncate(24 * time.Hour)), StatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lease := repository.Lease{StartDate: tt.start, EndDate: tt.end}
			if got := LeaseStatus(lease, now); got != tt.want {
				t.Fatalf("LeaseStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func ptr(t time.Time) *time.Time { return &t }
