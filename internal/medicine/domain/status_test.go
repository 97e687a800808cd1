package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.AddDate(1, 0, 0)
	past := now.AddDate(0, 0, -1)

	tests := []struct {
		name      string
		store     int
		dispenser int
		threshold int
		expiry    time.Time
		want      Status
	}{
		{"plenty of stock", 100, 20, 10, future, StatusAvailable},
		{"combined total at threshold", 5, 5, 10, future, StatusAvailable},
		{"combined total below threshold", 4, 5, 10, future, StatusLowStock},
		{"store empty but dispenser covers threshold", 0, 15, 10, future, StatusAvailable},
		{"nothing left", 0, 0, 10, future, StatusOutOfStock},
		{"expired beats stock level", 100, 20, 10, past, StatusExpired},
		{"expired beats empty", 0, 0, 10, past, StatusExpired},
		{"zero threshold never low", 1, 0, 0, future, StatusAvailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveStatus(tc.store, tc.dispenser, tc.threshold, tc.expiry, now)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDeriveStatusExpiryBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// A medicine expiring exactly now is not yet expired.
	assert.Equal(t, StatusAvailable, DeriveStatus(50, 0, 10, now, now))
	assert.Equal(t, StatusExpired, DeriveStatus(50, 0, 10, now.Add(-time.Second), now))
}

func TestDeriveStatusIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expiry := now.AddDate(0, 6, 0)

	first := DeriveStatus(3, 2, 10, expiry, now)
	second := DeriveStatus(3, 2, 10, expiry, now)
	assert.Equal(t, first, second)
}
