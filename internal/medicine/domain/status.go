package domain

import "time"

// DeriveStatus computes availability from the combined store + dispenser
// quantity. First match wins: a past expiry date dominates regardless of
// stock, then emptiness, then the reorder floor.
//
// Callers must invoke this after every change to quantities, threshold, or
// expiry and persist the result in the same write.
func DeriveStatus(storeQty, dispenserQty, threshold int, expiryDate, now time.Time) Status {
	if expiryDate.Before(now) {
		return StatusExpired
	}
	total := storeQty + dispenserQty
	if total == 0 {
		return StatusOutOfStock
	}
	if total < threshold {
		return StatusLowStock
	}
	return StatusAvailable
}
