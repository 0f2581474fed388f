package domain

// ComputeATS derives available-to-sell base units. Reservations in excess of stock clamp to zero.
func ComputeATS(stocked, reserved, incoming int64, includeIncoming bool) int64 {
	ats := stocked - reserved
	if includeIncoming {
		ats += incoming
	}
	if ats < 0 {
		return 0
	}
	return ats
}
