package dataprocessing

import (
	"subpulse/pkg/contracts/domain"
)

// CalculateSubscriberStats segments the full roster into the derived
// categories. Pure function: recomputed fresh from the complete subscriber
// set on every call, no incremental path.
//
// Paid and free are restricted to active subscribers, so a churned paid
// subscriber counts in neither. Active + inactive always equals total.
func CalculateSubscriberStats(subscribers []domain.Subscriber) domain.SubscriberStats {
	stats := domain.SubscriberStats{
		Total:   len(subscribers),
		ByPlan:  make(map[string]int),
		ByMonth: make(map[string]int),
	}

	for i := range subscribers {
		sub := &subscribers[i]

		stats.ByPlan[sub.Plan]++
		if month := sub.SignupMonth(); month != "" {
			stats.ByMonth[month]++
		}

		if sub.EmailDisabled {
			stats.EmailDisabled++
		}

		if sub.IsActive() {
			stats.Active++
			if sub.IsPaid() {
				stats.Paid++
			} else {
				stats.Free++
			}
		}

		if sub.IsChurned() {
			stats.Churned++
		}
	}

	stats.Inactive = stats.Total - stats.Active

	return stats
}
