package dataprocessing

import (
	"math"
	"sort"

	"subpulse/pkg/contracts/domain"
)

// CalculateMonthlyTrends buckets published posts and subscriber signups into
// calendar-month cohorts and emits one row per month in the union of both
// series, sorted ascending. The cumulative subscriber count is a running sum
// seeded at zero and carried across every month, so a month with no signups
// still shows the carried-forward total.
func CalculateMonthlyTrends(posts []domain.Post, stats domain.SubscriberStats) []domain.MonthlyTrend {
	postsByMonth := make(map[string]int)
	for i := range posts {
		post := &posts[i]
		if post.Published && post.Date != nil {
			postsByMonth[post.Month()]++
		}
	}

	months := make(map[string]bool, len(postsByMonth)+len(stats.ByMonth))
	for month := range postsByMonth {
		months[month] = true
	}
	for month := range stats.ByMonth {
		months[month] = true
	}

	sorted := make([]string, 0, len(months))
	for month := range months {
		sorted = append(sorted, month)
	}
	sort.Strings(sorted)

	trends := make([]domain.MonthlyTrend, 0, len(sorted))
	cumulative := 0
	for _, month := range sorted {
		cumulative += stats.ByMonth[month]
		trends = append(trends, domain.MonthlyTrend{
			Month:                 month,
			Posts:                 postsByMonth[month],
			NewSubscribers:        stats.ByMonth[month],
			CumulativeSubscribers: cumulative,
		})
	}

	return trends
}

// AttachEngagement folds per-post engagement into the monthly series:
// delivered and unique-opener totals plus the resulting open rate, keyed by
// the post's publication month. Months present in the engagement data but
// absent from the series (posts published without a signup cohort) were
// already unioned in by CalculateMonthlyTrends, so this is a pure overlay.
func AttachEngagement(trends []domain.MonthlyTrend, engagement []domain.PostEngagement) []domain.MonthlyTrend {
	type monthAgg struct {
		delivered int
		opened    int
	}

	byMonth := make(map[string]monthAgg)
	for i := range engagement {
		e := &engagement[i]
		if len(e.Date) < 7 {
			continue
		}
		month := e.Date[:7]
		agg := byMonth[month]
		agg.delivered += e.Delivered
		agg.opened += e.UniqueOpeners
		byMonth[month] = agg
	}

	out := make([]domain.MonthlyTrend, len(trends))
	copy(out, trends)

	for i := range out {
		agg, ok := byMonth[out[i].Month]
		if !ok {
			continue
		}
		out[i].Delivered = agg.delivered
		out[i].Opened = agg.opened
		if agg.delivered > 0 {
			out[i].OpenRate = round1(float64(agg.opened) / float64(agg.delivered) * 100)
		}
	}

	return out
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
