package domain

import "time"

// Overview is the headline summary of one pipeline run.
type Overview struct {
	TotalPosts         int     `json:"totalPosts"`
	PostsWithAnalytics int     `json:"postsWithAnalytics"`
	TotalDelivered     int     `json:"totalDelivered"`
	TotalOpened        int     `json:"totalOpened"`
	AverageOpenRate    float64 `json:"averageOpenRate"`

	Subscribers SubscriberOverview `json:"subscribers"`
}

// SubscriberOverview is the subscriber slice of the overview.
type SubscriberOverview struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Paid    int `json:"paid"`
	Free    int `json:"free"`
	Churned int `json:"churned"`
}

// TopPosts holds the two ranked views over analyzed posts.
type TopPosts struct {
	ByOpens    []PostEngagement `json:"byOpens"`
	ByOpenRate []PostEngagement `json:"byOpenRate"`
}

// Report is the full assembled result of a pipeline run, consumed by the
// presentation layer and the exporters. Components that could not be
// computed (missing roster) are present but empty, never dropped.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`

	Overview        Overview            `json:"overview"`
	Posts           []Post              `json:"posts"`
	PostEngagement  []PostEngagement    `json:"postEngagement"`
	Totals          *EngagementTotals   `json:"totals"`
	TopPosts        TopPosts            `json:"topPosts"`
	SubscriberStats SubscriberStats     `json:"subscriberStats"`
	MonthlyTrends   []MonthlyTrend      `json:"monthlyTrends"`
	Attribution     []AttributionResult `json:"attribution"`

	// HasSubscriberData is false when the roster was absent and the
	// segmentation, growth, and attribution sections degraded to empty.
	HasSubscriberData bool `json:"hasSubscriberData"`
}
