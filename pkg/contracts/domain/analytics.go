package domain

// PostEngagement holds per-post email performance derived from the open and
// deliver logs. Only posts with at least one associated log row get an entry.
type PostEngagement struct {
	PostID        string  `json:"post_id"`
	Title         string  `json:"title"`
	Date          string  `json:"date,omitempty"`
	Type          string  `json:"type"`
	Audience      string  `json:"audience"`
	Delivered     int     `json:"delivered"`
	Opened        int     `json:"opened"`
	UniqueOpeners int     `json:"unique_openers"`
	OpenRate      float64 `json:"open_rate"`
}

// Distribution is a tally of open counts keyed by a dynamic string dimension
// (country, device type, client type). Absent keys count zero; Add inserts
// on first use.
type Distribution map[string]int

// Add increments the tally for key, substituting UnknownLabel for the empty
// string.
func (d Distribution) Add(key string) {
	if key == "" {
		key = UnknownLabel
	}
	d[key]++
}

// Merge folds other into d.
func (d Distribution) Merge(other Distribution) {
	for k, v := range other {
		d[k] += v
	}
}

// EngagementTotals accumulates dataset-wide open distributions across all
// analyzed posts. Raw (non-deduplicated) opens feed every tally.
type EngagementTotals struct {
	Countries Distribution `json:"countries"`
	Devices   Distribution `json:"devices"`
	Clients   Distribution `json:"clients"`
	Hourly    [24]int      `json:"hourly"`
	Daily     [7]int       `json:"daily"`

	TotalOpens     int `json:"total_opens"`
	TotalDelivered int `json:"total_delivered"`
}

// NewEngagementTotals returns totals with initialized maps.
func NewEngagementTotals() *EngagementTotals {
	return &EngagementTotals{
		Countries: make(Distribution),
		Devices:   make(Distribution),
		Clients:   make(Distribution),
	}
}

// MonthlyTrend is one row of the month-over-month series. Months appear in
// ascending order and CumulativeSubscribers never decreases; a month with no
// posts or signups still appears with zero local counts and the carried
// cumulative total.
type MonthlyTrend struct {
	Month                 string  `json:"month"`
	Posts                 int     `json:"posts"`
	Delivered             int     `json:"delivered"`
	Opened                int     `json:"opened"`
	OpenRate              float64 `json:"openRate"`
	NewSubscribers        int     `json:"newSubscribers"`
	CumulativeSubscribers int     `json:"subscribers"`
}
