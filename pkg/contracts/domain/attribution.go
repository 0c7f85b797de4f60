package domain

// PostAttribution credits signups to a single post under one lookback
// window. Only posts with at least one attributed signup are emitted.
type PostAttribution struct {
	PostID          string  `json:"post_id"`
	Title           string  `json:"title"`
	PostDate        string  `json:"post_date"`
	AttributedTotal int     `json:"attributedTotal"`
	AttributedPaid  int     `json:"attributedPaid"`
	AttributedFree  int     `json:"attributedFree"`
	AvgDaysToSignup float64 `json:"avgDaysToSignup"`
}

// AttributionResult is the outcome of one attribution run for a single
// window size. Runs for different windows are independent and never mixed.
type AttributionResult struct {
	WindowDays          int               `json:"windowDays"`
	PostAttributions    []PostAttribution `json:"postAttributions"`
	OrganicSignups      int               `json:"organicSignups"`
	TotalAttributed     int               `json:"totalAttributed"`
	AttributionCoverage float64           `json:"attributionCoverage"`

	// Subscribers excluded up front for a missing created_at, tracked
	// separately from organic.
	SkippedNoCreatedAt int `json:"skippedNoCreatedAt"`
}
