package config

// Application constants for the subpulse pipeline.
const (
	AppName    = "subpulse"
	AppVersion = "1.2.0"

	// Engagement policy
	// Posts must have reached at least this many inboxes before they are
	// eligible for open-rate ranking; below it the rate is too noisy.
	MinDeliveredForRateRanking = 100
	TopPostsLimit              = 10

	// Export file layout (inside the archive)
	PostsCSVName           = "posts.csv"
	SubscriberListPattern  = "*email_list*.csv"
	PostsSubdir            = "posts"
	OpensFileSuffix        = ".opens.csv"
	DeliversFileSuffix     = ".delivers.csv"
	PostHTMLSuffix         = ".html"

	// Output layout
	DefaultOutputDir     = "output"
	AnalyticsSubdir      = "analytics"
	DashboardDataSubdir  = "data"
	ContentSubdir        = "content"
	PerPostMetricsCSV    = "per-post-metrics.csv"
	SummaryWorkbookName  = "analytics-summary.xlsx"

	// Log settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// DefaultAttributionWindows are the lookback windows, in days, evaluated
// independently on every run.
var DefaultAttributionWindows = []int{1, 2, 7}
