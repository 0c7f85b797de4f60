package report

import (
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"subpulse/internal/config"
	"subpulse/internal/dataprocessing"
	"subpulse/pkg/contracts/domain"
)

// runIDNamespace scopes run ids derived from report input.
var runIDNamespace = uuid.MustParse("3b4f9a46-1c7d-4a57-9f0e-6d2a8b1c5e73")

// Input carries every computed component into assembly. Attribution and the
// subscriber-derived fields are zero-valued when the roster was missing.
type Input struct {
	Posts             []domain.Post
	Engagement        []domain.PostEngagement
	Totals            *domain.EngagementTotals
	SubscriberStats   domain.SubscriberStats
	MonthlyTrends     []domain.MonthlyTrend
	Attribution       []domain.AttributionResult
	HasSubscriberData bool
}

// Assembler combines the analytics components into a single report. It
// performs no recomputation of its inputs beyond the headline overview and
// the two top-post rankings.
type Assembler struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewAssembler creates a report assembler stamping GeneratedAt from the wall
// clock.
func NewAssembler(logger *slog.Logger) *Assembler {
	return NewAssemblerWithClock(logger, nil)
}

// NewAssemblerWithClock creates an assembler with an explicit clock source.
// A nil clock falls back to UTC wall time.
func NewAssemblerWithClock(logger *slog.Logger, now func() time.Time) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Assembler{logger: logger, now: now}
}

// Assemble builds the final report. Every section is always present: missing
// subscriber data leaves its sections empty rather than absent, with
// HasSubscriberData flagging the degradation for consumers.
func (a *Assembler) Assemble(input Input) domain.Report {
	report := domain.Report{
		RunID:             runID(input),
		GeneratedAt:       a.now(),
		Posts:             input.Posts,
		PostEngagement:    input.Engagement,
		Totals:            input.Totals,
		SubscriberStats:   input.SubscriberStats,
		MonthlyTrends:     input.MonthlyTrends,
		Attribution:       input.Attribution,
		HasSubscriberData: input.HasSubscriberData,
	}

	report.Overview = a.buildOverview(input)
	report.TopPosts = domain.TopPosts{
		ByOpens:    dataprocessing.TopPostsByOpens(input.Engagement, config.TopPostsLimit),
		ByOpenRate: dataprocessing.TopPostsByOpenRate(input.Engagement, config.TopPostsLimit),
	}

	a.logger.Info("report assembled",
		slog.String("run_id", report.RunID),
		slog.Int("posts", len(report.Posts)),
		slog.Int("posts_with_analytics", report.Overview.PostsWithAnalytics),
		slog.Bool("has_subscriber_data", report.HasSubscriberData))

	return report
}

// buildOverview computes the headline numbers. The average open rate is the
// unweighted mean of per-post rates over posts that had deliveries, so a
// small post and a large one contribute equally.
func (a *Assembler) buildOverview(input Input) domain.Overview {
	overview := domain.Overview{
		TotalPosts: len(input.Posts),
		Subscribers: domain.SubscriberOverview{
			Total:   input.SubscriberStats.Total,
			Active:  input.SubscriberStats.Active,
			Paid:    input.SubscriberStats.Paid,
			Free:    input.SubscriberStats.Free,
			Churned: input.SubscriberStats.Churned,
		},
	}

	rateSum := 0.0
	for i := range input.Engagement {
		e := &input.Engagement[i]
		overview.TotalDelivered += e.Delivered
		// Raw opens, not unique openers: repeats count here, dedup applies
		// only to per-post rate math.
		overview.TotalOpened += e.Opened
		if e.Delivered > 0 {
			overview.PostsWithAnalytics++
			rateSum += e.OpenRate
		}
	}
	if overview.PostsWithAnalytics > 0 {
		overview.AverageOpenRate = math.Round(rateSum/float64(overview.PostsWithAnalytics)*10) / 10
	}

	return overview
}

// runID derives the run identifier from the assembled inputs, so re-running
// over unchanged data yields the same id.
func runID(input Input) string {
	payload, err := json.Marshal(input)
	if err != nil {
		return uuid.New().String()
	}
	return uuid.NewSHA1(runIDNamespace, payload).String()
}
