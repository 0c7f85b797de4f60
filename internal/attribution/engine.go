package attribution

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"subpulse/pkg/contracts/domain"
)

// Engine runs windowed signup attribution. It is stateless between runs;
// every Run recomputes from scratch over the full input.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an attribution engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// tally accumulates attributions for one post during a run.
type tally struct {
	total   int
	paid    int
	free    int
	sumDays int
}

// Run attributes every subscriber signup for a single lookback window and
// returns the per-post attribution list sorted by attributed total,
// descending (stable for ties).
func (e *Engine) Run(ctx context.Context, posts []domain.Post, subscribers []domain.Subscriber, windowDays int) domain.AttributionResult {
	candidates := sortedCandidates(posts)
	window := time.Duration(windowDays) * 24 * time.Hour

	result := domain.AttributionResult{
		WindowDays:       windowDays,
		PostAttributions: []domain.PostAttribution{},
	}

	tallies := make(map[string]*tally, len(candidates))

	for i := range subscribers {
		sub := &subscribers[i]

		// No signup timestamp: excluded from attribution entirely,
		// tracked apart from organic.
		if sub.CreatedAt == nil {
			result.SkippedNoCreatedAt++
			continue
		}
		signup := *sub.CreatedAt

		matched := findQualifyingPost(candidates, signup, window)
		if matched == nil {
			result.OrganicSignups++
			continue
		}

		t := tallies[matched.ID]
		if t == nil {
			t = &tally{}
			tallies[matched.ID] = t
		}
		t.total++
		if sub.IsPaid() {
			t.paid++
		} else {
			t.free++
		}
		t.sumDays += int(signup.Sub(*matched.Date).Hours() / 24)
		result.TotalAttributed++
	}

	// Emit in candidate (date-descending) order so the ranking sort below
	// sees a deterministic input regardless of map iteration.
	for i := range candidates {
		t, ok := tallies[candidates[i].ID]
		if !ok {
			continue
		}
		result.PostAttributions = append(result.PostAttributions, domain.PostAttribution{
			PostID:          candidates[i].ID,
			Title:           candidates[i].Title,
			PostDate:        candidates[i].Date.Format("2006-01-02"),
			AttributedTotal: t.total,
			AttributedPaid:  t.paid,
			AttributedFree:  t.free,
			AvgDaysToSignup: math.Round(float64(t.sumDays)/float64(t.total)*10) / 10,
		})
	}

	sort.SliceStable(result.PostAttributions, func(i, j int) bool {
		return result.PostAttributions[i].AttributedTotal > result.PostAttributions[j].AttributedTotal
	})

	if len(subscribers) > 0 {
		result.AttributionCoverage = math.Round(float64(result.TotalAttributed)/float64(len(subscribers))*1000) / 10
	}

	e.logger.Info("attribution run complete",
		slog.Int("window_days", windowDays),
		slog.Int("attributed", result.TotalAttributed),
		slog.Int("organic", result.OrganicSignups),
		slog.Int("skipped_no_created_at", result.SkippedNoCreatedAt),
		slog.Float64("coverage_pct", result.AttributionCoverage))

	return result
}

// RunAll evaluates every window independently and returns results in the
// order the windows were given. Runs share no mutable state and execute
// concurrently.
func (e *Engine) RunAll(ctx context.Context, posts []domain.Post, subscribers []domain.Subscriber, windows []int) ([]domain.AttributionResult, error) {
	results := make([]domain.AttributionResult, len(windows))

	g, ctx := errgroup.WithContext(ctx)
	for i, w := range windows {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			results[i] = e.Run(ctx, posts, subscribers, w)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// sortedCandidates filters to published, dated posts and sorts them most
// recent first. The descending order is load-bearing: the first structural
// match in findQualifyingPost is then guaranteed to be the most recent
// qualifying post, and the stable sort keeps original list order for posts
// sharing a timestamp.
func sortedCandidates(posts []domain.Post) []domain.Post {
	candidates := make([]domain.Post, 0, len(posts))
	for i := range posts {
		if posts[i].Published && posts[i].Date != nil {
			candidates = append(candidates, posts[i])
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Date.After(*candidates[j].Date)
	})

	return candidates
}

// findQualifyingPost scans the date-descending candidate list and returns
// the first post published at or before the signup and no more than window
// before it. Both boundaries are inclusive: a post published exactly W days
// before the signup qualifies, a post published after the signup never does.
func findQualifyingPost(candidates []domain.Post, signup time.Time, window time.Duration) *domain.Post {
	for i := range candidates {
		postDate := *candidates[i].Date
		if postDate.After(signup) {
			continue
		}
		if signup.Sub(postDate) <= window {
			return &candidates[i]
		}
		// Candidates are date-descending: everything after this one is
		// even older and cannot fall back inside the window.
		return nil
	}
	return nil
}
