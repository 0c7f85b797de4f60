package dataprocessing

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"subpulse/internal/config"
	"subpulse/internal/files"
	"subpulse/pkg/contracts/domain"
)

// maxConcurrentLoads bounds how many per-post log files are read at once.
const maxConcurrentLoads = 8

// EngagementCalculator computes per-post email performance and the
// dataset-wide open distributions. Per-post loads are independent and run
// concurrently; all accumulation into shared totals happens after the join
// so results are deterministic.
type EngagementCalculator struct {
	logger *slog.Logger
	parser *Parser
}

// NewEngagementCalculator creates a calculator sharing the given parser.
func NewEngagementCalculator(logger *slog.Logger, parser *Parser) *EngagementCalculator {
	if logger == nil {
		logger = slog.Default()
	}
	if parser == nil {
		parser = NewParser(logger)
	}
	return &EngagementCalculator{logger: logger, parser: parser}
}

// postLogs holds the parsed logs for a single post before aggregation.
type postLogs struct {
	post     *domain.Post
	opens    []domain.OpenEvent
	delivers []domain.DeliverEvent
	found    bool
}

// Analyze computes engagement for every published post with at least one
// associated open or deliver log. Posts with no logs are excluded from
// per-post metrics but never block the rest. The returned slice preserves
// the input post order.
func (c *EngagementCalculator) Analyze(ctx context.Context, posts []domain.Post, logs *files.EngagementLogs) ([]domain.PostEngagement, *domain.EngagementTotals, error) {
	loaded := make([]postLogs, len(posts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)

	for i := range posts {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			post := &posts[i]
			// Drafts never reach subscribers; stray logs for them carry no
			// engagement signal.
			if !post.Published {
				return nil
			}
			opensPath, hasOpens := logs.Opens[post.ID]
			deliversPath, hasDelivers := logs.Delivers[post.ID]
			if !hasOpens && !hasDelivers {
				return nil
			}

			entry := postLogs{post: post, found: true}
			if hasOpens {
				opens, err := c.parser.ParseOpens(opensPath, post.ID)
				if err != nil {
					// A single unreadable log degrades that post only.
					c.logger.Warn("failed to parse opens log",
						slog.String("post_id", post.ID),
						slog.String("path", opensPath),
						slog.String("error", err.Error()))
				} else {
					entry.opens = opens
				}
			}
			if hasDelivers {
				delivers, err := c.parser.ParseDelivers(deliversPath, post.ID)
				if err != nil {
					c.logger.Warn("failed to parse delivers log",
						slog.String("post_id", post.ID),
						slog.String("path", deliversPath),
						slog.String("error", err.Error()))
				} else {
					entry.delivers = delivers
				}
			}

			// Each goroutine owns its own index, no locking needed.
			loaded[i] = entry
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	engagement := make([]domain.PostEngagement, 0, len(posts))
	totals := domain.NewEngagementTotals()

	for i := range loaded {
		entry := &loaded[i]
		if !entry.found {
			continue
		}
		engagement = append(engagement, c.analyzePost(entry))
		c.accumulate(totals, entry)
	}

	c.logger.Info("engagement analysis complete",
		slog.Int("posts_analyzed", len(engagement)),
		slog.Int("total_opens", totals.TotalOpens),
		slog.Int("total_delivered", totals.TotalDelivered))

	return engagement, totals, nil
}

// analyzePost computes the per-post metrics: delivered row count, raw open
// count, unique openers deduplicated by email, and the guarded open rate.
func (c *EngagementCalculator) analyzePost(entry *postLogs) domain.PostEngagement {
	openers := make(map[string]bool, len(entry.opens))
	for i := range entry.opens {
		openers[entry.opens[i].Email] = true
	}

	delivered := len(entry.delivers)
	unique := len(openers)

	rate := 0.0
	if delivered > 0 {
		rate = round1(float64(unique) / float64(delivered) * 100)
	}

	e := domain.PostEngagement{
		PostID:        entry.post.ID,
		Title:         entry.post.Title,
		Type:          entry.post.Type,
		Audience:      entry.post.Audience,
		Delivered:     delivered,
		Opened:        len(entry.opens),
		UniqueOpeners: unique,
		OpenRate:      rate,
	}
	if entry.post.Date != nil {
		e.Date = entry.post.Date.Format("2006-01-02")
	}
	return e
}

// accumulate folds one post's raw opens into the global distributions. Raw
// counts feed the tallies; deduplication applies only to open-rate math.
func (c *EngagementCalculator) accumulate(totals *domain.EngagementTotals, entry *postLogs) {
	for i := range entry.opens {
		open := &entry.opens[i]
		totals.Countries.Add(open.Country)
		totals.Devices.Add(open.DeviceType)
		totals.Clients.Add(open.ClientType)

		// Hour and weekday come from the timestamp's own zone as parsed,
		// never the host zone, so tallies match across machines.
		if open.Timestamp != nil {
			totals.Hourly[open.Timestamp.Hour()]++
			totals.Daily[int(open.Timestamp.Weekday())]++
		}
	}
	totals.TotalOpens += len(entry.opens)
	totals.TotalDelivered += len(entry.delivers)
}

// TopPostsByOpens ranks analyzed posts by unique openers, descending. Ties
// keep input order.
func TopPostsByOpens(engagement []domain.PostEngagement, limit int) []domain.PostEngagement {
	ranked := make([]domain.PostEngagement, len(engagement))
	copy(ranked, engagement)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].UniqueOpeners > ranked[j].UniqueOpeners
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// TopPostsByOpenRate ranks analyzed posts by open rate, descending, after
// filtering to posts with at least MinDeliveredForRateRanking deliveries.
// The threshold is a fixed policy constant, not a per-call knob.
func TopPostsByOpenRate(engagement []domain.PostEngagement, limit int) []domain.PostEngagement {
	var ranked []domain.PostEngagement
	for i := range engagement {
		if engagement[i].Delivered >= config.MinDeliveredForRateRanking {
			ranked = append(ranked, engagement[i])
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].OpenRate > ranked[j].OpenRate
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
