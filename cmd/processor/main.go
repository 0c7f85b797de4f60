package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"subpulse/internal/attribution"
	"subpulse/internal/config"
	"subpulse/internal/content"
	"subpulse/internal/dataprocessing"
	"subpulse/internal/exporter"
	"subpulse/internal/files"
	"subpulse/internal/infrastructure"
	"subpulse/internal/report"
	"subpulse/pkg/contracts/domain"
)

func main() {
	archiveDir := flag.String("archive", "", "archive directory holding the newsletter export (overrides config)")
	outDir := flag.String("out", "", "output directory for analytics artifacts (overrides config)")
	windowsFlag := flag.String("windows", "", "comma-separated attribution windows in days (overrides config)")
	exportContent := flag.Bool("content", false, "also convert post HTML bodies to markdown")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	if *archiveDir != "" {
		cfg.Paths.ArchiveDir = *archiveDir
	}
	if *outDir != "" {
		cfg.Paths.OutputDir = *outDir
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}
	if *exportContent {
		cfg.Analytics.ExportContent = true
	}
	if *windowsFlag != "" {
		windows, err := parseWindows(*windowsFlag)
		if err != nil {
			slog.Error("Invalid -windows value", "error", err)
			os.Exit(1)
		}
		cfg.Analytics.AttributionWindows = windows
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	paths, err := config.NewPaths(cfg.Paths.ArchiveDir, cfg.Paths.OutputDir)
	if err != nil {
		logger.Error("Failed to resolve paths", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := paths.EnsureOutputDirectories(); err != nil {
		logger.Error("Failed to create output directories", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Starting newsletter export processing",
		slog.String("app", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("archive_dir", paths.ArchiveDir),
		slog.String("output_dir", paths.OutputDir))

	if err := run(context.Background(), cfg, paths, logger); err != nil {
		logger.Error("Processing failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Processing complete")
}

func run(ctx context.Context, cfg *config.Config, paths *config.Paths, logger *slog.Logger) error {
	discovery := files.NewDiscovery(paths)
	parser := dataprocessing.NewParser(logger)

	// The posts listing is the backbone of the run; its absence is fatal.
	postsCSV, err := discovery.FindPostsCSV()
	if err != nil {
		return err
	}
	posts, err := parser.ParsePosts(postsCSV)
	if err != nil {
		return err
	}

	// The roster is optional: without it the subscriber, growth, and
	// attribution sections degrade to empty.
	subscribers, hasSubscriberData, err := loadSubscribers(discovery, parser, logger)
	if err != nil {
		return err
	}

	stats := dataprocessing.CalculateSubscriberStats(subscribers)

	logs, err := discovery.FindEngagementLogs()
	if err != nil {
		return err
	}
	calculator := dataprocessing.NewEngagementCalculator(logger, parser)
	engagement, totals, err := calculator.Analyze(ctx, posts, logs)
	if err != nil {
		return err
	}

	trends := dataprocessing.CalculateMonthlyTrends(posts, stats)
	trends = dataprocessing.AttachEngagement(trends, engagement)

	input := report.Input{
		Posts:             posts,
		Engagement:        engagement,
		Totals:            totals,
		SubscriberStats:   stats,
		MonthlyTrends:     trends,
		HasSubscriberData: hasSubscriberData,
	}

	if hasSubscriberData {
		engine := attribution.NewEngine(logger)
		results, err := engine.RunAll(ctx, posts, subscribers, cfg.Analytics.AttributionWindows)
		if err != nil {
			return err
		}
		input.Attribution = results
	}

	assembled := report.NewAssembler(logger).Assemble(input)

	csvWriter := exporter.NewCSVWriter(paths)
	if err := csvWriter.WritePerPostMetrics(assembled.PostEngagement); err != nil {
		return err
	}

	if err := exporter.NewDashboardWriter(paths, logger).WriteAll(&assembled); err != nil {
		return err
	}

	if err := exporter.NewExcelWriter(paths, logger).WriteSummary(&assembled); err != nil {
		return err
	}

	if cfg.Analytics.ExportContent {
		if err := exportPostContent(discovery, posts, paths, cfg, logger); err != nil {
			return err
		}
	}

	return nil
}

// loadSubscribers locates and parses the roster. A missing roster degrades
// the run instead of failing it.
func loadSubscribers(discovery *files.Discovery, parser *dataprocessing.Parser, logger *slog.Logger) ([]domain.Subscriber, bool, error) {
	rosterCSV, err := discovery.FindSubscriberCSV()
	if err != nil {
		return nil, false, err
	}
	if rosterCSV == "" {
		logger.Warn("No subscriber roster found, subscriber sections will be empty")
		return nil, false, nil
	}

	subscribers, err := parser.ParseSubscribers(rosterCSV)
	if err != nil {
		return nil, false, err
	}
	return subscribers, true, nil
}

// exportPostContent attaches HTML bodies to posts that have one and runs the
// markdown export.
func exportPostContent(discovery *files.Discovery, posts []domain.Post, paths *config.Paths, cfg *config.Config, logger *slog.Logger) error {
	htmlFiles, err := discovery.FindPostHTML()
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(posts))
	for i := range posts {
		known[posts[i].ID] = true
	}

	type body struct {
		path string
		html string
	}
	bodies := make(map[string]body, len(htmlFiles))
	for id, path := range htmlFiles {
		matched, ok := files.MatchPostID(id, known)
		if !ok {
			logger.Warn("HTML body does not match any post",
				slog.String("file_id", id),
				slog.String("path", path))
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Failed to read post body",
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}
		bodies[matched] = body{path: path, html: string(data)}
	}

	for i := range posts {
		if b, ok := bodies[posts[i].ID]; ok {
			posts[i].HTMLPath = b.path
			posts[i].HTMLContent = b.html
		}
	}

	contentExporter := content.NewExporter(paths, logger)
	if _, err := contentExporter.ExportIndividual(posts); err != nil {
		return err
	}
	if _, err := contentExporter.ExportConsolidated(posts, cfg.Analytics.PublicationName); err != nil {
		return err
	}
	return nil
}

// parseWindows parses the -windows flag value.
func parseWindows(value string) ([]int, error) {
	parts := strings.Split(value, ",")
	windows := make([]int, 0, len(parts))
	for _, part := range parts {
		w, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid window %q: %w", part, err)
		}
		if w <= 0 {
			return nil, fmt.Errorf("window must be positive, got %d", w)
		}
		windows = append(windows, w)
	}
	return windows, nil
}
