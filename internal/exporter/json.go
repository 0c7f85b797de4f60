package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"subpulse/internal/config"
	"subpulse/pkg/contracts/domain"
)

// Dashboard JSON file names. The dashboard loads these by fixed name, so
// they are part of the output contract.
const (
	overviewFile         = "overview.json"
	monthlyTrendsFile    = "monthly-trends.json"
	topPostsFile         = "top-posts.json"
	geoDistributionFile  = "geo-distribution.json"
	subscriberGrowthFile = "subscriber-growth.json"
	subscriberStatsFile  = "subscriber-stats.json"
	allPostsFile         = "all-posts.json"
	attributionFile      = "attribution.json"
)

// DashboardWriter emits the JSON files the dashboard consumes, one file per
// section, into the dashboard data directory.
type DashboardWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewDashboardWriter creates a dashboard JSON writer.
func NewDashboardWriter(paths *config.Paths, logger *slog.Logger) *DashboardWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardWriter{paths: paths, logger: logger}
}

// overviewPayload wraps the overview with run provenance.
type overviewPayload struct {
	RunID       string          `json:"run_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Overview    domain.Overview `json:"overview"`
}

// geoPayload is the distribution section of the dashboard.
type geoPayload struct {
	Countries domain.Distribution `json:"countries"`
	Devices   domain.Distribution `json:"devices"`
	Clients   domain.Distribution `json:"clients"`
	Hourly    [24]int             `json:"hourly"`
	Daily     [7]int              `json:"daily"`
}

// growthPoint is one month of the subscriber growth series.
type growthPoint struct {
	Month          string `json:"month"`
	NewSubscribers int    `json:"newSubscribers"`
	Subscribers    int    `json:"subscribers"`
}

// WriteAll writes every dashboard file from the assembled report. Each file
// is written independently; the first failure aborts the export.
func (w *DashboardWriter) WriteAll(report *domain.Report) error {
	if err := w.writeFile(overviewFile, overviewPayload{
		RunID:       report.RunID,
		GeneratedAt: report.GeneratedAt,
		Overview:    report.Overview,
	}); err != nil {
		return err
	}

	if err := w.writeFile(monthlyTrendsFile, report.MonthlyTrends); err != nil {
		return err
	}
	if err := w.writeFile(topPostsFile, report.TopPosts); err != nil {
		return err
	}
	if err := w.writeFile(allPostsFile, report.PostEngagement); err != nil {
		return err
	}
	if err := w.writeFile(subscriberStatsFile, report.SubscriberStats); err != nil {
		return err
	}
	if err := w.writeFile(attributionFile, report.Attribution); err != nil {
		return err
	}

	if report.Totals != nil {
		geo := geoPayload{
			Countries: report.Totals.Countries,
			Devices:   report.Totals.Devices,
			Clients:   report.Totals.Clients,
			Hourly:    report.Totals.Hourly,
			Daily:     report.Totals.Daily,
		}
		if err := w.writeFile(geoDistributionFile, geo); err != nil {
			return err
		}
	}

	growth := make([]growthPoint, 0, len(report.MonthlyTrends))
	for i := range report.MonthlyTrends {
		trend := &report.MonthlyTrends[i]
		growth = append(growth, growthPoint{
			Month:          trend.Month,
			NewSubscribers: trend.NewSubscribers,
			Subscribers:    trend.CumulativeSubscribers,
		})
	}
	if err := w.writeFile(subscriberGrowthFile, growth); err != nil {
		return err
	}

	w.logger.Info("dashboard data exported",
		slog.String("dir", w.paths.DashboardDataDir()),
		slog.Int("posts", len(report.PostEngagement)),
		slog.Int("trend_months", len(report.MonthlyTrends)))

	return nil
}

// writeFile marshals the payload with indentation and writes it atomically
// enough for a batch pipeline: full truncate-and-rewrite per run.
func (w *DashboardWriter) writeFile(name string, payload any) error {
	dir := w.paths.DashboardDataDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create dashboard data directory: %w", err)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	data = append(data, '\n')

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	w.logger.Debug("wrote dashboard file",
		slog.String("file", name),
		slog.Int("bytes", len(data)))

	return nil
}
