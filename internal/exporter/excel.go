package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"subpulse/internal/config"
	"subpulse/pkg/contracts/domain"
)

// Workbook sheet names.
const (
	sheetOverview = "Overview"
	sheetTopPosts = "Top Posts"
	sheetTrends   = "Monthly Trends"
)

// ExcelWriter builds the analytics summary workbook. It is a convenience
// artifact for spreadsheet users; the JSON dashboard files remain the
// machine-readable contract.
type ExcelWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewExcelWriter creates a workbook writer.
func NewExcelWriter(paths *config.Paths, logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelWriter{paths: paths, logger: logger}
}

// WriteSummary writes the three-sheet summary workbook into the analytics
// output directory.
func (w *ExcelWriter) WriteSummary(report *domain.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeOverviewSheet(f, report); err != nil {
		return err
	}
	if err := w.writeTopPostsSheet(f, report); err != nil {
		return err
	}
	if err := w.writeTrendsSheet(f, report); err != nil {
		return err
	}

	// The default sheet is replaced by Overview.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	if err := os.MkdirAll(w.paths.AnalyticsDir(), 0755); err != nil {
		return fmt.Errorf("failed to create analytics directory: %w", err)
	}

	path := filepath.Join(w.paths.AnalyticsDir(), config.SummaryWorkbookName)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Info("summary workbook written", slog.String("path", path))
	return nil
}

func (w *ExcelWriter) writeOverviewSheet(f *excelize.File, report *domain.Report) error {
	if _, err := f.NewSheet(sheetOverview); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheetOverview, err)
	}

	rows := [][]any{
		{"Metric", "Value"},
		{"Run ID", report.RunID},
		{"Generated At", report.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Total Posts", report.Overview.TotalPosts},
		{"Posts With Analytics", report.Overview.PostsWithAnalytics},
		{"Total Delivered", report.Overview.TotalDelivered},
		{"Total Opened", report.Overview.TotalOpened},
		{"Average Open Rate (%)", report.Overview.AverageOpenRate},
		{"Subscribers Total", report.Overview.Subscribers.Total},
		{"Subscribers Active", report.Overview.Subscribers.Active},
		{"Subscribers Paid", report.Overview.Subscribers.Paid},
		{"Subscribers Free", report.Overview.Subscribers.Free},
		{"Subscribers Churned", report.Overview.Subscribers.Churned},
	}

	return w.writeRows(f, sheetOverview, rows)
}

func (w *ExcelWriter) writeTopPostsSheet(f *excelize.File, report *domain.Report) error {
	if _, err := f.NewSheet(sheetTopPosts); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheetTopPosts, err)
	}

	rows := [][]any{
		{"Rank", "Post ID", "Title", "Date", "Delivered", "Unique Openers", "Open Rate (%)"},
	}
	for i := range report.TopPosts.ByOpens {
		post := &report.TopPosts.ByOpens[i]
		rows = append(rows, []any{
			i + 1, post.PostID, post.Title, post.Date,
			post.Delivered, post.UniqueOpeners, post.OpenRate,
		})
	}

	return w.writeRows(f, sheetTopPosts, rows)
}

func (w *ExcelWriter) writeTrendsSheet(f *excelize.File, report *domain.Report) error {
	if _, err := f.NewSheet(sheetTrends); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheetTrends, err)
	}

	rows := [][]any{
		{"Month", "Posts", "Delivered", "Opened", "Open Rate (%)", "New Subscribers", "Cumulative Subscribers"},
	}
	for i := range report.MonthlyTrends {
		trend := &report.MonthlyTrends[i]
		rows = append(rows, []any{
			trend.Month, trend.Posts, trend.Delivered, trend.Opened,
			trend.OpenRate, trend.NewSubscribers, trend.CumulativeSubscribers,
		})
	}

	return w.writeRows(f, sheetTrends, rows)
}

// writeRows writes rows starting at A1 using the streaming-friendly
// row-at-a-time API.
func (w *ExcelWriter) writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d on %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
