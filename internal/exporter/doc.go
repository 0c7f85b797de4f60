// Package exporter writes the pipeline's output artifacts: the per-post
// metrics CSV, the dashboard JSON files, and the Excel summary workbook.
//
// Every writer truncates and rewrites its files on each run; the most recent
// run wins and no artifact is ever merged with a previous run's output.
package exporter
