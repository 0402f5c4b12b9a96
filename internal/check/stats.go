package check

import (
	"fmt"
	"strings"
	"time"

	"snapcheck/internal/model"
)

// UpdateSummary renders the human-readable totals for one update run.
func UpdateSummary(report *model.DiffReport, elapsed time.Duration) string {
	checked := len(report.New) + len(report.Unchanged) + len(report.Modified) +
		len(report.Missing) + len(report.Renamed) + len(report.Errors)

	var b strings.Builder
	fmt.Fprintf(&b, "%d files checked in %s:\n", checked, elapsed.Round(100*time.Millisecond))
	fmt.Fprintf(&b, "    %d files read (%s):\n", report.FilesRead, throughput(report.BytesRead, elapsed))
	fmt.Fprintf(&b, "        %d new files\n", len(report.New))
	fmt.Fprintf(&b, "        %d files modified\n", len(report.Modified))
	fmt.Fprintf(&b, "    %d files not found:\n", len(report.Missing)+len(report.Renamed))
	fmt.Fprintf(&b, "        %d files found elsewhere (moved or duplicates)\n", len(report.Renamed))
	fmt.Fprintf(&b, "        %d files newly missing\n", len(report.Missing))
	fmt.Fprintf(&b, "%d files unchanged\n", len(report.Unchanged))
	if len(report.Errors) > 0 {
		fmt.Fprintf(&b, "%d files could not be read\n", len(report.Errors))
	}
	return b.String()
}

// VerifySummary renders the human-readable totals for one verify run.
func VerifySummary(result *model.VerifyResult, elapsed time.Duration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d files read (%s) in %s:\n",
		result.FilesRead, throughput(result.BytesRead, elapsed), elapsed.Round(100*time.Millisecond))
	fmt.Fprintf(&b, "    %d files not found in archive\n", len(result.Unmatched))
	fmt.Fprintf(&b, "    %d files differing from archive\n", len(result.Mismatched))
	fmt.Fprintf(&b, "    %d archived files not found in directory\n", len(result.MissingFromReference))
	if len(result.Errors) > 0 {
		fmt.Fprintf(&b, "    %d files could not be read\n", len(result.Errors))
	}
	return b.String()
}

// throughput formats a byte total with its effective read rate.
func throughput(bytes int64, elapsed time.Duration) string {
	const mib = 1024 * 1024
	gib := float64(bytes) / (mib * 1024)
	if elapsed <= 0 {
		return fmt.Sprintf("%.1f GiB", gib)
	}
	rate := float64(bytes) / mib / elapsed.Seconds()
	return fmt.Sprintf("%.1f GiB, %.0f MiB/s", gib, rate)
}
