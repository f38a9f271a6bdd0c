package cleaning

import (
	"fmt"
	"strings"
)

// Summary reports the outcome of a cleaning run.
type Summary struct {
	OriginalRows                  int      `json:"original_rows"`
	FilteredRows                  int      `json:"filtered_rows"`
	CleanedRows                   int      `json:"cleaned_rows"`
	SuspiciousSpikesTotal         int      `json:"suspicious_spikes_total"`
	ReportingErrorsTotal          int      `json:"reporting_errors_total"`
	DistrictsWithSuspiciousSpikes int      `json:"districts_with_suspicious_spikes"`
	DistrictsFlagged              []string `json:"districts_flagged"`
}

// maxDistrictsListed caps the district list in the rendered report; the
// full list stays available on the struct.
const maxDistrictsListed = 10

// String renders the summary as a human-readable block for operators.
func (s *Summary) String() string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	fmt.Fprintf(&b, "\n%s\n", rule)
	fmt.Fprintf(&b, "JJM DATA CLEANING SUMMARY REPORT\n")
	fmt.Fprintf(&b, "%s\n\n", rule)
	fmt.Fprintf(&b, "Original Data Rows:         %d\n", s.OriginalRows)
	fmt.Fprintf(&b, "Rows with Reporting Errors: %d\n", s.ReportingErrorsTotal)
	fmt.Fprintf(&b, "Filtered Rows Removed:      %d\n", s.FilteredRows)
	fmt.Fprintf(&b, "Cleaned Data Rows:          %d\n\n", s.CleanedRows)
	fmt.Fprintf(&b, "Suspicious Spikes Detected: %d\n", s.SuspiciousSpikesTotal)
	fmt.Fprintf(&b, "Districts Flagged for Suspicious Spikes: %d\n", s.DistrictsWithSuspiciousSpikes)

	if len(s.DistrictsFlagged) > 0 {
		fmt.Fprintf(&b, "\nDistricts with Suspicious Spikes:\n")
		for i, district := range s.DistrictsFlagged {
			if i == maxDistrictsListed {
				fmt.Fprintf(&b, "  ... and %d more\n", len(s.DistrictsFlagged)-maxDistrictsListed)
				break
			}
			fmt.Fprintf(&b, "  - %s\n", district)
		}
	}

	fmt.Fprintf(&b, "\n%s\n", rule)
	return b.String()
}
