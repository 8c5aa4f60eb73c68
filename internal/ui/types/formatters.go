package types

import (
	"fmt"
	"strings"
	"time"
)

// FormatDateTime converts an RFC3339 datetime string to DD/MM/YYYY HH:MM
func FormatDateTime(dateString string) string {
	t, err := time.Parse(time.RFC3339, dateString)
	if err != nil {
		// supabase timestamps without zone
		t, err = time.Parse("2006-01-02T15:04:05.999999", dateString)
		if err != nil {
			return dateString
		}
	}

	return t.Format("02/01/2006 15:04")
}

func FormatRecordsReturned(count int) string {
	if count == 1 {
		return "1 registro"
	}
	return fmt.Sprintf("%d registros", count)
}

var pathSeparators = strings.NewReplacer("/", "-", "\\", "-")

// ReportFileName names a downloaded locality report: relatorio_{code}_{YYYY-MM-DD}.pdf.
// Path separators in code are replaced so the name stays a single path element.
func ReportFileName(code string, now time.Time) string {
	return fmt.Sprintf("relatorio_%s_%s.pdf", pathSeparators.Replace(code), now.UTC().Format(time.DateOnly))
}

// OrNA returns N/A for empty values
func OrNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
