package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatRecordOrg renders a record as an Org-mode heading with the
// structured fields in a PROPERTIES drawer.
func FormatRecordOrg(r Record) string {
	heading := fmt.Sprintf("** %s %s: %s (%s)", r.Action, r.TickerString(), r.Status, shortID(r.ID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":ID: %s\n", r.ID))
	b.WriteString(fmt.Sprintf(":RUN_ID: %s\n", r.RunID))
	b.WriteString(fmt.Sprintf(":ACTION: %s\n", r.Action))
	b.WriteString(fmt.Sprintf(":STATUS: %s\n", r.Status))
	b.WriteString(fmt.Sprintf(":TICKER: %s\n", r.TickerString()))
	b.WriteString(fmt.Sprintf(":TIME: %s\n", r.Time.UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf(":PRICE: %s\n", r.PriceString()))
	b.WriteString(":END:\n")

	return b.String()
}

// FormatRecordsOrg renders multiple records separated by blank lines.
func FormatRecordsOrg(recs []Record) string {
	var b strings.Builder
	for i, r := range recs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatRecordOrg(r))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
