package orangebook

import (
	"strings"
	"time"

	"github.com/deeyajkotecha-del/helix-biotech-sub002/entities"
)

// Layouts seen in the Orange Book date columns, most common first
var orangeBookDateLayouts = []string{
	"Jan 2, 2006",
	"Jan 02, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
}

// ParseOrangeBookDate converts free-text dates such as "Oct 17, 2036" to an
// ISO date. Empty or unrecognised text gives an empty date; callers keep the
// raw text next to the result.
func ParseOrangeBookDate(raw string) entities.ISODate {
	value := strings.Join(strings.Fields(raw), " ")
	if value == "" {
		return ""
	}

	for _, layout := range orangeBookDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return entities.NewISODate(t)
		}
	}

	return ""
}
