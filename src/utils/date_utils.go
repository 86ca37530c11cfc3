package utils

import (
	"strings"
	"time"
)

// Candidate layouts for payment dates, tried in order. ISO dates win over the
// European day-first form.
var paymentDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
}

// ParsePaymentDate parses the date-only portion of a payment timestamp
// string. Anything after a literal 'T' or a space is discarded first. The
// second return value reports whether a date could be parsed at all; an
// unparseable date is not an error, the payment just carries no date.
func ParsePaymentDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	if i := strings.IndexAny(s, "T "); i >= 0 {
		s = s[:i]
	}
	for _, layout := range paymentDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CivilDateFromUnix converts a unix timestamp to its calendar date in local
// time, normalized to UTC midnight so dates compare cleanly.
func CivilDateFromUnix(ts int64) time.Time {
	y, m, d := time.Unix(ts, 0).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
