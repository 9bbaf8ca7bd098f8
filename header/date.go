package header

import (
	"strings"
	"time"
)

// dateLayouts are the RFC 5322 §3.3 date-time layouts this package
// accepts, in order of preference, plus a handful of RFC 822 obsolete
// forms (two-digit year, missing seconds) real-world mail still sends.
var dateLayouts = []string{
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04 -0700",
	"Mon, 2 Jan 06 15:04:05 -0700",
	"2 Jan 06 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
	"Mon, 2 Jan 2006 15:04:05",
	"2 Jan 2006 15:04:05",
}

// namedZoneOffsets maps the North American zone abbreviations RFC 5322
// §4.3 grandfathers in to their UTC offsets in seconds. time.Parse
// recognizes the names but, without location data, assigns them a zero
// offset; this table restores the real one.
var namedZoneOffsets = map[string]int{
	"EST": -5 * 3600, "EDT": -4 * 3600,
	"CST": -6 * 3600, "CDT": -5 * 3600,
	"MST": -7 * 3600, "MDT": -6 * 3600,
	"PST": -8 * 3600, "PDT": -7 * 3600,
	"GMT": 0, "UT": 0, "UTC": 0,
}

// ParseDate parses the value of a Date header, tolerating the obsolete
// forms real-world MTAs still emit (two-digit years, a trailing zone
// comment, a missing day-of-week).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			if name, off := t.Zone(); off == 0 {
				if fix, ok := namedZoneOffsets[name]; ok && fix != 0 {
					t = t.Add(time.Duration(-fix) * time.Second).In(time.FixedZone(name, fix))
				} else if name == "" || !ok {
					// no zone in the input at all: assume UTC
					t = t.UTC()
				}
			}
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// FormatDate renders t in the canonical RFC 5322 §3.3 form used for
// outgoing Date headers.
func FormatDate(t time.Time) string {
	return t.Format("Mon, 2 Jan 2006 15:04:05 -0700")
}
