package logformat

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TimestampParser detects and parses timestamps from log lines
type TimestampParser struct {
	patterns []timestampPattern
	now      func() time.Time
}

type timestampPattern struct {
	regex   *regexp.Regexp
	layouts []string
}

const (
	layoutUnix   = "unix"
	layoutUnixMs = "unix_ms"
	layoutNano   = "unix_nsec"
)

// NewTimestampParser creates a parser with common timestamp formats
func NewTimestampParser() *TimestampParser {
	return &TimestampParser{
		now: time.Now,
		patterns: []timestampPattern{
			// 2024-01-15T10:30:45.123Z, 2024-01-15T10:30:45.123456+00:00
			{
				regex:   regexp.MustCompile(`(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2}))`),
				layouts: []string{time.RFC3339Nano},
			},
			// [2024-01-15 10:30:45.123] or 2024-01-15 10:30:45.123
			{
				regex:   regexp.MustCompile(`(\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}(?:\.\d+)?)`),
				layouts: []string{"2006-01-02 15:04:05.999999999", "2006-01-02T15:04:05.999999999"},
			},
			// ROS style seconds.fraction: [1705315845.123456789], 1705315845.25
			{
				regex:   regexp.MustCompile(`^\[?(\d{10}\.\d{1,9})(?:\D|$)`),
				layouts: []string{layoutNano},
			},
			// 15/Jan/2024:10:30:45 +0000
			{
				regex:   regexp.MustCompile(`(\d{2}/[A-Z][a-z]{2}/\d{4}:\d{2}:\d{2}:\d{2} [+-]\d{4})`),
				layouts: []string{"02/Jan/2006:15:04:05 -0700"},
			},
			// Jan 15 10:30:45
			{
				regex:   regexp.MustCompile(`([A-Z][a-z]{2} +\d{1,2} \d{2}:\d{2}:\d{2})`),
				layouts: []string{time.Stamp},
			},
			// 1705315845123
			{
				regex:   regexp.MustCompile(`^(\d{13})(?:[^\d.]|$)`),
				layouts: []string{layoutUnixMs},
			},
			// 1705315845
			{
				regex:   regexp.MustCompile(`^(\d{10})(?:[^\d.]|$)`),
				layouts: []string{layoutUnix},
			},
		},
	}
}

// Parse attempts to extract a timestamp from a log line
func (p *TimestampParser) Parse(content []byte) (time.Time, bool) {
	for _, pattern := range p.patterns {
		matches := pattern.regex.FindSubmatch(content)
		if len(matches) < 2 {
			continue
		}
		if t, ok := p.parseMatch(string(matches[1]), pattern.layouts); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func (p *TimestampParser) parseMatch(s string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		switch layout {
		case layoutUnix, layoutUnixMs:
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				continue
			}
			if layout == layoutUnixMs {
				return time.UnixMilli(n), true
			}
			return time.Unix(n, 0), true

		case layoutNano:
			return ParseSecNsec(s)

		default:
			t, err := time.Parse(layout, s)
			if err != nil {
				continue
			}
			// Syslog stamps carry no year
			if layout == time.Stamp {
				t = time.Date(p.now().Year(), t.Month(), t.Day(),
					t.Hour(), t.Minute(), t.Second(), 0, time.Local)
			}
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseSecNsec parses "sec.nsec" as written by absolute display stamps
func ParseSecNsec(s string) (time.Time, bool) {
	secStr, frac, hasFrac := strings.Cut(s, ".")
	sec, err := strconv.ParseInt(secStr, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	if !hasFrac {
		return time.Unix(sec, 0), true
	}

	if len(frac) > 9 {
		frac = frac[:9]
	}
	frac += strings.Repeat("0", 9-len(frac))
	nsec, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(sec, nsec), true
}
