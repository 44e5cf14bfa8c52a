package youtube

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	hoursRe   = regexp.MustCompile(`(\d+)H`)
	minutesRe = regexp.MustCompile(`(\d+)M`)
	secondsRe = regexp.MustCompile(`(\d+)S`)
)

// ParseISODuration converts an ISO 8601 duration token as returned by the
// videos endpoint (e.g. "PT1H2M30S") into a time.Duration. Each segment is
// optional; segments that are missing or fail to match contribute zero
// seconds rather than producing an error. This matches the lenient handling
// the directory service's occasionally odd tokens (live streams report
// "P0D") require.
func ParseISODuration(s string) time.Duration {
	s = strings.TrimPrefix(s, "PT")

	var total int64
	if m := hoursRe.FindStringSubmatch(s); m != nil {
		n, _ := strconv.ParseInt(m[1], 10, 64)
		total += n * 3600
	}
	if m := minutesRe.FindStringSubmatch(s); m != nil {
		n, _ := strconv.ParseInt(m[1], 10, 64)
		total += n * 60
	}
	if m := secondsRe.FindStringSubmatch(s); m != nil {
		n, _ := strconv.ParseInt(m[1], 10, 64)
		total += n
	}

	return time.Duration(total) * time.Second
}
