package media

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTimestamp parses human timestamps of the form SS, M:SS or H:MM:SS
// into a duration. Segments after the first must be below 60.
func ParseTimestamp(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("timestamp %q: too many segments", s)
	}
	var total int64
	for i, part := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("timestamp %q: bad segment %q", s, part)
		}
		if i > 0 && n > 59 {
			return 0, fmt.Errorf("timestamp %q: segment %q exceeds 59", s, part)
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second, nil
}
