package dialog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/mediabot/internal/media"
	"github.com/m3rciful/mediabot/internal/session"
)

// parseTrimRange parses "<start>-<end>" into a trim range, keeping both
// timestamps verbatim. Both sides must parse and start must come before
// end.
func parseTrimRange(text string) (*session.TrimRange, error) {
	startRaw, endRaw, ok := strings.Cut(text, "-")
	if !ok {
		return nil, fmt.Errorf("trim range %q: missing separator", text)
	}
	startRaw = strings.TrimSpace(startRaw)
	endRaw = strings.TrimSpace(endRaw)

	start, err := media.ParseTimestamp(startRaw)
	if err != nil {
		return nil, fmt.Errorf("trim start: %w", err)
	}
	end, err := media.ParseTimestamp(endRaw)
	if err != nil {
		return nil, fmt.Errorf("trim end: %w", err)
	}
	if start >= end {
		return nil, fmt.Errorf("trim range %q: start not before end", text)
	}
	return &session.TrimRange{Start: startRaw, End: endRaw}, nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
