package media

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"0:10", 10 * time.Second},
		{"2:30", 150 * time.Second},
		{"1:02:03", 3723 * time.Second},
		{"90", 90 * time.Second},
		{" 0:05 ", 5 * time.Second},
	}
	for _, tc := range cases {
		got, err := ParseTimestamp(tc.in)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseTimestamp(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseTimestampRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "abc", "1:60", "1:2:3:4", "-5", "1:-2", "1:2a"} {
		if _, err := ParseTimestamp(in); err == nil {
			t.Fatalf("ParseTimestamp(%q): expected error", in)
		}
	}
}
