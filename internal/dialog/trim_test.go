package dialog

import "testing"

func TestParseTrimRangeKeepsVerbatimStamps(t *testing.T) {
	got, err := parseTrimRange("0:10-2:30")
	if err != nil {
		t.Fatal(err)
	}
	if got.Start != "0:10" || got.End != "2:30" {
		t.Fatalf("range = %+v", got)
	}
}

func TestParseTrimRangeRejections(t *testing.T) {
	cases := []string{
		"",
		"0:10",
		"0:10-",
		"-2:30",
		"abc-def",
		"2:30-0:10", // start after end
		"1:00-1:00", // empty range
		"0:10-1:99",
	}
	for _, in := range cases {
		if _, err := parseTrimRange(in); err == nil {
			t.Fatalf("parseTrimRange(%q): expected error", in)
		}
	}
}
