package media

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"
	"time"
)

func TestParsePercentLine(t *testing.T) {
	cases := []struct {
		line string
		want float64
		ok   bool
	}{
		{"[download]  42.3% of 3.37MiB at 1.05MiB/s ETA 00:02", 42.3, true},
		{"[download] 100% of 3.37MiB", 100, true},
		{"[download] Destination: song.mp3", 0, false},
		{"[ExtractAudio] Destination: song.mp3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := parsePercentLine(tc.line)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("parsePercentLine(%q) = %v, %v", tc.line, got, ok)
		}
	}
}

func TestTailOf(t *testing.T) {
	if got := tailOf("  short  ", 200); got != "short" {
		t.Fatalf("tailOf short = %q", got)
	}
	long := "aaaaabbbbb"
	if got := tailOf(long, 5); got != "...bbbbb" {
		t.Fatalf("tailOf long = %q", got)
	}
}

// stubBinary writes an executable shell script acting as the backend binary.
func stubBinary(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub")
	}
	path := filepath.Join(t.TempDir(), "stub")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFetchForwardsProgress(t *testing.T) {
	bin := stubBinary(t, `
echo "[download] Destination: out.mp3"
echo "[download]  10.0% of ~3MiB"
echo "[download] 100.0% of ~3MiB"
`)
	y := NewYTDLP(bin, time.Second)

	var got []float64
	err := y.Fetch(context.Background(), "https://youtu.be/a", FormatMP3,
		filepath.Join(t.TempDir(), "out.mp3"),
		func(pct float64) { got = append(got, pct) },
	)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []float64{10, 100}) {
		t.Fatalf("progress = %v", got)
	}
}

func TestFetchReportsBackendFailure(t *testing.T) {
	bin := stubBinary(t, `
echo "ERROR: video unavailable" >&2
exit 1
`)
	y := NewYTDLP(bin, time.Second)

	err := y.Fetch(context.Background(), "https://youtu.be/a", FormatMP3,
		filepath.Join(t.TempDir(), "out.mp3"), nil)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestSearchParsesTitleURLPairs(t *testing.T) {
	bin := stubBinary(t, `
printf 'First Song\thttps://youtu.be/1\n'
printf 'Second Song\thttps://youtu.be/2\n'
printf 'line without a tab\n'
printf '\n'
`)
	y := NewYTDLP(bin, time.Second)

	got, err := y.Search(context.Background(), "lofi", 5)
	if err != nil {
		t.Fatal(err)
	}
	want := []SearchResult{
		{Title: "First Song", Locator: "https://youtu.be/1"},
		{Title: "Second Song", Locator: "https://youtu.be/2"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("results = %v, want %v", got, want)
	}
}

func TestSearchHonorsLimit(t *testing.T) {
	bin := stubBinary(t, `
printf 'One\thttps://youtu.be/1\n'
printf 'Two\thttps://youtu.be/2\n'
printf 'Three\thttps://youtu.be/3\n'
`)
	y := NewYTDLP(bin, time.Second)

	got, err := y.Search(context.Background(), "lofi", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("results = %d, want 2", len(got))
	}
}
