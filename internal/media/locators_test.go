package media

import (
	"reflect"
	"testing"
)

func TestExtractLocatorsPreservesOrder(t *testing.T) {
	text := "first https://youtube.com/watch?v=a then http://youtu.be/b done"
	got := ExtractLocators(text)
	want := []string{"https://youtube.com/watch?v=a", "http://youtu.be/b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractLocators = %v, want %v", got, want)
	}
}

func TestExtractLocatorsEmpty(t *testing.T) {
	if got := ExtractLocators("just words"); len(got) != 0 {
		t.Fatalf("expected no locators, got %v", got)
	}
}

func TestContainsMediaURL(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"https://youtube.com/watch?v=abc", true},
		{"check https://YouTu.be/xyz out", true},
		{"lofi beats", false},
		{"https://example.com/video", false},
	}
	for _, tc := range cases {
		if got := ContainsMediaURL(tc.in); got != tc.want {
			t.Fatalf("ContainsMediaURL(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats() {
		got, ok := ParseFormat(string(f))
		if !ok || got != f {
			t.Fatalf("ParseFormat(%q) = %q, %v", f, got, ok)
		}
	}
	if got, ok := ParseFormat(" MP3 "); !ok || got != FormatMP3 {
		t.Fatalf("ParseFormat with spacing/case = %q, %v", got, ok)
	}
	if _, ok := ParseFormat("flac"); ok {
		t.Fatal("flac must not parse")
	}
}
