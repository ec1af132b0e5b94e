package media

import (
	"context"
	"testing"
	"time"
)

func TestProcessRejectsInvalidWindows(t *testing.T) {
	f := NewFFmpeg("ffmpeg", time.Second)
	cases := []Window{
		{},                                             // nothing selected
		{Start: "0:10"},                                // missing end
		{End: "0:20"},                                  // missing start
		{Start: "0:10", End: "0:20", Duration: 10 * time.Second}, // both
	}
	for _, w := range cases {
		if err := f.Process(context.Background(), "in.mp3", "out.mp3", w); err == nil {
			t.Fatalf("Process(%+v): expected error", w)
		}
	}
}

func TestProcessTrimWindow(t *testing.T) {
	bin := stubBinary(t, `exit 0`)
	f := NewFFmpeg(bin, time.Second)

	err := f.Process(context.Background(), "in.mp3", "out.mp3", Window{Start: "0:10", End: "2:30"})
	if err != nil {
		t.Fatal(err)
	}
}

func TestProcessSurfacesStderrTail(t *testing.T) {
	bin := stubBinary(t, `
echo "in.mp3: Invalid data found when processing input" >&2
exit 1
`)
	f := NewFFmpeg(bin, time.Second)

	err := f.Process(context.Background(), "in.mp3", "out.mp3", Window{Duration: 10 * time.Second})
	if err == nil {
		t.Fatal("expected error")
	}
}
