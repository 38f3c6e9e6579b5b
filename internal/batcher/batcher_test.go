package batcher

import (
	"reflect"
	"testing"

	"github.com/mapomagpie/lottr/internal/texture"
)

type constCounter struct{ n int }

func (c constCounter) Count(string) int { return c.n }

func linesFrom(contents []string) *texture.Textures {
	tex := texture.New("job")
	for _, c := range contents {
		tex.Lines = append(tex.Lines, texture.TextureLine{Content: c})
	}
	return tex
}

func TestTokenBoundedSamePrefixHoldsWholeBatch(t *testing.T) {
	contents := make([]string, 8)
	for i := range contents {
		contents[i] = "你好\n"
	}
	tex := linesFrom(contents)
	_, size := TokenBounded(tex, 0, constCounter{n: 1}, 1)
	if size != 8 {
		t.Fatalf("size = %d, want 8 (same-prefix grouping must hold the whole run together)", size)
	}
}

func TestTokenBoundedSplitsOnPrefixChange(t *testing.T) {
	contents := []string{"X1\n", "X2\n", "X3\n", "X4\n", " 5\n", " 6\n", " 7\n", " 8\n"}
	tex := linesFrom(contents)

	_, first := TokenBounded(tex, 0, constCounter{n: 1}, 1)
	if first != 4 {
		t.Fatalf("first batch size = %d, want 4", first)
	}
	_, second := TokenBounded(tex, first, constCounter{n: 1}, 1)
	if second != 4 {
		t.Fatalf("second batch size = %d, want 4", second)
	}
}

func TestTokenBoundedAlwaysAdvances(t *testing.T) {
	contents := []string{"a\n", "b\n", "c\n"}
	tex := linesFrom(contents)
	_, size := TokenBounded(tex, 0, constCounter{n: 1000}, 1)
	if size < 1 {
		t.Fatal("batcher must consume at least one line per call")
	}
}

func TestTokenBoundedNumbering(t *testing.T) {
	contents := []string{"A\n", "B\n"}
	tex := linesFrom(contents)
	payload, _ := TokenBounded(tex, 0, constCounter{n: 0}, 1000)
	want := "(1) A\n(2) B\n"
	if payload != want {
		t.Fatalf("payload = %q, want %q", payload, want)
	}
}

func TestFixedSizeSplitsRanges(t *testing.T) {
	contents := make([]string, 24)
	for i := range contents {
		contents[i] = "line\n"
	}
	tex := linesFrom(contents)

	ranges := [][2]int{{0, 1}, {2, 10}, {21, 23}}
	queue := FixedSize(tex, ranges)

	var got [][2]int
	for _, bp := range queue {
		got = append(got, [2]int{bp.Start, bp.End})
	}
	want := [][2]int{{0, 1}, {2, 5}, {6, 9}, {10, 10}, {21, 23}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sub-batch ranges = %v, want %v", got, want)
	}
}

func TestBuildQueueReversedForLIFOPop(t *testing.T) {
	contents := make([]string, 6)
	for i := range contents {
		contents[i] = "x\n"
	}
	tex := linesFrom(contents)

	queue := BuildQueue(tex, nil, constCounter{n: 1000}, 1)
	if len(queue) == 0 {
		t.Fatal("expected a non-empty queue")
	}
	last := queue[len(queue)-1]
	if last.Start != 0 {
		t.Fatalf("tail of queue should be the first source batch; got start=%d", last.Start)
	}
}

func TestBuildQueuePrefersSpecifyRange(t *testing.T) {
	contents := make([]string, 10)
	for i := range contents {
		contents[i] = "x\n"
	}
	tex := linesFrom(contents)
	tex.CurrIndex = 5

	queue := BuildQueue(tex, [][2]int{{0, 3}}, constCounter{n: 1000}, 1)
	if len(queue) != 1 || queue[0].Start != 0 || queue[0].End != 3 {
		t.Fatalf("specify_range should win over curr_index: got %+v", queue)
	}
}
