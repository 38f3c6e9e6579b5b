// Package batcher groups texture.TextureLine sequences into prompt-sized
// BatchPackage units: a token-bounded batcher with same-prefix grouping for
// ordinary runs, and a fixed-size batcher for reprocessing diagnostic
// ranges.
package batcher

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mapomagpie/lottr/internal/texture"
	"github.com/mapomagpie/lottr/internal/tokenizer"
)

// BatchPackage is one unit of work: a prompt payload plus the inclusive
// line-index range it covers.
type BatchPackage struct {
	Payload string
	Start   int
	End     int
}

// fixedBatchSize is the sub-batch length used for reprocessing ranges.
const fixedBatchSize = 4

// TokenBounded accumulates lines starting at start, tallying tokens via
// counter. It yields the batch once the cumulative token count exceeds
// maxTokens AND the next line's leading rune differs from the run of
// lines collected so far (same-prefix grouping keeps matching runs
// together past budget). It always consumes at least one line.
func TokenBounded(tex *texture.Textures, start int, counter tokenizer.Counter, maxTokens int) (payload string, size int) {
	var b strings.Builder
	total := 0
	var prefix rune
	havePrefix := false
	i := start

	for i < len(tex.Lines) {
		line := tex.Lines[i]
		total += counter.Count(line.Content)

		r, _ := utf8.DecodeRuneInString(line.Content)
		sameRun := havePrefix && r == prefix
		if !sameRun {
			prefix = r
			havePrefix = true
		}

		if !sameRun && total > maxTokens && b.Len() > 0 {
			break
		}

		fmt.Fprintf(&b, "(%d) %s\n", i-start+1, strings.TrimSuffix(line.Content, "\n"))
		i++
	}
	return b.String(), i - start
}

// BuildQueue constructs the full work queue for one orchestrator run. When
// specifyRange is non-empty it wins over curr_index: each range is split
// into fixed-size sub-batches via FixedSize. Otherwise the token-bounded
// batcher walks the full line sequence starting at curr_index. Either way
// the resulting queue is reversed so workers popping from the tail drain
// in source order (a LIFO stack).
func BuildQueue(tex *texture.Textures, specifyRange [][2]int, counter tokenizer.Counter, maxTokens int) []BatchPackage {
	var queue []BatchPackage
	if len(specifyRange) > 0 {
		queue = FixedSize(tex, specifyRange)
	} else {
		i := tex.CurrIndex
		for i < len(tex.Lines) {
			payload, size := TokenBounded(tex, i, counter, maxTokens)
			if size == 0 {
				break
			}
			queue = append(queue, BatchPackage{Payload: payload, Start: i, End: i + size - 1})
			i += size
		}
	}
	reverse(queue)
	return queue
}

// FixedSize splits each (start, end) range into fixedBatchSize-line
// sub-batches, numbering lines 1-based within each sub-batch.
func FixedSize(tex *texture.Textures, ranges [][2]int) []BatchPackage {
	var queue []BatchPackage
	for _, r := range ranges {
		start, end := r[0], r[1]
		var b strings.Builder
		size := 0
		subStart := start
		for i := start; i <= end; i++ {
			size++
			fmt.Fprintf(&b, "%d. %s\n", size, tex.Lines[i].Content)
			if size == fixedBatchSize || i == end {
				queue = append(queue, BatchPackage{Payload: b.String(), Start: subStart, End: i})
				b.Reset()
				size = 0
				subStart = i + 1
			}
		}
	}
	return queue
}

func reverse(queue []BatchPackage) {
	for i, j := 0, len(queue)-1; i < j; i, j = i+1, j-1 {
		queue[i], queue[j] = queue[j], queue[i]
	}
}
