// Package rewriter splices translated content back into a byte-accurate
// copy of the original file: untranslated bytes pass through verbatim,
// shape-mismatched batches are skipped (their source bytes pass through
// unchanged) and recorded as a diagnostic range for the next run.
package rewriter

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mapomagpie/lottr/internal/formatter"
	"github.com/mapomagpie/lottr/internal/texture"
)

const copyBufferSize = 8192

// Result reports what the rewrite produced.
type Result struct {
	OutputPath       string
	DiagnosticRanges [][2]int
}

// Write walks tex.Lines against the original file at srcPath, producing
// outPath. Only translations by tr are considered. Diagnostics (per-line
// diffs for shape-mismatched batches) are written to diag.
func Write(tex *texture.Textures, tr texture.Translator, f formatter.Formatter, srcPath, outPath string, diag io.Writer) (Result, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return Result{}, fmt.Errorf("rewriter: open source %s: %w", srcPath, err)
	}
	defer src.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return Result{}, fmt.Errorf("rewriter: create output %s: %w", outPath, err)
	}
	defer out.Close()

	reader := bufio.NewReaderSize(src, copyBufferSize)
	writer := bufio.NewWriter(out)
	defer writer.Flush()

	var lastReadAt, preReadAt int64
	var failedRanges [][2]int

	i := 0
	for i < len(tex.Lines) {
		line := tex.Lines[i]
		translated, ok := tex.FindTranslation(i, tr)
		if !ok {
			i++
			continue
		}

		if line.Seek > preReadAt {
			if err := copyThrough(reader, writer, &lastReadAt, &preReadAt, line.Seek); err != nil {
				return Result{}, err
			}
		}

		extracted := f.ExtractLines(translated.Content)
		want := translated.End - translated.Start + 1
		if len(extracted) != want {
			failedRanges = append(failedRanges, [2]int{translated.Start, translated.End})
			reportMismatch(diag, tex, translated, extracted)
			i = translated.End + 1
			continue
		}

		lastLineIdx := translated.Start
		for j, tline := range extracted {
			srcLine := tex.Lines[translated.Start+j]
			if _, err := writer.WriteString(f.FormatLine(srcLine.Content, tline)); err != nil {
				return Result{}, fmt.Errorf("rewriter: write output: %w", err)
			}
			lastLineIdx = translated.Start + j
		}
		preReadAt = tex.Lines[lastLineIdx].Seek + tex.Lines[lastLineIdx].Size
		i = translated.End + 1
	}

	if err := flushRemaining(reader, writer, &lastReadAt, &preReadAt); err != nil {
		return Result{}, err
	}
	if err := writer.Flush(); err != nil {
		return Result{}, fmt.Errorf("rewriter: flush output: %w", err)
	}

	return Result{OutputPath: outPath, DiagnosticRanges: failedRanges}, nil
}

// copyThrough streams original bytes from the current read position up to
// target, seeking forward to skip bytes already copied.
func copyThrough(reader *bufio.Reader, writer *bufio.Writer, lastReadAt, preReadAt *int64, target int64) error {
	skip := *preReadAt - *lastReadAt
	if skip > 0 {
		if _, err := reader.Discard(int(skip)); err != nil {
			return fmt.Errorf("rewriter: seek source: %w", err)
		}
		*lastReadAt = *preReadAt
	}
	toCopy := target - *preReadAt
	buf := make([]byte, copyBufferSize)
	for toCopy > 0 {
		n := int64(len(buf))
		if n > toCopy {
			n = toCopy
		}
		read, err := io.ReadFull(reader, buf[:n])
		if read > 0 {
			if _, werr := writer.Write(buf[:read]); werr != nil {
				return fmt.Errorf("rewriter: write passthrough bytes: %w", werr)
			}
			*lastReadAt += int64(read)
			*preReadAt += int64(read)
			toCopy -= int64(read)
		}
		if err != nil {
			return fmt.Errorf("rewriter: read source: %w", err)
		}
	}
	return nil
}

func flushRemaining(reader *bufio.Reader, writer *bufio.Writer, lastReadAt, preReadAt *int64) error {
	skip := *preReadAt - *lastReadAt
	if skip > 0 {
		if _, err := reader.Discard(int(skip)); err != nil {
			return fmt.Errorf("rewriter: seek source: %w", err)
		}
		*lastReadAt = *preReadAt
	}
	if _, err := io.Copy(writer, reader); err != nil {
		return fmt.Errorf("rewriter: flush remaining source bytes: %w", err)
	}
	return nil
}

func reportMismatch(diag io.Writer, tex *texture.Textures, tl texture.TranslatedLine, extracted []string) {
	if diag == nil {
		return
	}
	fmt.Fprintf(diag, "shape mismatch in batch (%d, %d): expected %d lines, got %d\n",
		tl.Start, tl.End, tl.End-tl.Start+1, len(extracted))
	for j := 0; j < len(extracted) && tl.Start+j <= tl.End; j++ {
		fmt.Fprintf(diag, "  raw: %q\n  got: %q\n", tex.Lines[tl.Start+j].Content, extracted[j])
	}
}
