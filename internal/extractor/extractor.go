// Package extractor converts an input file into an ordered sequence of
// texture.TextureLine records, tracking byte offsets so the rewriter can
// later seek back into the original file exactly.
package extractor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/mapomagpie/lottr/internal/texture"
)

// Extractor selects a subset of lines from a file. With no regexes
// configured it runs in raw-line mode: every non-blank line is kept. With
// one or more regexes it runs in filter/capture mode: a line is kept iff at
// least one regex matches it. Either way the stored content is the whole
// raw line, not a captured group, since the rewriter needs it verbatim.
type Extractor struct {
	regexen []*regexp.Regexp
}

// New compiles the configured filter patterns. A malformed pattern is a
// configuration error and is returned immediately, before any file I/O.
func New(patterns []string) (*Extractor, error) {
	regexen := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("extractor: invalid filter regex %q: %w", p, err)
		}
		regexen = append(regexen, re)
	}
	return &Extractor{regexen: regexen}, nil
}

func (e *Extractor) accept(line string) bool {
	if len(e.regexen) == 0 {
		return strings.TrimSpace(line) != ""
	}
	for _, re := range e.regexen {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// Read walks filePath line by line, tracking a running byte offset and
// appending a TextureLine for each accepted line. The offset always
// advances by the full raw line length, whether or not the line was kept,
// so later seeks remain byte-accurate.
func (e *Extractor) Read(filePath string) (*texture.Textures, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("extractor: open %s: %w", filePath, err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	tex := texture.New(filePath)
	var seek int64

	for {
		line, err := reader.ReadString('\n')
		size := int64(len(line))
		if size > 0 && e.accept(line) {
			tex.Lines = append(tex.Lines, texture.TextureLine{
				Seek:    seek,
				Size:    size,
				Content: line,
			})
		}
		seek += size
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("extractor: read %s: %w", filePath, err)
		}
	}
	return tex, nil
}
