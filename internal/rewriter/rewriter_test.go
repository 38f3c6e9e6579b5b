package rewriter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mapomagpie/lottr/internal/texture"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "src.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// identityFormatter extracts one line per newline and writes it back
// unchanged, used to test rewrite identity.
type identityFormatter struct{}

func (identityFormatter) ExtractLines(response string) []string {
	lines := []string{}
	for _, l := range splitLines(response) {
		lines = append(lines, l)
	}
	return lines
}
func (identityFormatter) FormatLine(_ string, translated string) string {
	return translated + "\n"
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return out
}

func TestRewriteIdentity(t *testing.T) {
	content := "alpha\nbeta\ngamma\n"
	src := writeFile(t, content)

	tex := texture.New(src)
	tex.Lines = []texture.TextureLine{
		{Seek: 0, Size: 6, Content: "alpha\n"},
		{Seek: 6, Size: 5, Content: "beta\n"},
		{Seek: 11, Size: 6, Content: "gamma\n"},
	}
	tex.Update(texture.TranslatedLine{
		Translator: texture.TranslatorChatGPT,
		Content:    "alpha\nbeta\ngamma\n",
		Start:      0, End: 2,
	})

	out := filepath.Join(t.TempDir(), "out.txt")
	if _, err := Write(tex, texture.TranslatorChatGPT, identityFormatter{}, src, out, nil); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != content {
		t.Fatalf("got %q, want %q", got, content)
	}
}

func TestRewriteUnmatchedPassThrough(t *testing.T) {
	content := "one\ntwo\nthree\n"
	src := writeFile(t, content)

	tex := texture.New(src)
	tex.Lines = []texture.TextureLine{
		{Seek: 0, Size: 4, Content: "one\n"},
		{Seek: 4, Size: 4, Content: "two\n"},
		{Seek: 8, Size: 6, Content: "three\n"},
	}
	// No translations at all: every line should pass through unchanged.
	out := filepath.Join(t.TempDir(), "out.txt")
	res, err := Write(tex, texture.TranslatorChatGPT, identityFormatter{}, src, out, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != content {
		t.Fatalf("got %q, want %q", got, content)
	}
	if len(res.DiagnosticRanges) != 0 {
		t.Fatalf("expected no diagnostic ranges, got %v", res.DiagnosticRanges)
	}
}

func TestRewriteShapeMismatchRecordsRangeAndPassesThrough(t *testing.T) {
	lineContents := make([]string, 15)
	var content bytes.Buffer
	seeks := make([]int64, 15)
	for i := range lineContents {
		lineContents[i] = "line\n"
		seeks[i] = int64(content.Len())
		content.WriteString(lineContents[i])
	}
	src := writeFile(t, content.String())

	tex := texture.New(src)
	for i, c := range lineContents {
		tex.Lines = append(tex.Lines, texture.TextureLine{Seek: seeks[i], Size: int64(len(c)), Content: c})
	}
	// Batch covers lines 10-14 (size 5); translator response extracts to
	// only 4 lines, a shape mismatch per the diagnostic scenario.
	tex.Update(texture.TranslatedLine{
		Translator: texture.TranslatorChatGPT,
		Content:    "a\nb\nc\nd\n",
		Start:      10, End: 14,
	})

	out := filepath.Join(t.TempDir(), "out.txt")
	var diag bytes.Buffer
	res, err := Write(tex, texture.TranslatorChatGPT, identityFormatter{}, src, out, &diag)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.DiagnosticRanges) != 1 || res.DiagnosticRanges[0] != [2]int{10, 14} {
		t.Fatalf("got diagnostic ranges %v, want [[10 14]]", res.DiagnosticRanges)
	}
	if diag.Len() == 0 {
		t.Fatal("expected a diagnostic diff to be written")
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != content.String() {
		t.Fatal("mismatched batch bytes should pass through unchanged")
	}
}
