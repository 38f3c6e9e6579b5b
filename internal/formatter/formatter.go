// Package formatter implements the output-formatter contract: splitting a
// translator's raw response into per-line strings, and formatting one
// translated line against its original raw line. Three kinds are
// supported: Text, Map (mtool JSON key-value), and Template (replace).
package formatter

import (
	"regexp"
	"strings"
)

// Formatter is the polymorphic runtime choice the rewriter dispatches
// through; a tagged kind plus this small interface is sufficient (no open
// class hierarchy), per the design notes.
type Formatter interface {
	ExtractLines(response string) []string
	FormatLine(raw, translated string) string
}

func extractLines(replace, capture *regexp.Regexp, response string) []string {
	content := response
	if replace != nil {
		content = replace.ReplaceAllString(content, "\n")
	}
	var out []string
	if capture == nil {
		return out
	}
	for _, m := range capture.FindAllStringSubmatch(content, -1) {
		if len(m) > 1 {
			out = append(out, m[1])
		}
	}
	return out
}

// Text formats plain-text output: extract_lines applies a replace regex
// then an iterative capture; format_line appends a newline to the
// translated text.
type Text struct {
	Replace *regexp.Regexp
	Capture *regexp.Regexp
}

func (f Text) ExtractLines(response string) []string {
	return extractLines(f.Replace, f.Capture, response)
}

func (f Text) FormatLine(_ string, translated string) string {
	return translated + "\n"
}

// Map formats JSON key-value (mtool) output: `"<raw-trimmed>":
// "<escaped-translated>",\n`. LineWidth is the soft-wrap column for its
// escaping, mtool_opt.line_width configured; zero disables wrapping.
type Map struct {
	Replace   *regexp.Regexp
	Capture   *regexp.Regexp
	LineWidth int
}

func (f Map) ExtractLines(response string) []string {
	return extractLines(f.Replace, f.Capture, response)
}

func (f Map) FormatLine(raw, translated string) string {
	raw = strings.Trim(raw, "\n")
	escaped := EscapeJSONString(translated, f.LineWidth)
	return "\"" + raw + "\": \"" + escaped + "\",\n"
}

// Template formats a user-supplied replace expression containing the
// literal token $trans, substituted with the JSON-escaped translation,
// then spliced into the raw line by replacing the first match of a
// user-supplied capture regex.
type Template struct {
	ReplaceExpression string
	Capture           *regexp.Regexp
	// InnerReplace/InnerCapture drive ExtractLines the same way Text does;
	// Template reuses the same replace+capture-iterate contract for
	// splitting the raw response into per-line strings.
	InnerReplace *regexp.Regexp
	InnerCapture *regexp.Regexp
	LineWidth    int
}

func (f Template) ExtractLines(response string) []string {
	return extractLines(f.InnerReplace, f.InnerCapture, response)
}

func (f Template) FormatLine(raw, translated string) string {
	width := f.LineWidth
	if width == 0 {
		width = 3000
	}
	escaped := EscapeJSONString(translated, width)
	substituted := strings.ReplaceAll(f.ReplaceExpression, "$trans", escaped)
	return replaceFirstMatch(f.Capture, raw, substituted)
}

// replaceFirstMatch replaces only the first match of re in s: the capture
// regex in template output splices a single match, not every match.
func replaceFirstMatch(re *regexp.Regexp, s, replacement string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + replacement + s[loc[1]:]
}

// EscapeJSONString escapes " \ \b \f \n \r \t and, when lineWidth > 0,
// inserts a literal backslash-n every lineWidth input bytes (not runes,
// so multi-byte runes can be split across the inserted break).
func EscapeJSONString(s string, lineWidth int) string {
	var b strings.Builder
	lineLen := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
			lineLen = 0
			continue
		case '\r':
			b.WriteString(`\r`)
			lineLen = 0
			continue
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
		lineLen++
		if lineWidth > 0 && lineLen >= lineWidth {
			b.WriteString(`\n`)
			lineLen = 0
		}
	}
	return b.String()
}
