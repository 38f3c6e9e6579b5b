// Package texture holds the translation job's data model: the ordered
// source lines of a file (Textures), each line's byte span (TextureLine),
// and the translator-tagged results attached to it (TranslatedLine).
package texture

// Translator identifies which translation backend produced a TranslatedLine.
// It is a closed tagged variant; adding a new backend means adding a new
// constant here and a new client under internal/translator, not an open
// interface.
type Translator string

const (
	TranslatorChatGPT Translator = "ChatGPT"
)

// TranslatedLine is one translator's result for one batch of source lines.
type TranslatedLine struct {
	Translator Translator `json:"translator"`
	Content    string     `json:"content"`
	Start      int        `json:"start"`
	End        int        `json:"end"`
}

// TextureLine is a single extracted source line.
type TextureLine struct {
	Seek       int64            `json:"seek"`
	Size       int64            `json:"size"`
	Content    string           `json:"content"`
	Skip       bool             `json:"skip"`
	Translated []TranslatedLine `json:"translated,omitempty"`
}

// Textures is the in-memory and on-disk representation of one translation
// job: the source file's extracted lines plus a resume cursor.
type Textures struct {
	Name      string        `json:"name"`
	Lines     []TextureLine `json:"lines"`
	CurrIndex int           `json:"curr_index"`
}

// New builds an empty Textures bundle for the named file.
func New(name string) *Textures {
	return &Textures{Name: name, Lines: []TextureLine{}}
}

// Clone returns a deep copy, used to give workers an immutable snapshot
// while the supervisor holds a separate mutable copy that absorbs updates.
func (t *Textures) Clone() *Textures {
	clone := &Textures{
		Name:      t.Name,
		CurrIndex: t.CurrIndex,
		Lines:     make([]TextureLine, len(t.Lines)),
	}
	for i, line := range t.Lines {
		translated := make([]TranslatedLine, len(line.Translated))
		copy(translated, line.Translated)
		line.Translated = translated
		clone.Lines[i] = line
	}
	return clone
}

// FindTranslation looks through lines[start]'s translations for the one by
// the given translator, i.e. the batch that begins at start. A
// TranslatedLine is stored only on lines[start], never on the interior
// indices of its range, so an interior index finds nothing.
func (t *Textures) FindTranslation(start int, tr Translator) (TranslatedLine, bool) {
	if start < 0 || start >= len(t.Lines) {
		return TranslatedLine{}, false
	}
	for _, tl := range t.Lines[start].Translated {
		if tl.Translator == tr {
			return tl, true
		}
	}
	return TranslatedLine{}, false
}

// Update applies one translator's result: curr_index is set to the
// batch's end (unconditionally, not clamped to a running max: workers
// finish out of order, so curr_index moving non-monotonically is an
// expected resume signal rather than a regression), and a prior
// translation by the same translator on the same start line is replaced
// in place rather than duplicated. Applying the same TranslatedLine twice
// is therefore idempotent.
func (t *Textures) Update(tl TranslatedLine) {
	t.CurrIndex = tl.End
	if tl.Start < 0 || tl.Start >= len(t.Lines) {
		return
	}
	line := &t.Lines[tl.Start]
	for i, existing := range line.Translated {
		if existing.Translator == tl.Translator {
			line.Translated[i] = tl
			return
		}
	}
	line.Translated = append(line.Translated, tl)
}
