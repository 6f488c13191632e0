package generate

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"studynotes/internal/domain/note"
)

// Kind вид учебного материала
type Kind string

const (
	KindSummary    Kind = "summary"
	KindQuiz       Kind = "quiz"
	KindFlashcards Kind = "flashcards"
	KindMindMap    Kind = "mindmap"
	KindChat       Kind = "chat"
)

func (k Kind) Validate() error {
	switch k {
	case KindSummary, KindQuiz, KindFlashcards, KindMindMap, KindChat:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, k)
}

const (
	DefaultMaxPromptRunes = 48000
	truncationMarker      = "\n\n[... content truncated ...]"
)

const systemPrompt = "You are a study assistant. You turn lecture transcripts and documents into accurate, well-structured study materials. Use only facts present in the provided content."

var templates = template.Must(template.New("prompts").Parse(`
{{define "summary"}}Create study notes for the {{.Source}} below.
Answer in Markdown and follow this skeleton exactly:

# {{.Title}}

## Summary
<two or three paragraphs>

## Key Points
- <point>

## Details
<sections with the important explanations, definitions and examples>

## Conclusion
<short wrap-up>

Content:
"""
{{.Content}}
"""{{end}}

{{define "quiz"}}Write {{.Count}} multiple-choice questions that test understanding of "{{.Title}}".
Respond with a JSON array only. Each item must look like
{"question": "...", "options": ["...", "...", "...", "..."], "answer": 0, "explanation": "..."}
where "answer" is the zero-based index of the correct option.

Content:
"""
{{.Content}}
"""{{end}}

{{define "flashcards"}}Write {{.Count}} flashcards for memorising "{{.Title}}".
Respond with a JSON array only. Each item must look like
{"front": "...", "back": "..."}

Content:
"""
{{.Content}}
"""{{end}}

{{define "mindmap"}}Build a mind map of "{{.Title}}".
Respond with a JSON object only, shaped like
{"title": "...", "children": [{"title": "...", "children": []}]}
Keep at most three levels of depth.

Content:
"""
{{.Content}}
"""{{end}}

{{define "chat"}}You are answering questions about the note "{{.Title}}".
Use the content below as the source of truth. If the answer is not in it, say so.

Content:
"""
{{.Content}}
"""{{end}}
`))

type promptData struct {
	Title   string
	Source  string
	Content string
	Count   int
}

// PromptRenderer рендерит промпты с ограничением на длину содержимого
type PromptRenderer struct {
	maxRunes int
	count    int
}

func NewPromptRenderer(maxRunes int) *PromptRenderer {
	if maxRunes <= 0 {
		maxRunes = DefaultMaxPromptRunes
	}
	return &PromptRenderer{maxRunes: maxRunes, count: 10}
}

// Render собирает промпт для заметки. Для chat результат используется
// как системная инструкция.
func (r *PromptRenderer) Render(kind Kind, n note.Note) (string, error) {
	if err := kind.Validate(); err != nil {
		return "", err
	}
	content := strings.TrimSpace(n.Content)
	if content == "" {
		return "", ErrEmptyContent
	}

	data := promptData{
		Title:   n.Title,
		Source:  sourceLabel(n.SourceType),
		Content: Truncate(content, r.maxRunes),
		Count:   r.count,
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, string(kind), data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", kind, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Truncate обрезает строку до maxRunes символов по границе руны и добавляет метку.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	i, n := 0, 0
	for i < len(s) && n < maxRunes {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		n++
	}
	return s[:i] + truncationMarker
}

func sourceLabel(t note.SourceType) string {
	switch t {
	case note.SourceAudio:
		return "audio recording transcript"
	case note.SourceVideo:
		return "video transcript"
	case note.SourceUpload:
		return "uploaded document"
	default:
		return "text"
	}
}
