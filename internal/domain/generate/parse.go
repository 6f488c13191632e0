package generate

import (
	"encoding/json"
	"fmt"
	"strings"
)

// QuizQuestion вопрос с вариантами ответа
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      int      `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
}

// Flashcard карточка для запоминания
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// MindMapNode узел интеллект-карты
type MindMapNode struct {
	Title    string        `json:"title"`
	Children []MindMapNode `json:"children,omitempty"`
}

// ParseQuiz извлекает и проверяет вопросы из ответа модели.
func ParseQuiz(content string) ([]QuizQuestion, error) {
	var items []QuizQuestion
	if err := decodeJSON(content, '[', ']', &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: quiz is empty", ErrParse)
	}
	for i, q := range items {
		if strings.TrimSpace(q.Question) == "" {
			return nil, fmt.Errorf("%w: question %d is empty", ErrParse, i)
		}
		if len(q.Options) < 2 {
			return nil, fmt.Errorf("%w: question %d has %d options", ErrParse, i, len(q.Options))
		}
		if q.Answer < 0 || q.Answer >= len(q.Options) {
			return nil, fmt.Errorf("%w: question %d answer %d out of range", ErrParse, i, q.Answer)
		}
	}
	return items, nil
}

// ParseFlashcards извлекает и проверяет карточки из ответа модели.
func ParseFlashcards(content string) ([]Flashcard, error) {
	var items []Flashcard
	if err := decodeJSON(content, '[', ']', &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no flashcards", ErrParse)
	}
	for i, c := range items {
		if strings.TrimSpace(c.Front) == "" || strings.TrimSpace(c.Back) == "" {
			return nil, fmt.Errorf("%w: flashcard %d has an empty side", ErrParse, i)
		}
	}
	return items, nil
}

// ParseMindMap извлекает корень интеллект-карты.
func ParseMindMap(content string) (*MindMapNode, error) {
	var root MindMapNode
	if err := decodeJSON(content, '{', '}', &root); err != nil {
		return nil, err
	}
	if strings.TrimSpace(root.Title) == "" {
		return nil, fmt.Errorf("%w: mind map has no title", ErrParse)
	}
	return &root, nil
}

// decodeJSON разбирает ответ как есть, а при неудаче вырезает
// блок ```json ... ``` или фрагмент между первой open и последней close.
func decodeJSON(content string, open, close byte, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return fmt.Errorf("%w: empty output", ErrParse)
	}
	if err := json.Unmarshal([]byte(trimmed), target); err == nil {
		return nil
	}

	candidate := stripCodeFence(trimmed)
	if start := strings.IndexByte(candidate, open); start >= 0 {
		if end := strings.LastIndexByte(candidate, close); end > start {
			candidate = candidate[start : end+1]
		}
	}
	if err := json.Unmarshal([]byte(candidate), target); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	return nil
}

func stripCodeFence(s string) string {
	start := strings.Index(s, "```")
	if start < 0 {
		return s
	}
	rest := s[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	}
	if end := strings.Index(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}
