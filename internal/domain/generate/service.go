package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slog"

	"studynotes/internal/domain/note"
)

const maxChatHistory = 20

// NoteStore доступ к заметкам пользователя
type NoteStore interface {
	GetNote(ctx context.Context, userID int, id string) (*note.Note, error)
	Save(ctx context.Context, n *note.Note) error
}

type Servicer interface {
	Generate(ctx context.Context, userID int, noteID string, kind Kind) (*Result, error)
	Chat(ctx context.Context, userID int, noteID string, history []Message, message string) (string, error)
}

// Result итог генерации
type Result struct {
	Kind       Kind           `json:"kind"`
	Note       *note.Note     `json:"note"`
	Output     string         `json:"output"`
	Quiz       []QuizQuestion `json:"quiz,omitempty"`
	Flashcards []Flashcard    `json:"flashcards,omitempty"`
	MindMap    *MindMapNode   `json:"mind_map,omitempty"`
}

type Service struct {
	notes     NoteStore
	completer Completer
	prompts   *PromptRenderer
	log       *slog.Logger
}

func NewService(notes NoteStore, completer Completer, prompts *PromptRenderer, log *slog.Logger) *Service {
	return &Service{
		notes:     notes,
		completer: completer,
		prompts:   prompts,
		log:       log.With("component", "generate_service"),
	}
}

// Generate строит материал указанного вида и сохраняет его в заметке.
// Статус заметки проходит processing, затем ready или failed.
func (s *Service) Generate(ctx context.Context, userID int, noteID string, kind Kind) (*Result, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	if kind == KindChat {
		return nil, fmt.Errorf("%w: chat is not stored, use Chat", ErrUnknownKind)
	}

	n, err := s.notes.GetNote(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}
	prompt, err := s.prompts.Render(kind, *n)
	if err != nil {
		return nil, err
	}

	n.Status = note.StatusProcessing
	if err := s.notes.Save(ctx, n); err != nil {
		return nil, err
	}

	result, genErr := s.run(ctx, kind, n, prompt)
	if genErr != nil {
		n.Status = note.StatusFailed
		if err := s.notes.Save(ctx, n); err != nil {
			s.log.Error("failed to mark note as failed", "note_id", n.ID, "error", err)
		}
		s.log.Warn("generation failed", "note_id", n.ID, "kind", kind, "error", genErr)
		return nil, genErr
	}

	n.Status = note.StatusReady
	if err := s.notes.Save(ctx, n); err != nil {
		return nil, err
	}

	s.log.Info("generation finished", "note_id", n.ID, "kind", kind, "output_len", len(result.Output))
	result.Note = n
	return result, nil
}

// run вызывает модель и раскладывает ответ по полям заметки
func (s *Service) run(ctx context.Context, kind Kind, n *note.Note, prompt string) (*Result, error) {
	output, err := s.completer.Complete(ctx, Request{
		System:   systemPrompt,
		Messages: []Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, err
	}

	result := &Result{Kind: kind, Output: output}
	switch kind {
	case KindSummary:
		n.AIContent = output
	case KindQuiz:
		if result.Quiz, err = ParseQuiz(output); err != nil {
			return nil, err
		}
		if n.Supplementary, err = mergeSupplementary(n.Supplementary, kind, result.Quiz); err != nil {
			return nil, err
		}
	case KindFlashcards:
		if result.Flashcards, err = ParseFlashcards(output); err != nil {
			return nil, err
		}
		if n.Supplementary, err = mergeSupplementary(n.Supplementary, kind, result.Flashcards); err != nil {
			return nil, err
		}
	case KindMindMap:
		if result.MindMap, err = ParseMindMap(output); err != nil {
			return nil, err
		}
		if n.MindMap, err = json.Marshal(result.MindMap); err != nil {
			return nil, fmt.Errorf("encode mind map: %w", err)
		}
	}
	return result, nil
}

// mergeSupplementary кладет материал в JSON-документ под ключом вида,
// сохраняя остальные ключи. Документ не в формате JSON заменяется.
func mergeSupplementary(existing []byte, kind Kind, value any) ([]byte, error) {
	doc := map[string]json.RawMessage{}
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &doc); err != nil {
			doc = map[string]json.RawMessage{}
		}
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	doc[string(kind)] = raw
	return json.Marshal(doc)
}

// Supplementary читает сохраненный материал вида kind из заметки
func Supplementary(n note.Note, kind Kind, target any) (bool, error) {
	if len(n.Supplementary) == 0 {
		return false, nil
	}
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(n.Supplementary, &doc); err != nil {
		return false, fmt.Errorf("%w: supplementary: %v", ErrParse, err)
	}
	raw, ok := doc[string(kind)]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrParse, kind, err)
	}
	return true, nil
}

// Chat отвечает на вопрос по содержимому заметки. История не хранится.
func (s *Service) Chat(ctx context.Context, userID int, noteID string, history []Message, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("%w: message is empty", note.ErrInvalidInput)
	}

	n, err := s.notes.GetNote(ctx, userID, noteID)
	if err != nil {
		return "", err
	}
	system, err := s.prompts.Render(KindChat, *n)
	if err != nil {
		return "", err
	}

	if len(history) > maxChatHistory {
		history = history[len(history)-maxChatHistory:]
	}
	messages := make([]Message, 0, len(history)+1)
	for _, m := range history {
		if m.Role != "user" && m.Role != "assistant" {
			return "", fmt.Errorf("%w: unknown role %q", note.ErrInvalidInput, m.Role)
		}
		messages = append(messages, m)
	}
	messages = append(messages, Message{Role: "user", Content: message})

	reply, err := s.completer.Complete(ctx, Request{System: system, Messages: messages})
	if err != nil {
		if !errors.Is(err, ErrCompletion) && !errors.Is(err, ErrParse) {
			err = fmt.Errorf("%w: %v", ErrCompletion, err)
		}
		return "", err
	}
	return reply, nil
}
