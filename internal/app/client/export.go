package client

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"
)

// frontMatter метаданные заметки в заголовке markdown-файла
type frontMatter struct {
	ID        string    `yaml:"id"`
	Title     string    `yaml:"title"`
	Source    string    `yaml:"source"`
	SourceURL string    `yaml:"source_url,omitempty"`
	Status    string    `yaml:"status"`
	Folder    string    `yaml:"folder,omitempty"`
	Favorite  bool      `yaml:"favorite,omitempty"`
	Tags      []string  `yaml:"tags,omitempty"`
	Version   int       `yaml:"version"`
	CreatedAt time.Time `yaml:"created"`
	UpdatedAt time.Time `yaml:"updated"`
}

// RenderMarkdown собирает markdown с YAML front matter: конспект,
// затем исходный текст.
func RenderMarkdown(n *LocalNote, folderName string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("---\n")
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(frontMatter{
		ID:        n.ID,
		Title:     n.Title,
		Source:    string(n.SourceType),
		SourceURL: n.SourceURL,
		Status:    string(n.Status),
		Folder:    folderName,
		Favorite:  n.Favorite,
		Tags:      n.Tags,
		Version:   n.Version,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}); err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	buf.WriteString("---\n\n")

	fmt.Fprintf(&buf, "# %s\n", n.Title)
	if s := strings.TrimSpace(n.AIContent); s != "" {
		fmt.Fprintf(&buf, "\n## Summary\n\n%s\n", s)
	}
	if s := strings.TrimSpace(n.Content); s != "" {
		fmt.Fprintf(&buf, "\n## Content\n\n%s\n", s)
	}

	return buf.Bytes(), nil
}

// ExportNote записывает заметку в dir и возвращает путь к файлу
func (a *App) ExportNote(ctx context.Context, idOrPrefix, dir string) (string, error) {
	n, err := a.GetNote(ctx, idOrPrefix)
	if err != nil {
		return "", err
	}
	return a.export(ctx, n, dir)
}

// ExportAll выгружает все живые заметки
func (a *App) ExportAll(ctx context.Context, dir string) ([]string, error) {
	notes, err := a.storage.ListNotes(ctx, NoteFilter{})
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(notes))
	for _, n := range notes {
		p, err := a.export(ctx, n, dir)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func (a *App) export(ctx context.Context, n *LocalNote, dir string) (string, error) {
	if dir == "" {
		dir = a.config.ExportDir
	}

	var folderName string
	if n.FolderID != nil {
		if f, err := a.storage.GetFolder(ctx, *n.FolderID); err == nil && !f.IsDeleted() {
			folderName = f.Name
		}
	}

	data, err := RenderMarkdown(n, folderName)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, fileName(n))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// fileName slug заголовка плюс начало идентификатора, чтобы имена не совпадали
func fileName(n *LocalNote) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(n.Title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "note"
	}
	if runes := []rune(slug); len(runes) > 60 {
		slug = strings.TrimSuffix(string(runes[:60]), "-")
	}

	short := n.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return slug + "-" + short + ".md"
}
