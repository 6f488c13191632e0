package note

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxTitleLen      = 200
	MaxFolderNameLen = 100
	MaxTags          = 32
	DefaultColor     = "#4A90E2"
)

var colorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// NormalizeTitle обрезает пробелы и проверяет длину заголовка
func NormalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return "", fmt.Errorf("%w: title must be at most %d characters", ErrInvalidInput, MaxTitleLen)
	}
	return title, nil
}

// NormalizeTags приводит теги к нижнему регистру, убирает пустые и дубли.
// Порядок первого появления сохраняется.
func NormalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) > MaxTags {
		return nil, fmt.Errorf("%w: at most %d tags allowed", ErrInvalidInput, MaxTags)
	}
	return out, nil
}

// NormalizeColor возвращает цвет папки в формате #RRGGBB
func NormalizeColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		return DefaultColor, nil
	}
	if !colorRe.MatchString(color) {
		return "", fmt.Errorf("%w: color must look like #RRGGBB", ErrInvalidInput)
	}
	return strings.ToUpper(color), nil
}

func NormalizeFolderName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: folder name is empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > MaxFolderNameLen {
		return "", fmt.Errorf("%w: folder name must be at most %d characters", ErrInvalidInput, MaxFolderNameLen)
	}
	return name, nil
}

// ResolveID проверяет присланный клиентом идентификатор или выдает новый.
func ResolveID(id string) (string, error) {
	if id == "" {
		return uuid.NewString(), nil
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: id must be a uuid", ErrInvalidInput)
	}
	return parsed.String(), nil
}
