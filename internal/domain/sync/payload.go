package sync

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"studynotes/internal/domain/note"
)

// SimpleRecord проекция заметки или папки только с метаданными
type SimpleRecord struct {
	ID          string     `json:"id"`
	Kind        Kind       `json:"kind" enum:"note,folder"`
	Title       string     `json:"title,omitempty"`
	Name        string     `json:"name,omitempty"`
	SourceType  string     `json:"source_type,omitempty"`
	SourceURL   string     `json:"source_url,omitempty"`
	Status      string     `json:"status,omitempty"`
	Favorite    bool       `json:"favorite,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	FolderID    *string    `json:"folder_id,omitempty"`
	Color       string     `json:"color,omitempty"`
	SortOrder   int        `json:"sort_order,omitempty"`
	Version     int        `json:"version"`
	// BaseVersion серверная версия, от которой клиент начал правку; 0 для новых записей
	BaseVersion int        `json:"base_version,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted сообщает, является ли запись надгробием
func (r SimpleRecord) IsDeleted() bool {
	return r.DeletedAt != nil
}

// EnhancedRecord дополняет SimpleRecord большими полями в base64
// и размерами их декодированного содержимого.
type EnhancedRecord struct {
	SimpleRecord

	OriginalContent string `json:"original_content,omitempty"`
	AIContent       string `json:"ai_content,omitempty"`
	Sections        string `json:"sections,omitempty"`
	MindMap         string `json:"mind_map,omitempty"`
	Supplementary   string `json:"supplementary,omitempty"`

	OriginalSize      int `json:"original_size,omitempty"`
	AISize            int `json:"ai_size,omitempty"`
	SectionsSize      int `json:"sections_size,omitempty"`
	MindMapSize       int `json:"mind_map_size,omitempty"`
	SupplementarySize int `json:"supplementary_size,omitempty"`

	ContentHash string `json:"content_hash,omitempty"`
}

// Payload декодированные большие поля записи
type Payload struct {
	Original      []byte
	AI            []byte
	Sections      []byte
	MindMap       []byte
	Supplementary []byte
}

// Size суммарный объем больших полей
func (p Payload) Size() int64 {
	return int64(len(p.Original) + len(p.AI) + len(p.Sections) + len(p.MindMap) + len(p.Supplementary))
}

// Hash sha256 от больших полей в порядке их объявления.
// Длина каждого поля входит в хэш, чтобы границы полей не смешивались.
func (p Payload) Hash() string {
	h := sha256.New()
	for _, field := range [][]byte{p.Original, p.AI, p.Sections, p.MindMap, p.Supplementary} {
		h.Write([]byte(strconv.Itoa(len(field))))
		h.Write([]byte{0})
		h.Write(field)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ShapeSimpleNote строит метаданные заметки
func ShapeSimpleNote(n note.Note) SimpleRecord {
	return SimpleRecord{
		ID:         n.ID,
		Kind:       KindNote,
		Title:      n.Title,
		SourceType: string(n.SourceType),
		SourceURL:  n.SourceURL,
		Status:     string(n.Status),
		Favorite:   n.Favorite,
		Tags:       n.Tags,
		FolderID:   n.FolderID,
		Version:    n.Version,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
		DeletedAt:  n.DeletedAt,
	}
}

// ShapeSimpleFolder строит запись папки. У папок нет больших полей,
// поэтому их записи всегда простые.
func ShapeSimpleFolder(f note.Folder) SimpleRecord {
	return SimpleRecord{
		ID:        f.ID,
		Kind:      KindFolder,
		Name:      f.Name,
		Color:     f.Color,
		SortOrder: f.SortOrder,
		Version:   f.Version,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		DeletedAt: f.DeletedAt,
	}
}

// ShapeEnhanced строит полную запись заметки с содержимым.
func ShapeEnhanced(n note.Note) EnhancedRecord {
	p := Payload{
		Original:      []byte(n.Content),
		AI:            []byte(n.AIContent),
		Sections:      n.Sections,
		MindMap:       n.MindMap,
		Supplementary: n.Supplementary,
	}
	return EnhancedRecord{
		SimpleRecord:      ShapeSimpleNote(n),
		OriginalContent:   encode(p.Original),
		AIContent:         encode(p.AI),
		Sections:          encode(p.Sections),
		MindMap:           encode(p.MindMap),
		Supplementary:     encode(p.Supplementary),
		OriginalSize:      len(p.Original),
		AISize:            len(p.AI),
		SectionsSize:      len(p.Sections),
		MindMapSize:       len(p.MindMap),
		SupplementarySize: len(p.Supplementary),
		ContentHash:       NoteHash(n, p),
	}
}

// NoteHash sha256 от метаданных заметки и хэша ее больших полей.
// Версия, время и признак удаления в хэш не входят.
func NoteHash(n note.Note, p Payload) string {
	folder := ""
	if n.FolderID != nil {
		folder = *n.FolderID
	}
	h := sha256.New()
	fields := []string{n.Title, string(n.SourceType), n.SourceURL, string(n.Status),
		strconv.FormatBool(n.Favorite), folder, strconv.Itoa(len(n.Tags))}
	fields = append(fields, n.Tags...)
	fields = append(fields, p.Hash())
	for _, f := range fields {
		h.Write([]byte(strconv.Itoa(len(f))))
		h.Write([]byte{0})
		h.Write([]byte(f))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// FolderRecord оборачивает папку в запись общего вида.
// Хэш считается по имени, цвету и порядку, чтобы повтор загрузки распознавался.
func FolderRecord(f note.Folder) EnhancedRecord {
	return EnhancedRecord{
		SimpleRecord: ShapeSimpleFolder(f),
		ContentHash:  FolderHash(f.Name, f.Color, f.SortOrder),
	}
}

func FolderHash(name, color string, sortOrder int) string {
	sum := sha256.Sum256([]byte(name + "\x00" + color + "\x00" + strconv.Itoa(sortOrder)))
	return hex.EncodeToString(sum[:])
}

// DecodeEnhanced декодирует большие поля. Пустая строка дает nil,
// неверный base64 или несовпадение размера дают ErrInvalidPayload.
// Нулевой размер при непустом поле означает, что клиент размер не прислал.
func DecodeEnhanced(rec EnhancedRecord) (Payload, error) {
	var (
		p   Payload
		err error
	)
	fields := []struct {
		name string
		src  string
		size int
		dst  *[]byte
	}{
		{"original_content", rec.OriginalContent, rec.OriginalSize, &p.Original},
		{"ai_content", rec.AIContent, rec.AISize, &p.AI},
		{"sections", rec.Sections, rec.SectionsSize, &p.Sections},
		{"mind_map", rec.MindMap, rec.MindMapSize, &p.MindMap},
		{"supplementary", rec.Supplementary, rec.SupplementarySize, &p.Supplementary},
	}
	for _, f := range fields {
		if *f.dst, err = decodeField(f.name, f.src, f.size); err != nil {
			return Payload{}, err
		}
	}
	return p, nil
}

func decodeField(name, src string, size int) ([]byte, error) {
	if src == "" {
		if size != 0 {
			return nil, fmt.Errorf("%w: %s is empty but size is %d", ErrInvalidPayload, name, size)
		}
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, name, err)
	}
	if size != 0 && size != len(data) {
		return nil, fmt.Errorf("%w: %s size %d does not match decoded %d", ErrInvalidPayload, name, size, len(data))
	}
	return data, nil
}

func encode(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(b)
}

// ToNote собирает заметку из записи. Метаданные нормализуются теми же
// правилами, что и при создании через API.
func ToNote(rec EnhancedRecord, userID int) (note.Note, Payload, error) {
	if rec.Kind != KindNote {
		return note.Note{}, Payload{}, fmt.Errorf("%w: record %s is not a note", ErrInvalidPayload, rec.ID)
	}
	p, err := DecodeEnhanced(rec)
	if err != nil {
		return note.Note{}, Payload{}, err
	}
	if err := validateCommon(rec.SimpleRecord); err != nil {
		return note.Note{}, Payload{}, err
	}
	title, err := note.NormalizeTitle(rec.Title)
	if err != nil {
		return note.Note{}, Payload{}, err
	}
	st := note.SourceType(rec.SourceType)
	if err := st.Validate(); err != nil {
		return note.Note{}, Payload{}, err
	}
	status := note.Status(rec.Status)
	if status == "" {
		status = note.StatusPending
	}
	if err := status.Validate(); err != nil {
		return note.Note{}, Payload{}, err
	}
	tags, err := note.NormalizeTags(rec.Tags)
	if err != nil {
		return note.Note{}, Payload{}, err
	}

	return note.Note{
		ID:            rec.ID,
		UserID:        userID,
		FolderID:      rec.FolderID,
		Title:         title,
		SourceType:    st,
		SourceURL:     rec.SourceURL,
		Content:       string(p.Original),
		AIContent:     string(p.AI),
		Sections:      p.Sections,
		MindMap:       p.MindMap,
		Supplementary: p.Supplementary,
		Status:        status,
		Favorite:      rec.Favorite,
		Tags:          tags,
		Version:       rec.Version,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
		DeletedAt:     rec.DeletedAt,
	}, p, nil
}

// ToFolder собирает папку из записи
func ToFolder(rec EnhancedRecord, userID int) (note.Folder, error) {
	if rec.Kind != KindFolder {
		return note.Folder{}, fmt.Errorf("%w: record %s is not a folder", ErrInvalidPayload, rec.ID)
	}
	if err := validateCommon(rec.SimpleRecord); err != nil {
		return note.Folder{}, err
	}
	name, err := note.NormalizeFolderName(rec.Name)
	if err != nil {
		return note.Folder{}, err
	}
	color, err := note.NormalizeColor(rec.Color)
	if err != nil {
		return note.Folder{}, err
	}
	return note.Folder{
		ID:        rec.ID,
		UserID:    userID,
		Name:      name,
		Color:     color,
		SortOrder: rec.SortOrder,
		Version:   rec.Version,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		DeletedAt: rec.DeletedAt,
	}, nil
}

func validateCommon(rec SimpleRecord) error {
	if _, err := note.ResolveID(rec.ID); err != nil || rec.ID == "" {
		return fmt.Errorf("%w: record id must be a uuid", ErrInvalidPayload)
	}
	if rec.Version < 1 {
		return fmt.Errorf("%w: record %s has version %d", ErrInvalidPayload, rec.ID, rec.Version)
	}
	return nil
}
