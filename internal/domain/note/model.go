package note

import (
	"time"
)

// Note заметка пользователя: исходное содержимое и сгенерированные материалы
type Note struct {
	ID            string     `json:"id"`
	UserID        int        `json:"-"`
	FolderID      *string    `json:"folder_id,omitempty"`
	Title         string     `json:"title"`
	SourceType    SourceType `json:"source_type"`
	SourceURL     string     `json:"source_url,omitempty"`
	Content       string     `json:"content,omitempty"`
	AIContent     string     `json:"ai_content,omitempty"`
	Sections      []byte     `json:"sections,omitempty"`
	MindMap       []byte     `json:"mind_map,omitempty"`
	Supplementary []byte     `json:"supplementary,omitempty"`
	Status        Status     `json:"status"`
	Favorite      bool       `json:"favorite"`
	Tags          []string   `json:"tags"`
	Version       int        `json:"version"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted сообщает, помечена ли заметка удаленной
func (n *Note) IsDeleted() bool {
	return n.DeletedAt != nil
}

// Touch фиксирует изменение: версия растет ровно на единицу.
func (n *Note) Touch(now time.Time) {
	n.Version++
	n.UpdatedAt = now
}

// Folder папка для группировки заметок
type Folder struct {
	ID        string     `json:"id"`
	UserID    int        `json:"-"`
	Name      string     `json:"name"`
	Color     string     `json:"color"`
	SortOrder int        `json:"sort_order"`
	Version   int        `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (f *Folder) IsDeleted() bool {
	return f.DeletedAt != nil
}

func (f *Folder) Touch(now time.Time) {
	f.Version++
	f.UpdatedAt = now
}

// Filter критерии выборки заметок
type Filter struct {
	FolderID   *string
	Favorite   *bool
	Tag        string
	SourceType SourceType
	Query      string
	Limit      int
	Offset     int
}

// UploadTicket presigned-ссылка для загрузки исходного файла
type UploadTicket struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
