package note

// CreateNoteRequest данные новой заметки. ID можно передать с клиента,
// чтобы заметки созданные офлайн сохраняли идентификатор.
type CreateNoteRequest struct {
	ID         string     `json:"id,omitempty" format:"uuid" required:"false"`
	FolderID   *string    `json:"folder_id,omitempty" required:"false"`
	Title      string     `json:"title" minLength:"1" maxLength:"200"`
	SourceType SourceType `json:"source_type"`
	SourceURL  string     `json:"source_url,omitempty" required:"false"`
	Content    string     `json:"content,omitempty" required:"false"`
	Favorite   bool       `json:"favorite,omitempty" required:"false"`
	Tags       []string   `json:"tags,omitempty" required:"false"`
}

// UpdateNoteRequest частичное обновление; nil-поля не меняются.
type UpdateNoteRequest struct {
	Version       int      `json:"version" minimum:"1" doc:"Ожидаемая текущая версия"`
	FolderID      *string  `json:"folder_id,omitempty" required:"false"`
	ClearFolder   bool     `json:"clear_folder,omitempty" required:"false"`
	Title         *string  `json:"title,omitempty" required:"false"`
	Content       *string  `json:"content,omitempty" required:"false"`
	AIContent     *string  `json:"ai_content,omitempty" required:"false"`
	Sections      []byte   `json:"sections,omitempty" required:"false"`
	MindMap       []byte   `json:"mind_map,omitempty" required:"false"`
	Supplementary []byte   `json:"supplementary,omitempty" required:"false"`
	Status        *Status  `json:"status,omitempty" required:"false"`
	Favorite      *bool    `json:"favorite,omitempty" required:"false"`
	Tags          []string `json:"tags,omitempty" required:"false"`
}

type FolderRequest struct {
	ID        string `json:"id,omitempty" format:"uuid" required:"false"`
	Name      string `json:"name" minLength:"1" maxLength:"100"`
	Color     string `json:"color,omitempty" required:"false"`
	SortOrder int    `json:"sort_order,omitempty" required:"false"`
	Version   int    `json:"version,omitempty" required:"false" doc:"Ожидаемая версия при обновлении"`
}

type YouTubeRequest struct {
	URL      string  `json:"url" minLength:"1"`
	FolderID *string `json:"folder_id,omitempty" required:"false"`
	Language string  `json:"language,omitempty" required:"false"`
}

type UploadRequest struct {
	Filename    string `json:"filename" minLength:"1"`
	ContentType string `json:"content_type,omitempty" required:"false"`
}
