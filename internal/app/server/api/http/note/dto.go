package note

import (
	"time"

	"studynotes/internal/domain/note"
)

type listInput struct {
	FolderID   string `query:"folder_id" doc:"Папка; none - заметки без папки"`
	Favorite   string `query:"favorite" enum:"true,false" required:"false"`
	Tag        string `query:"tag"`
	SourceType string `query:"source_type" enum:"audio,text,video,upload" required:"false"`
	Query      string `query:"q" doc:"Поиск по заголовку"`
	Limit      int    `query:"limit" minimum:"0" maximum:"500" default:"100"`
	Offset     int    `query:"offset" minimum:"0"`
}

type listOutput struct {
	Body []note.Note
}

type idInput struct {
	ID string `path:"id" format:"uuid"`
}

type noteOutput struct {
	Body *note.Note
}

type createInput struct {
	Body note.CreateNoteRequest
}

type updateInput struct {
	ID   string `path:"id" format:"uuid"`
	Body note.UpdateNoteRequest
}

type youtubeInput struct {
	Body note.YouTubeRequest
}

type uploadInput struct {
	Body note.UploadRequest
}

type uploadOutput struct {
	Body *note.UploadTicket
}

type sourceOutput struct {
	Body SourceResponse
}

type SourceResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
