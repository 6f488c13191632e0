package folder

import "studynotes/internal/domain/note"

type listOutput struct {
	Body []note.Folder
}

type createInput struct {
	Body note.FolderRequest
}

type updateInput struct {
	ID   string `path:"id" format:"uuid"`
	Body note.FolderRequest
}

type idInput struct {
	ID string `path:"id" format:"uuid"`
}

type folderOutput struct {
	Body *note.Folder
}
