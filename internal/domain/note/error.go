package note

import "errors"

var (
	ErrNotFound        = errors.New("note not found")
	ErrFolderNotFound  = errors.New("folder not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrVersionConflict = errors.New("version conflict")
	ErrDeleted         = errors.New("note was deleted")
	ErrStorageDisabled = errors.New("object storage is not configured")
)
