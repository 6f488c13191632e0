package generate

import "errors"

var (
	ErrEmptyContent = errors.New("note has no content to generate from")
	ErrCompletion   = errors.New("completion request failed")
	ErrParse        = errors.New("failed to parse completion output")
	ErrUnknownKind  = errors.New("unknown generation kind")
)
