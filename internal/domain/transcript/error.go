package transcript

import "errors"

var (
	ErrInvalidURL = errors.New("invalid youtube url")
	ErrNetwork    = errors.New("network error")
	ErrParse      = errors.New("failed to parse youtube response")
	ErrNoCaptions = errors.New("no captions available for this video")
)
