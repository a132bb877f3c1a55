package landsat

import "errors"

var (
	// ErrBandNotFound is returned when a band resolves to zero or several files.
	ErrBandNotFound = errors.New("band not found")
	// ErrArchiveExtraction marks scene data that could not be unpacked or read back.
	ErrArchiveExtraction = errors.New("archive extraction failure")
	// ErrInvalidSceneName is returned for raw folders without an acquisition date token.
	ErrInvalidSceneName = errors.New("invalid scene name")
)
