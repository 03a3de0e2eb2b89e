package filestorage

import "errors"

// ErrTooLarge is returned when a staged file exceeds its size limit
var ErrTooLarge = errors.New("file exceeds the size limit")
