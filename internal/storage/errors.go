package storage

import "errors"

var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidKey    = errors.New("invalid key")
	ErrStorageInit   = errors.New("storage initialization failed")
	ErrFileOperation = errors.New("file operation failed")
)
