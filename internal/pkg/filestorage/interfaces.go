package filestorage

import "mime/multipart"

// FileStorage defines the interface for file storage operations. The upload
// pipeline itself is a thin wrapper around this; the core only needs a way
// to persist attachment bytes and resolve their paths.
type FileStorage interface {
	// SaveFile saves a file and returns the accessible path where it was stored
	SaveFile(fileHeader *multipart.FileHeader) (string, error)

	// SaveFileWithPath lets you specify a subdirectory for storing the file
	SaveFileWithPath(fileHeader *multipart.FileHeader, path string) (string, error)

	// DeleteFile removes a file from storage
	DeleteFile(filePath string) error
}
