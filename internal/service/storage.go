package service

import "context"

// FileStorage abstracts proposal file housekeeping. The backing store is
// deployment-specific; the default implementation does nothing.
type FileStorage interface {
	Delete(ctx context.Context, fileID string) error
}

// NoopFileStorage is a FileStorage that ignores every call.
type NoopFileStorage struct{}

// Delete implements FileStorage.
func (NoopFileStorage) Delete(context.Context, string) error { return nil }
