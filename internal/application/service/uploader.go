package service

import (
	"context"
	"io"
)

// Uploader stores media in blob storage. path is the full object path
// (e.g. uploads/profiles/alice-<uuid>.png); the returned string is the
// public URL clients should use.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, path string) (string, error)
	Delete(ctx context.Context, path string) error
}

// UploadFile is an incoming file as received from the client.
type UploadFile struct {
	Body     io.Reader
	Filename string
}
