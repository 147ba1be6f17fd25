package multipart

import (
	"bytes"
	"io"
	"path"
	"path/filepath"
)

// File is an immutable reference to a local file held in memory.
type File struct {
	path     string
	name     string
	mimeType string
	data     []byte
}

// NewFile creates a File for the content read from filePath. The basename is
// derived from filePath; data is copied.
func NewFile(filePath string, data []byte, mimeType string) *File {
	return &File{
		path:     filePath,
		name:     basename(filePath),
		mimeType: mimeType,
		data:     bytes.Clone(data),
	}
}

func (*File) isValue() {}

// Path returns the path the file was read from.
func (f *File) Path() string { return f.path }

// Name returns the basename of the file.
func (f *File) Name() string { return f.name }

// Size returns the content length in bytes.
func (f *File) Size() int64 { return int64(len(f.data)) }

// MimeType returns the resolved MIME type.
func (f *File) MimeType() string { return f.mimeType }

// Bytes returns a copy of the content.
func (f *File) Bytes() []byte { return bytes.Clone(f.data) }

// Reader returns a reader over the content.
func (f *File) Reader() io.Reader { return bytes.NewReader(f.data) }

func basename(p string) string {
	// billy filesystems use forward slashes on every platform
	return path.Base(filepath.ToSlash(p))
}
