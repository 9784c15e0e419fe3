package registration

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// File is a reference to an uploaded binary, such as the avatar picture.
type File interface {
	Name() string
	ContentType() string
	Size() int64
	Open() (io.ReadCloser, error)
}

type headerFile struct {
	header *multipart.FileHeader
}

// FileFromHeader wraps a multipart file header received by the HTTP server.
func FileFromHeader(header *multipart.FileHeader) File {
	return headerFile{header: header}
}

func (f headerFile) Name() string { return f.header.Filename }

func (f headerFile) ContentType() string {
	cType := f.header.Header.Get("Content-Type")
	if cType == "" {
		cType = mime.TypeByExtension(filepath.Ext(f.header.Filename))
	}
	return cType
}

func (f headerFile) Size() int64 { return f.header.Size }

func (f headerFile) Open() (io.ReadCloser, error) {
	return f.header.Open()
}

type memoryFile struct {
	name        string
	contentType string
	data        []byte
}

// NewFile builds a File from data held in memory.
func NewFile(name, contentType string, data []byte) File {
	return memoryFile{name: name, contentType: contentType, data: data}
}

func (f memoryFile) Name() string        { return f.name }
func (f memoryFile) ContentType() string { return f.contentType }
func (f memoryFile) Size() int64         { return int64(len(f.data)) }

func (f memoryFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

type diskFile struct {
	path        string
	contentType string
	size        int64
}

// FileFromPath references a file on disk. The content type is taken from the
// extension, falling back to sniffing the first bytes.
func FileFromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot stat %s", path)
	}
	if info.IsDir() {
		return nil, errors.Errorf("%s is a directory", path)
	}
	cType := mime.TypeByExtension(filepath.Ext(path))
	if cType == "" {
		cType, err = sniffContentType(path)
		if err != nil {
			return nil, err
		}
	}
	return diskFile{path: path, contentType: cType, size: info.Size()}, nil
}

func (f diskFile) Name() string        { return filepath.Base(f.path) }
func (f diskFile) ContentType() string { return f.contentType }
func (f diskFile) Size() int64         { return f.size }

func (f diskFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

func sniffContentType(path string) (string, error) {
	fd, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "cannot open %s", path)
	}
	defer fd.Close()
	head := make([]byte, 512)
	n, err := io.ReadFull(fd, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", errors.Wrapf(err, "cannot read %s", path)
	}
	return http.DetectContentType(head[:n]), nil
}
