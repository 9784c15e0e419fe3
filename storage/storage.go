// Package storage uploads objects into a hosted bucket.
package storage

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

const (
	DriverSupabase = "supabase"
	DriverS3       = "s3"
)

// ErrObjectExists is returned when the bucket already holds an object with
// the same name and the driver refuses to overwrite it.
var ErrObjectExists = errors.New("object already exists")

// Object is one upload: Body is read until EOF. Size may be -1 when unknown.
type Object struct {
	Bucket      string
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (o Object) check() error {
	if o.Bucket == "" {
		return errors.New("bucket is required")
	}
	if o.Name == "" {
		return errors.New("object name is required")
	}
	if o.Body == nil {
		return errors.New("object body is required")
	}
	return nil
}

// Store is implemented by every driver.
type Store interface {
	Upload(ctx context.Context, obj Object) (string, error)
}
