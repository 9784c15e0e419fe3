package storage

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	storage_go "github.com/supabase-community/storage-go"
)

const supabaseStoragePath = "/storage/v1"

// Supabase writes objects through the Supabase Storage API.
type Supabase struct {
	client *storage_go.Client
}

// NewSupabase builds a driver for the project at serviceURL authenticated
// with secret (service role or anon key).
func NewSupabase(serviceURL, secret string) (*Supabase, error) {
	parsed, err := url.Parse(serviceURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid supabase url")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" || parsed.Host == "" {
		return nil, errors.Errorf("invalid supabase url %q: absolute http(s) url required", serviceURL)
	}
	if secret == "" {
		return nil, errors.New("supabase secret is required")
	}
	endpoint := strings.TrimRight(serviceURL, "/") + supabaseStoragePath
	return &Supabase{
		client: storage_go.NewClient(endpoint, secret, map[string]string{"apikey": secret}),
	}, nil
}

// Upload stores obj without overwriting. It returns the object key reported
// by the service, "bucket/name".
func (s *Supabase) Upload(ctx context.Context, obj Object) (string, error) {
	if err := obj.check(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	cacheControl := "3600"
	upsert := false
	res, err := s.client.UploadFile(obj.Bucket, obj.Name, ctxReader{ctx: ctx, r: obj.Body}, storage_go.FileOptions{
		CacheControl: &cacheControl,
		ContentType:  &contentType,
		Upsert:       &upsert,
	})
	if err != nil {
		return "", supabaseError(obj, err)
	}
	if res.Key == "" {
		return obj.Bucket + "/" + obj.Name, nil
	}
	return res.Key, nil
}

func supabaseError(obj Object, err error) error {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"duplicate", "already exists", "409"} {
		if strings.Contains(msg, marker) {
			return errors.Wrap(ErrObjectExists, err.Error())
		}
	}
	return errors.Wrapf(err, "supabase storage: cannot upload %s/%s", obj.Bucket, obj.Name)
}

// ctxReader stops the upload body once ctx is done; the storage client
// takes no context of its own.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
