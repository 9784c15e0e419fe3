package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupabaseUpload(t *testing.T) {
	var gotMethod, gotPath, gotAuth, gotKey, gotType, gotUpsert, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("apikey")
		gotType = r.Header.Get("Content-Type")
		gotUpsert = r.Header.Get("x-upsert")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Key":"forms-advanced/avatar.png","Id":"1"}`))
	}))
	defer srv.Close()

	s, err := NewSupabase(srv.URL+"/", "secret-key")
	require.NoError(t, err)
	key, err := s.Upload(context.Background(), Object{
		Bucket:      "forms-advanced",
		Name:        "avatar.png",
		ContentType: "image/png",
		Size:        4,
		Body:        strings.NewReader("data"),
	})
	require.NoError(t, err)
	assert.Equal(t, "forms-advanced/avatar.png", key)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/storage/v1/object/forms-advanced/avatar.png", gotPath)
	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, "false", gotUpsert)
	assert.Equal(t, "data", gotBody)
}

func TestSupabaseUploadDuplicate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"Duplicate","message":"The resource already exists"}`))
	}))
	defer srv.Close()

	s, err := NewSupabase(srv.URL, "secret")
	require.NoError(t, err)
	_, err = s.Upload(context.Background(), Object{Bucket: "b", Name: "a.png", Size: 1, Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrObjectExists)
}

func TestSupabaseUploadServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal","message":"boom"}`))
	}))
	defer srv.Close()

	s, err := NewSupabase(srv.URL, "secret")
	require.NoError(t, err)
	_, err = s.Upload(context.Background(), Object{Bucket: "b", Name: "a.png", Size: 1, Body: strings.NewReader("x")})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrObjectExists)
}

func TestSupabaseUploadFallsBackToRequestedKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s, err := NewSupabase(srv.URL, "secret")
	require.NoError(t, err)
	key, err := s.Upload(context.Background(), Object{Bucket: "b", Name: "a.png", Size: 1, Body: strings.NewReader("x")})
	require.NoError(t, err)
	assert.Equal(t, "b/a.png", key)
}

func TestSupabaseUploadCanceled(t *testing.T) {
	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	s, err := NewSupabase(srv.URL, "secret")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Upload(ctx, Object{Bucket: "b", Name: "a.png", Size: 1, Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestNewSupabaseValidation(t *testing.T) {
	_, err := NewSupabase("not a url", "secret")
	assert.Error(t, err)
	_, err = NewSupabase("ftp://example.com", "secret")
	assert.Error(t, err)
	_, err = NewSupabase("https://project.supabase.co", "")
	assert.Error(t, err)
}

func TestObjectCheck(t *testing.T) {
	s, err := NewSupabase("https://project.supabase.co", "secret")
	require.NoError(t, err)
	_, err = s.Upload(context.Background(), Object{Name: "a", Body: strings.NewReader("")})
	assert.Error(t, err)
	_, err = s.Upload(context.Background(), Object{Bucket: "b", Body: strings.NewReader("")})
	assert.Error(t, err)
	_, err = s.Upload(context.Background(), Object{Bucket: "b", Name: "a"})
	assert.Error(t, err)
}

func TestCtxReaderStopsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := ctxReader{ctx: ctx, r: strings.NewReader("abcdef")}
	buf := make([]byte, 3)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	cancel()
	_, err = r.Read(buf)
	assert.ErrorIs(t, err, context.Canceled)
}
