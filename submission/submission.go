// Package submission handles a validated registration: the avatar goes to
// the storage bucket, then the normalized record is logged.
package submission

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/AlhimicMan/formsadvanced/registration"
	"github.com/AlhimicMan/formsadvanced/storage"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
)

const DefaultBucket = "forms-advanced"

var ErrNoStorage = errors.New("avatar received but no storage is configured")

type uploader interface {
	Upload(ctx context.Context, obj storage.Object) (string, error)
}

// Logger is the part of echo.Logger the handler writes to.
type Logger interface {
	Infoj(j log.JSON)
}

type Result struct {
	ID         string `json:"id"`
	AvatarPath string `json:"avatar_path,omitempty"`
}

type Handler struct {
	store  uploader
	bucket string
	logger Logger
}

type Option func(h *Handler)

func WithBucket(bucket string) Option {
	return func(h *Handler) {
		h.bucket = bucket
	}
}

// NewHandler builds a handler. store may be nil when avatars are never sent.
func NewHandler(store uploader, logger Logger, opts ...Option) *Handler {
	h := &Handler{
		store:  store,
		bucket: DefaultBucket,
		logger: logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Submit uploads the avatar, keyed by its original file name, and logs the
// record. Upload errors are returned as is: no retry, nothing is logged.
func (h *Handler) Submit(ctx context.Context, reg registration.UserRegistration) (Result, error) {
	res := Result{ID: uuid.New().String()}
	if reg.Avatar != nil {
		path, err := h.uploadAvatar(ctx, reg.Avatar)
		if err != nil {
			return Result{}, err
		}
		res.AvatarPath = path
	}
	h.logger.Infoj(log.JSON{
		"event":        "registration_submitted",
		"id":           res.ID,
		"avatar_path":  res.AvatarPath,
		"registration": newRecord(reg),
	})
	return res, nil
}

func (h *Handler) uploadAvatar(ctx context.Context, avatar registration.File) (string, error) {
	if h.store == nil {
		return "", ErrNoStorage
	}
	body, err := avatar.Open()
	if err != nil {
		return "", errors.Wrap(err, "cannot open avatar file")
	}
	defer body.Close()
	path, err := h.store.Upload(ctx, storage.Object{
		Bucket:      h.bucket,
		Name:        avatar.Name(),
		ContentType: avatar.ContentType(),
		Size:        avatar.Size(),
		Body:        body,
	})
	if err != nil {
		return "", errors.Wrap(err, "cannot upload avatar")
	}
	return path, nil
}

type record struct {
	Avatar   string                   `json:"avatar,omitempty"`
	Name     string                   `json:"name"`
	Email    string                   `json:"email"`
	Password string                   `json:"password"`
	Techs    []registration.TechEntry `json:"techs"`
}

func newRecord(reg registration.UserRegistration) record {
	rec := record{
		Name:     reg.Name,
		Email:    reg.Email,
		Password: strings.Repeat("*", utf8.RuneCountInString(reg.Password)),
		Techs:    reg.Techs,
	}
	if reg.Avatar != nil {
		rec.Avatar = reg.Avatar.Name()
	}
	return rec
}
