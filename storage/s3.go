package storage

import (
	"context"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	UseSSL          bool
}

// S3 writes objects to an S3 compatible endpoint, Supabase's S3 gateway
// included. Objects with the same name are overwritten.
type S3 struct {
	client *minio.Client
}

func NewS3(cfg S3Config) (*S3, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("s3 endpoint is required")
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, errors.New("s3 credentials are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, "cannot create s3 client")
	}
	return &S3{client: client}, nil
}

func (s *S3) Upload(ctx context.Context, obj Object) (string, error) {
	if err := obj.check(); err != nil {
		return "", err
	}
	info, err := s.client.PutObject(ctx, obj.Bucket, obj.Name, obj.Body, obj.Size, minio.PutObjectOptions{
		ContentType: obj.ContentType,
	})
	if err != nil {
		return "", errors.Wrapf(err, "cannot upload %s/%s", obj.Bucket, obj.Name)
	}
	return info.Bucket + "/" + info.Key, nil
}
