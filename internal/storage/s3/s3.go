package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/itchan-dev/boardapi/internal/config"
	"github.com/itchan-dev/boardapi/internal/logger"
	"github.com/itchan-dev/boardapi/internal/media"
)

// Storage keeps media as objects named <kind>/<name> in one bucket.
type Storage struct {
	client *minio.Client
	bucket string
}

var _ media.FileStore = (*Storage)(nil)

// New connects to the endpoint and creates the bucket if it is missing.
func New(ctx context.Context, cfg config.S3) (*Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		logger.Log.Info("creating media bucket", "bucket", cfg.Bucket)
		err = client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &Storage{client: client, bucket: cfg.Bucket}, nil
}

func objectName(kind media.Kind, name string) (string, error) {
	if err := media.CheckName(name); err != nil {
		return "", err
	}
	return string(kind) + "/" + name, nil
}

// Save uploads data in a single PutObject call, the object only becomes
// visible once the upload completes.
func (s *Storage) Save(ctx context.Context, kind media.Kind, name string, data io.Reader, size int64, contentType string) error {
	key, err := objectName(kind, name)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, s.bucket, key, data, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, kind media.Kind, name string) error {
	key, err := objectName(kind, name)
	if err != nil {
		return err
	}
	err = s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *Storage) List(ctx context.Context, kind media.Kind) ([]media.FileInfo, error) {
	prefix := string(kind) + "/"
	var files []media.FileInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, obj.Err)
		}
		files = append(files, media.FileInfo{
			Kind:    kind,
			Name:    strings.TrimPrefix(obj.Key, prefix),
			Size:    obj.Size,
			ModTime: obj.LastModified,
		})
	}
	return files, nil
}
