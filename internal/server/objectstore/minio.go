package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioOptions configures MinioStore. Endpoint may be "host:port" or a URL;
// a URL scheme overrides UseSSL.
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// MinioStore keeps objects in an S3-compatible service (MinIO, R2).
type MinioStore struct {
	client  *minio.Client
	bucket  string
	noCreds bool
}

// NewMinioStore connects to the service and creates the bucket if missing.
func NewMinioStore(ctx context.Context, opts MinioOptions, logger logging.Logger) (*MinioStore, error) {
	endpoint, secure := splitEndpoint(opts.Endpoint, opts.UseSSL)

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: secure,
		Region: opts.Region,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 50,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	s := &MinioStore{
		client:  client,
		bucket:  opts.Bucket,
		noCreds: opts.AccessKey == "" || opts.SecretKey == "",
	}

	if !s.noCreds {
		if err := s.ensureBucket(ctx, opts.Region, logger); err != nil {
			return nil, err
		}
	}

	logger.Info(ctx, "minio storage initialized", "endpoint", endpoint, "bucket", opts.Bucket, "ssl", secure)
	return s, nil
}

func (s *MinioStore) ensureBucket(ctx context.Context, region string, logger logging.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	logger.Info(ctx, "bucket created", "bucket", s.bucket)
	return nil
}

func splitEndpoint(endpoint string, useSSL bool) (string, bool) {
	if !strings.Contains(endpoint, "://") {
		return strings.TrimSuffix(endpoint, "/"), useSSL
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint, useSSL
	}
	return u.Host, u.Scheme == "https"
}

func (s *MinioStore) Exists(ctx context.Context, key string) (bool, error) {
	if s.noCreds {
		return false, common.ErrorNoCredentials
	}
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isMinioNotFound(err) {
			return false, nil
		}
		return false, remoteError("stat", key, err)
	}
	return true, nil
}

func (s *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	if s.noCreds {
		return common.ErrorNoCredentials
	}
	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{}); err != nil {
		return remoteError("put", key, err)
	}
	return nil
}

func (s *MinioStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.noCreds {
		return nil, common.ErrorNoCredentials
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, remoteError("get", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isMinioNotFound(err) {
			return nil, common.ErrorNotFound
		}
		return nil, remoteError("get", key, err)
	}
	return data, nil
}

func (s *MinioStore) Delete(ctx context.Context, key string) error {
	if s.noCreds {
		return common.ErrorNoCredentials
	}
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && !isMinioNotFound(err) {
		return remoteError("delete", key, err)
	}
	return nil
}

func isMinioNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}
