package objectstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/logging/loggingtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 emulates a bucket in memory; failWith, when set, is returned by
// every call.
type fakeS3 struct {
	objects  map[string][]byte
	failWith error
	puts     []string
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string][]byte{}} }

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if _, ok := f.objects[*in.Key]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = data
	f.puts = append(f.puts, *in.Key)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func staticCreds() aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return aws.Credentials{AccessKeyID: "a", SecretAccessKey: "b"}, nil
	})
}

func TestS3Store_Contract(t *testing.T) {
	exerciseStore(t, &S3Store{client: newFakeS3(), credentials: staticCreds(), bucket: "b"})
}

func TestS3Store_NoCredentials(t *testing.T) {
	missing := aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return aws.Credentials{}, errors.New("no EC2 IMDS role found")
	})
	ctx := context.Background()

	for _, s := range []*S3Store{
		{client: newFakeS3(), credentials: missing, bucket: "b"},
		{client: newFakeS3(), bucket: "b"},
	} {
		_, err := s.Exists(ctx, "k")
		assert.ErrorIs(t, err, common.ErrorNoCredentials)
		assert.ErrorIs(t, err, common.ErrorRemoteStorage)
		assert.ErrorIs(t, s.Put(ctx, "k", strings.NewReader("x"), 1), common.ErrorNoCredentials)
		_, err = s.Get(ctx, "k")
		assert.ErrorIs(t, err, common.ErrorNoCredentials)
		assert.ErrorIs(t, s.Delete(ctx, "k"), common.ErrorNoCredentials)
	}
}

func TestS3Store_RemoteFailure(t *testing.T) {
	fake := newFakeS3()
	fake.failWith = errors.New("connection reset")
	s := &S3Store{client: fake, credentials: staticCreds(), bucket: "b"}
	ctx := context.Background()

	err := s.Delete(ctx, "task_1/a")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorRemoteStorage)
	assert.NotErrorIs(t, err, common.ErrorNoCredentials)
	assert.Contains(t, err.Error(), "connection reset")

	_, err = s.Exists(ctx, "task_1/a")
	assert.ErrorIs(t, err, common.ErrorRemoteStorage)
}

// onlyReader hides any Seek method of the wrapped reader.
type onlyReader struct{ io.Reader }

func TestS3Store_PutBuffersUnseekableBody(t *testing.T) {
	fake := newFakeS3()
	s := &S3Store{client: fake, credentials: staticCreds(), bucket: "b"}

	require.NoError(t, s.Put(context.Background(), "k", onlyReader{strings.NewReader("stream")}, -1))
	assert.Equal(t, "stream", string(fake.objects["k"]))
}

func TestNewS3Store_AppliesOptions(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-west-1", lo.Region)
		require.NotNil(t, lo.Credentials, "static credentials expected")
		return aws.Config{Region: lo.Region, Credentials: lo.Credentials}, nil
	}

	var opts s3.Options
	fake := newFakeS3()
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		for _, fn := range optFns {
			fn(&opts)
		}
		return fake
	}

	s, err := NewS3Store(context.Background(), S3Options{
		Bucket: "todo", Region: "eu-west-1", Endpoint: "http://127.0.0.1:9000",
		AccessKey: "ak", SecretKey: "sk",
	}, loggingtest.NewDiscard())
	require.NoError(t, err)

	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "todo", s.bucket)

	creds, err := s.credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ak", creds.AccessKeyID)
}

func TestNewS3Store_LoadError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("bad profile")
	}

	_, err := NewS3Store(context.Background(), S3Options{Region: "us-east-1"}, loggingtest.NewDiscard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad profile")
}
