package walletstore

import (
	"bytes"
	"context"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"
)

var (
	ErrNotFound = errors.New("Not Found")
)

// Storage persists wallet snapshots under string keys.
type Storage interface {
	Write(ctx context.Context, key string, body []byte) error
	Read(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) error
}

// FilesystemStorage keeps snapshots in a directory tree.
type FilesystemStorage struct {
	Root string
}

func NewFilesystemStorage(root string) *FilesystemStorage {
	return &FilesystemStorage{Root: root}
}

func (f *FilesystemStorage) buildPath(key string) string {
	return filepath.Join(f.Root, key)
}

func (f *FilesystemStorage) Write(ctx context.Context, key string, body []byte) error {
	filename := f.buildPath(key)
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return errors.Wrap(err, "make dir")
	}
	return ioutil.WriteFile(filename, body, 0644)
}

func (f *FilesystemStorage) Read(ctx context.Context, key string) ([]byte, error) {
	b, err := ioutil.ReadFile(f.buildPath(key))
	if os.IsNotExist(err) {
		return nil, errors.Wrap(ErrNotFound, key)
	}
	return b, err
}

func (f *FilesystemStorage) Remove(ctx context.Context, key string) error {
	err := os.Remove(f.buildPath(key))
	if os.IsNotExist(err) {
		return errors.Wrap(ErrNotFound, key)
	}
	return err
}

// S3Storage keeps snapshots in an S3 bucket.
type S3Storage struct {
	Bucket  string
	Session *session.Session
}

func NewS3Storage(bucket string) (*S3Storage, error) {
	ses, err := session.NewSession()
	if err != nil {
		return nil, errors.Wrap(err, "aws session")
	}
	return &S3Storage{Bucket: bucket, Session: ses}, nil
}

func (s *S3Storage) Write(ctx context.Context, key string, body []byte) error {
	svc := s3.New(s.Session)
	_, err := svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	return err
}

func (s *S3Storage) Read(ctx context.Context, key string) ([]byte, error) {
	svc := s3.New(s.Session)
	result, err := svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, errors.Wrap(ErrNotFound, key)
		}
		return nil, err
	}
	defer result.Body.Close()
	return ioutil.ReadAll(result.Body)
}

func (s *S3Storage) Remove(ctx context.Context, key string) error {
	svc := s3.New(s.Session)
	_, err := svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	return err
}

// MockStorage keeps snapshots in memory for tests.
type MockStorage struct {
	Data map[string][]byte
}

func NewMockStorage() *MockStorage {
	return &MockStorage{Data: make(map[string][]byte)}
}

func (m *MockStorage) Write(ctx context.Context, key string, body []byte) error {
	b := make([]byte, len(body))
	copy(b, body)
	m.Data[key] = b
	return nil
}

func (m *MockStorage) Read(ctx context.Context, key string) ([]byte, error) {
	b, ok := m.Data[key]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, key)
	}
	return b, nil
}

func (m *MockStorage) Remove(ctx context.Context, key string) error {
	if _, ok := m.Data[key]; !ok {
		return errors.Wrap(ErrNotFound, key)
	}
	delete(m.Data, key)
	return nil
}
