package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pressdesk/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type s3ClientStub struct {
	putKey      string
	putBody     string
	contentType string
	deletedKey  string
}

func (s *s3ClientStub) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	s.putKey = aws.ToString(params.Key)
	s.contentType = aws.ToString(params.ContentType)
	data, _ := io.ReadAll(params.Body)
	s.putBody = string(data)
	return &s3.PutObjectOutput{}, nil
}

func (s *s3ClientStub) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	s.deletedKey = aws.ToString(params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestLocalBackendPutAndDelete(t *testing.T) {
	dir := t.TempDir()
	backend := NewLocalBackend(dir, "/files/")

	url, err := backend.Put(context.Background(), "/contents/2024/paper.pdf", strings.NewReader("%PDF-1.7"), 8, "application/pdf")
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if url != "/files/contents/2024/paper.pdf" {
		t.Fatalf("unexpected url: %s", url)
	}
	data, err := os.ReadFile(filepath.Join(dir, "contents", "2024", "paper.pdf"))
	if err != nil || string(data) != "%PDF-1.7" {
		t.Fatalf("unexpected stored file: %q err=%v", data, err)
	}
	if err := backend.Delete(context.Background(), "contents/2024/paper.pdf"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := backend.Delete(context.Background(), "contents/2024/paper.pdf"); err != nil {
		t.Fatalf("delete missing file should be ignored: %v", err)
	}
}

func TestLocalBackendRejectsTraversal(t *testing.T) {
	backend := NewLocalBackend(t.TempDir(), "")
	if _, err := backend.Put(context.Background(), "../escape.pdf", bytes.NewReader(nil), 0, ""); err == nil {
		t.Fatalf("expected traversal key to be rejected")
	}
}

func TestS3BackendPutUsesBucketAndPublicURL(t *testing.T) {
	stub := &s3ClientStub{}
	backend := NewS3BackendWithClient(stub, config.S3StorageConfig{
		Bucket:    "papers",
		Region:    "eu-central-1",
		PublicURL: "https://cdn.example.com/",
	})
	url, err := backend.Put(context.Background(), "contents/a.pdf", strings.NewReader("pdf"), 3, "application/pdf")
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if url != "https://cdn.example.com/contents/a.pdf" {
		t.Fatalf("unexpected url: %s", url)
	}
	if stub.putKey != "contents/a.pdf" || stub.putBody != "pdf" || stub.contentType != "application/pdf" {
		t.Fatalf("unexpected put: %+v", stub)
	}
	if err := backend.Delete(context.Background(), "contents/a.pdf"); err != nil || stub.deletedKey != "contents/a.pdf" {
		t.Fatalf("unexpected delete: key=%s err=%v", stub.deletedKey, err)
	}
}

func TestS3BackendURLFallbacks(t *testing.T) {
	withEndpoint := NewS3BackendWithClient(&s3ClientStub{}, config.S3StorageConfig{
		Bucket:   "papers",
		Endpoint: "https://s3.hidrive.example.com",
	})
	if got := withEndpoint.URL("x.pdf"); got != "https://s3.hidrive.example.com/papers/x.pdf" {
		t.Fatalf("unexpected endpoint url: %s", got)
	}
	regional := NewS3BackendWithClient(&s3ClientStub{}, config.S3StorageConfig{Bucket: "papers", Region: "us-east-1"})
	if got := regional.URL("x.pdf"); got != "https://papers.s3.us-east-1.amazonaws.com/x.pdf" {
		t.Fatalf("unexpected aws url: %s", got)
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	if _, err := New(config.StorageConfig{Driver: "ftp"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
	backend, err := New(config.StorageConfig{Driver: "local", Local: config.LocalStorageConfig{Dir: t.TempDir()}})
	if err != nil {
		t.Fatalf("local driver failed: %v", err)
	}
	if _, ok := backend.(*LocalBackend); !ok {
		t.Fatalf("expected local backend")
	}
}
