package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pressdesk/internal/config"
	"github.com/pressdesk/internal/storage"
)

func buildUploadFileHeader(t *testing.T, filename string, data []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file failed: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write form file failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse multipart failed: %v", err)
	}
	return req.MultipartForm.File["file"][0]
}

func newUploadServiceForTest(t *testing.T) (*UploadService, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.UploadConfig{
		MaxSize:           1024,
		AllowedTypes:      []string{"application/pdf"},
		AllowedExtensions: []string{".pdf"},
	}
	return NewUploadService(cfg, storage.NewLocalBackend(dir, "/uploads")), dir
}

func TestSavePDFStoresFile(t *testing.T) {
	svc, dir := newUploadServiceForTest(t)
	data := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")

	result, err := svc.SavePDF(context.Background(), buildUploadFileHeader(t, "paper.PDF", data))
	if err != nil {
		t.Fatalf("save pdf failed: %v", err)
	}
	if !strings.HasPrefix(result.Key, "contents/") || !strings.HasSuffix(result.Key, ".pdf") {
		t.Fatalf("unexpected key: %s", result.Key)
	}
	if result.URL != "/uploads/"+result.Key {
		t.Fatalf("unexpected url: %s", result.URL)
	}
	if result.ContentType != "application/pdf" {
		t.Fatalf("unexpected content type: %s", result.ContentType)
	}
	saved, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(result.Key)))
	if err != nil {
		t.Fatalf("read saved file failed: %v", err)
	}
	if !bytes.Equal(saved, data) {
		t.Fatalf("saved content mismatch")
	}
}

func TestSavePDFRejectsInvalidInput(t *testing.T) {
	svc, _ := newUploadServiceForTest(t)

	if _, err := svc.SavePDF(context.Background(), buildUploadFileHeader(t, "notes.txt", []byte("%PDF-1.4\n"))); !errors.Is(err, ErrUploadInvalidType) {
		t.Fatalf("expected ErrUploadInvalidType for extension, got %v", err)
	}
	if _, err := svc.SavePDF(context.Background(), buildUploadFileHeader(t, "fake.pdf", []byte("just some text"))); !errors.Is(err, ErrUploadInvalidType) {
		t.Fatalf("expected ErrUploadInvalidType for content, got %v", err)
	}
	big := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("a"), 2048)...)
	if _, err := svc.SavePDF(context.Background(), buildUploadFileHeader(t, "big.pdf", big)); !errors.Is(err, ErrUploadTooLarge) {
		t.Fatalf("expected ErrUploadTooLarge, got %v", err)
	}
	if _, err := svc.SavePDF(context.Background(), nil); !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
}
