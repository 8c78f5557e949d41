package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/pressdesk/internal/config"
	"github.com/pressdesk/internal/logger"
	"github.com/pressdesk/internal/storage"

	"github.com/google/uuid"
)

const uploadSniffLength = 512

// UploadResult 上传结果
type UploadResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// UploadService 内容 PDF 上传服务
type UploadService struct {
	cfg     config.UploadConfig
	backend storage.Backend
}

// NewUploadService 创建文件上传服务实例
func NewUploadService(cfg config.UploadConfig, backend storage.Backend) *UploadService {
	return &UploadService{cfg: cfg, backend: backend}
}

// SavePDF 校验并保存 PDF，返回存储键与访问地址
func (s *UploadService) SavePDF(ctx context.Context, file *multipart.FileHeader) (*UploadResult, error) {
	if file == nil || s.backend == nil {
		return nil, ErrUploadFailed
	}
	if s.cfg.MaxSize > 0 && file.Size > s.cfg.MaxSize {
		return nil, ErrUploadTooLarge
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if len(s.cfg.AllowedExtensions) > 0 {
		if ext == "" || !isAllowedExtension(ext, s.cfg.AllowedExtensions) {
			return nil, ErrUploadInvalidType
		}
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer src.Close()

	// 读取文件头部识别 MIME 类型
	buffer := make([]byte, uploadSniffLength)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	contentType := http.DetectContentType(buffer[:n])
	if len(s.cfg.AllowedTypes) > 0 && !isAllowedContentType(contentType, s.cfg.AllowedTypes) {
		return nil, ErrUploadInvalidType
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	now := time.Now()
	key := fmt.Sprintf("contents/%s/%s/%s%s", now.Format("2006"), now.Format("01"), uuid.NewString(), ext)
	url, err := s.backend.Put(ctx, key, src, file.Size, contentType)
	if err != nil {
		logger.Errorw("upload_pdf_store_failed", "key", key, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return &UploadResult{Key: key, URL: url, Size: file.Size, ContentType: contentType}, nil
}

// URL 返回存储键对应的访问地址
func (s *UploadService) URL(key string) string {
	if s == nil || s.backend == nil || strings.TrimSpace(key) == "" {
		return ""
	}
	return s.backend.URL(key)
}

func isAllowedContentType(contentType string, allowed []string) bool {
	base := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	for _, item := range allowed {
		if strings.EqualFold(base, strings.TrimSpace(item)) {
			return true
		}
	}
	return false
}

func isAllowedExtension(ext string, allowed []string) bool {
	for _, allowedExt := range allowed {
		normalized := strings.ToLower(strings.TrimSpace(allowedExt))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if strings.EqualFold(ext, normalized) {
			return true
		}
	}
	return false
}
