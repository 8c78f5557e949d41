package crossref

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"unicode/utf8"
)

const (
	maxResponseBytes = 64 << 10
	maxSummaryBytes  = 500
)

// DepositResult 提交结果
type DepositResult struct {
	BatchID    string
	StatusCode int
	Message    string
}

// Depositor 提交接口，便于测试替换
type Depositor interface {
	Deposit(ctx context.Context, cfg *Config, batchID string, payload []byte) (*DepositResult, error)
}

// HTTPDepositor 基于 HTTP 的 Crossref 提交实现
type HTTPDepositor struct {
	client *http.Client
}

// NewHTTPDepositor 创建 HTTP 提交器，client 为空时按配置超时创建
func NewHTTPDepositor(client *http.Client) *HTTPDepositor {
	return &HTTPDepositor{client: client}
}

// Deposit 以 multipart 方式提交 doi_batch（operation=doMDUpload）
func (d *HTTPDepositor) Deposit(ctx context.Context, cfg *Config, batchID string, payload []byte) (*DepositResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrBatchInvalid)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fields := map[string]string{
		"operation":    "doMDUpload",
		"login_id":     cfg.LoginID,
		"login_passwd": cfg.LoginPassword,
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}
	}
	part, err := writer.CreateFormFile("fname", batchID+".xml")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if _, err := part.Write(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.DepositURL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	client := d.client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response failed: %v", ErrRequestFailed, err)
	}
	text := strings.Join(strings.Fields(stripTags(string(raw))), " ")
	result := &DepositResult{
		BatchID:    batchID,
		StatusCode: resp.StatusCode,
		Message:    truncateRunes(text, maxSummaryBytes),
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return result, fmt.Errorf("%w: http status %d: %s", ErrRequestFailed, resp.StatusCode, result.Message)
	}
	// Crossref 以 200 返回并在正文中标注 FAILURE
	if hasFailureToken(text) {
		return result, fmt.Errorf("%w: %s", ErrDepositRejected, result.Message)
	}
	return result, nil
}

// truncateRunes 按字节上限截断，不拆分多字节字符
func truncateRunes(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// hasFailureToken 去标签后的正文中出现独立的 FAILURE 词
// failure_count 之类的标签名已被剥离，正文里的 failure_count 也不是独立词。
func hasFailureToken(text string) bool {
	for _, field := range strings.Fields(text) {
		if strings.EqualFold(strings.Trim(field, ":.,;!()[]"), "FAILURE") {
			return true
		}
	}
	return false
}

func stripTags(input string) string {
	var b strings.Builder
	inTag := false
	for _, r := range input {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteRune(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
