package queue

import (
	"encoding/json"

	"github.com/pressdesk/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskContentStatusEmail 内容状态邮件通知任务
	TaskContentStatusEmail = constants.TaskContentStatusEmail
)

// ContentStatusEmailPayload 内容状态邮件任务载荷
type ContentStatusEmailPayload struct {
	ContentID uint   `json:"content_id"`
	Status    string `json:"status"`
	DOI       string `json:"doi,omitempty"`
}

// NewContentStatusEmailTask 创建内容状态邮件任务
func NewContentStatusEmailTask(payload ContentStatusEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskContentStatusEmail, body), nil
}

// ParseContentStatusEmailPayload 解析内容状态邮件任务载荷
func ParseContentStatusEmailPayload(body []byte) (ContentStatusEmailPayload, error) {
	var payload ContentStatusEmailPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return payload, err
	}
	return payload, nil
}
