package worker

import (
	"context"
	"errors"
	"strings"

	"github.com/pressdesk/internal/logger"
	"github.com/pressdesk/internal/models"
	"github.com/pressdesk/internal/provider"
	"github.com/pressdesk/internal/queue"
	"github.com/pressdesk/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskContentStatusEmail, c.handleContentStatusEmail)
}

// emailRecipient 通知对象
type emailRecipient struct {
	Email  string
	Locale string
}

func (c *Consumer) handleContentStatusEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_content_status_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseContentStatusEmailPayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_content_status_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.ContentID == 0 {
		logger.Debugw("worker_content_status_email_skip_invalid_payload", "content_id", payload.ContentID)
		return nil
	}
	content, err := c.ContentRepo.GetByID(payload.ContentID)
	if err != nil {
		logger.Warnw("worker_content_status_email_fetch_content_failed", "content_id", payload.ContentID, "error", err)
		return err
	}
	if content == nil {
		logger.Debugw("worker_content_status_email_skip_content_not_found", "content_id", payload.ContentID)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_content_status_email_skip_email_service_nil", "content_id", content.ID)
		return nil
	}

	recipients, err := c.resolveRecipients(content)
	if err != nil {
		logger.Warnw("worker_content_status_email_resolve_recipients_failed", "content_id", content.ID, "error", err)
		return err
	}
	if len(recipients) == 0 {
		logger.Debugw("worker_content_status_email_skip_no_recipient", "content_id", content.ID)
		return nil
	}

	input := buildContentStatusEmailInput(content, payload, c.EmailService.SiteName(), c.EmailService.SiteURL())
	var sendErr error
	for _, recipient := range recipients {
		if err := c.EmailService.SendContentStatusEmail(recipient.Email, input, recipient.Locale); err != nil {
			logger.Warnw("worker_content_status_email_send_failed",
				"content_id", content.ID,
				"receiver_email", recipient.Email,
				"status", input.Status,
				"error", err,
			)
			if errors.Is(err, service.ErrEmailRecipientRejected) {
				continue
			}
			sendErr = err
		}
	}
	return sendErr
}

// resolveRecipients 作者邮箱去重，并按同邮箱用户的语言偏好发送
func (c *Consumer) resolveRecipients(content *models.Content) ([]emailRecipient, error) {
	emails := uniqueEmails(content.AuthorEmails())
	recipients := make([]emailRecipient, 0, len(emails))
	for _, email := range emails {
		recipient := emailRecipient{Email: email}
		if c.UserRepo != nil {
			user, err := c.UserRepo.GetByEmail(email)
			if err != nil {
				return nil, err
			}
			if user != nil {
				recipient.Locale = strings.TrimSpace(user.Locale)
			}
		}
		recipients = append(recipients, recipient)
	}
	return recipients, nil
}

func buildContentStatusEmailInput(content *models.Content, payload queue.ContentStatusEmailPayload, siteName, siteURL string) service.ContentStatusEmailInput {
	status := strings.TrimSpace(payload.Status)
	if status == "" {
		status = content.Status
	}
	doi := strings.TrimSpace(payload.DOI)
	if doi == "" && content.DOI != nil {
		doi = *content.DOI
	}
	url := ""
	if base := strings.TrimRight(strings.TrimSpace(siteURL), "/"); base != "" {
		url = base + "/contents/" + content.Slug
	}
	return service.ContentStatusEmailInput{
		SiteName: siteName,
		Title:    content.Title,
		Status:   status,
		DOI:      doi,
		URL:      url,
	}
}

func uniqueEmails(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	result := make([]string, 0, len(emails))
	for _, email := range emails {
		normalized := strings.ToLower(strings.TrimSpace(email))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}
	return result
}
