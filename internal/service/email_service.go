package service

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/pressdesk/internal/config"
	"github.com/pressdesk/internal/i18n"
)

const smtpDialTimeout = 15 * time.Second

// EmailService 作者状态通知邮件
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// ContentStatusEmailInput 状态通知模板参数
type ContentStatusEmailInput struct {
	SiteName string
	Title    string
	Status   string
	DOI      string
	URL      string
}

// SendContentStatusEmail 按收件人语言渲染并发送状态通知
func (s *EmailService) SendContentStatusEmail(toEmail string, input ContentStatusEmailInput, locale string) error {
	subject, body := renderContentStatus(input, locale)
	return s.send(toEmail, subject, body)
}

// SiteURL 站点地址，用于拼接内容链接
func (s *EmailService) SiteURL() string {
	if s == nil || s.cfg == nil {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(s.cfg.SiteURL), "/")
}

// SiteName 邮件中展示的站点名称
func (s *EmailService) SiteName() string {
	if s == nil || s.cfg == nil {
		return ""
	}
	return strings.TrimSpace(s.cfg.FromName)
}

func (s *EmailService) send(to, subject, body string) error {
	cfg := s.cfg
	if cfg == nil || !cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if cfg.Host == "" || cfg.Port == 0 || cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(to); err != nil {
		return ErrInvalidEmail
	}
	msg := composeMessage(fromHeader(cfg.From, cfg.FromName), to, subject, body)
	return classifySendError(s.deliver(to, msg))
}

// deliver 一次 SMTP 会话：use_ssl 直接建立 TLS 连接，use_tls 明文连接后 STARTTLS
func (s *EmailService) deliver(to string, msg []byte) error {
	cfg := s.cfg
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	tlsConfig := &tls.Config{ServerName: cfg.Host}

	var conn net.Conn
	var err error
	dialer := &net.Dialer{Timeout: smtpDialTimeout}
	if cfg.UseSSL {
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, tlsConfig)
	} else {
		conn, err = dialer.Dial("tcp", addr)
	}
	if err != nil {
		return err
	}
	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer client.Close()

	if cfg.UseTLS && !cfg.UseSSL {
		if err := client.StartTLS(tlsConfig); err != nil {
			return err
		}
	}
	if cfg.Username != "" || cfg.Password != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)); err != nil {
				return err
			}
		}
	}
	if err := client.Mail(cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func renderContentStatus(input ContentStatusEmailInput, locale string) (string, string) {
	locale = i18n.NormalizeLocale(locale)
	statusKey := "content.status." + strings.ToLower(strings.TrimSpace(input.Status))
	statusLabel := i18n.T(locale, statusKey)
	if statusLabel == statusKey {
		statusLabel = input.Status
	}
	siteName := strings.TrimSpace(input.SiteName)
	if siteName == "" {
		siteName = "pressdesk"
	}
	subject := i18n.Sprintf(locale, "email.content_status.subject", siteName, input.Title)

	var details []string
	if doi := strings.TrimSpace(input.DOI); doi != "" {
		details = append(details, "DOI: https://doi.org/"+doi)
	}
	if link := strings.TrimSpace(input.URL); link != "" {
		details = append(details, link)
	}
	body := i18n.Sprintf(locale, "email.content_status.body", input.Title, statusLabel, strings.Join(details, "\n"))
	return subject, strings.TrimRight(body, "\n") + "\n"
}

func fromHeader(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	return (&mail.Address{Name: mime.QEncoding.Encode("UTF-8", name), Address: from}).String()
}

func composeMessage(from, to, subject, body string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	buf.WriteString(body)
	return buf.Bytes()
}

// classifySendError 收件人被拒映射为 ErrEmailRecipientRejected，worker 据此放弃重试
func classifySendError(err error) error {
	if err == nil {
		return nil
	}
	if recipientRejected(err) {
		return fmt.Errorf("%w: %v", ErrEmailRecipientRejected, err)
	}
	return err
}

var rejectionPhrases = []string{
	"no such recipient",
	"no such user",
	"recipient not found",
	"recipient address rejected",
	"invalid recipient",
	"user unknown",
	"unknown user",
	"unknown mailbox",
	"mailbox unavailable",
}

func recipientRejected(err error) bool {
	if err == nil {
		return false
	}
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		switch protoErr.Code {
		case 550, 551, 553:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	for _, phrase := range rejectionPhrases {
		if strings.Contains(message, phrase) {
			return true
		}
	}
	return false
}
