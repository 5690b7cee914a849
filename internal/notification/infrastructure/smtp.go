package infrastructure

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"

	"github.com/jordan-wright/email"
	"github.com/wyfcoding/nexoshop/internal/notification/domain"
)

// SMTPConfig SMTP 服务器配置
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPSender 通过 SMTP 发送纯文本邮件
type SMTPSender struct {
	addr string
	auth smtp.Auth
	send func(e *email.Email, addr string, a smtp.Auth) error
}

// NewSMTPSender 创建 SMTP 发送器，未配置用户名时不做认证
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPSender{
		addr: cfg.Host + ":" + strconv.Itoa(cfg.Port),
		auth: auth,
		send: func(e *email.Email, addr string, a smtp.Auth) error { return e.Send(addr, a) },
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := email.NewEmail()
	e.From = msg.From
	e.To = msg.To
	e.Subject = msg.Subject
	e.Text = []byte(msg.Body)
	if err := s.send(e, s.addr, s.auth); err != nil {
		return fmt.Errorf("smtp send to %v: %w", msg.To, err)
	}
	return nil
}
