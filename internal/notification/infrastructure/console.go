package infrastructure

import (
	"context"
	"strings"

	"github.com/wyfcoding/nexoshop/internal/notification/domain"
	"github.com/wyfcoding/nexoshop/pkg/logger"
)

// ConsoleSender 把邮件写入日志，开发环境使用
type ConsoleSender struct{}

func NewConsoleSender() *ConsoleSender { return &ConsoleSender{} }

func (ConsoleSender) Send(ctx context.Context, msg domain.Message) error {
	logger.Info(ctx, "email (console backend)",
		"from", msg.From,
		"to", strings.Join(msg.To, ","),
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}
