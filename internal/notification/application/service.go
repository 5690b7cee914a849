package application

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/wyfcoding/nexoshop/internal/notification/domain"
	"github.com/wyfcoding/nexoshop/pkg/logger"
	"github.com/wyfcoding/nexoshop/pkg/metrics"
)

// ConfirmationItem 确认邮件中的一行
type ConfirmationItem struct {
	Name     string
	Size     string
	Quantity int
	Price    string
	Cost     string
}

// OrderConfirmation 订单确认邮件数据
type OrderConfirmation struct {
	OrderNumber    string
	FirstName      string
	Email          string
	Items          []ConfirmationItem
	Subtotal       string
	ShippingMethod string
	ShippingCost   string
	Total          string
}

const confirmationText = `Hola {{.FirstName}},

Gracias por tu compra. Hemos recibido tu pedido {{.OrderNumber}}.

{{range .Items}}- {{.Name}}{{if .Size}} ({{.Size}}){{end}} x{{.Quantity}} @ {{.Price}} = {{.Cost}}
{{end}}
Subtotal: {{.Subtotal}}
Envío ({{.ShippingMethod}}): {{.ShippingCost}}
Total: {{.Total}}
`

var confirmationTmpl = template.Must(template.New("order_confirmation").Parse(confirmationText))

// Service 邮件通知服务，发送失败只记录不返回
type Service struct {
	sender  domain.Sender
	from    string
	metrics *metrics.Metrics
}

// NewService 创建通知服务
func NewService(sender domain.Sender, from string, m *metrics.Metrics) *Service {
	return &Service{sender: sender, from: from, metrics: m}
}

// RenderOrderConfirmation 生成主题与正文
func RenderOrderConfirmation(data OrderConfirmation) (subject, body string, err error) {
	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return fmt.Sprintf("Confirmación de pedido %s", data.OrderNumber), buf.String(), nil
}

// SendOrderConfirmation 发送订单确认邮件，邮箱为空时跳过；返回是否已发送
func (s *Service) SendOrderConfirmation(ctx context.Context, data OrderConfirmation) bool {
	if data.Email == "" {
		s.metrics.RecordEmail("skipped")
		return false
	}
	subject, body, err := RenderOrderConfirmation(data)
	if err != nil {
		s.metrics.RecordEmail("failed")
		logger.Error(ctx, "render order confirmation failed", "order_number", data.OrderNumber, "error", err)
		return false
	}
	msg := domain.Message{From: s.from, To: []string{data.Email}, Subject: subject, Body: body}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.metrics.RecordEmail("failed")
		logger.Error(ctx, "send order confirmation failed", "order_number", data.OrderNumber, "to", data.Email, "error", err)
		return false
	}
	s.metrics.RecordEmail("sent")
	logger.Info(ctx, "order confirmation sent", "order_number", data.OrderNumber, "to", data.Email)
	return true
}
