package domain

import "context"

// Message 待发送的邮件
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Sender 邮件发送接口
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
