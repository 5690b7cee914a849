package infrastructure

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/nexoshop/internal/notification/domain"
)

func TestSMTPSenderBuildsEmail(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p"})
	var (
		got  *email.Email
		addr string
	)
	s.send = func(e *email.Email, a string, auth smtp.Auth) error {
		got, addr = e, a
		assert.NotNil(t, auth)
		return nil
	}

	err := s.Send(context.Background(), domain.Message{
		From: "shop@example.com", To: []string{"ana@example.com"}, Subject: "Hola", Body: "texto",
	})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", addr)
	assert.Equal(t, "shop@example.com", got.From)
	assert.Equal(t, "texto", string(got.Text))
}

func TestSMTPSenderWrapsError(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 25})
	s.send = func(*email.Email, string, smtp.Auth) error { return errors.New("refused") }

	err := s.Send(context.Background(), domain.Message{To: []string{"x@example.com"}})
	assert.ErrorContains(t, err, "refused")
}

func TestConsoleSender(t *testing.T) {
	assert.NoError(t, NewConsoleSender().Send(context.Background(), domain.Message{Subject: "s"}))
}
