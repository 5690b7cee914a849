package application

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/nexoshop/internal/notification/domain"
	"github.com/wyfcoding/nexoshop/pkg/metrics"
)

type recordingSender struct {
	sent []domain.Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg domain.Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func sample() OrderConfirmation {
	return OrderConfirmation{
		OrderNumber:    "MOCK-0042",
		FirstName:      "Ana",
		Email:          "ana@example.com",
		Items:          []ConfirmationItem{{Name: "Camiseta", Size: "M", Quantity: 2, Price: "10.00", Cost: "20.00"}},
		Subtotal:       "20.00",
		ShippingMethod: "Envío a domicilio",
		ShippingCost:   "4.99",
		Total:          "24.99",
	}
}

func TestRenderOrderConfirmation(t *testing.T) {
	subject, body, err := RenderOrderConfirmation(sample())
	require.NoError(t, err)
	assert.Equal(t, "Confirmación de pedido MOCK-0042", subject)
	assert.Contains(t, body, "- Camiseta (M) x2 @ 10.00 = 20.00")
	assert.Contains(t, body, "Total: 24.99")
}

func TestSendOrderConfirmation(t *testing.T) {
	sender := &recordingSender{}
	m := metrics.New("test")
	svc := NewService(sender, "no-reply@example.com", m)

	assert.True(t, svc.SendOrderConfirmation(context.Background(), sample()))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "no-reply@example.com", sender.sent[0].From)
	assert.Equal(t, []string{"ana@example.com"}, sender.sent[0].To)

	noEmail := sample()
	noEmail.Email = ""
	assert.False(t, svc.SendOrderConfirmation(context.Background(), noEmail))
	assert.Len(t, sender.sent, 1)

	sender.err = errors.New("smtp down")
	assert.False(t, svc.SendOrderConfirmation(context.Background(), sample()))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EmailsTotal.WithLabelValues("failed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EmailsTotal.WithLabelValues("sent")))
}
