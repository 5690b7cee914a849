package infrastructure

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/wyfcoding/nexoshop/internal/payment/domain"
	"github.com/wyfcoding/nexoshop/pkg/logger"
)

// 测试用 nonce
const (
	NonceValid        = "fake-valid-nonce"
	NonceDeclinedPref = "fake-declined"
)

// SimulatedGateway 本地模拟网关：非空且不以 fake-declined 开头的 nonce 扣款成功
type SimulatedGateway struct{}

// NewSimulatedGateway 创建模拟网关
func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{}
}

func (g *SimulatedGateway) Charge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error) {
	if req.Nonce == "" {
		return nil, domain.ErrMissingNonce
	}
	if strings.HasPrefix(req.Nonce, NonceDeclinedPref) {
		logger.Warn(ctx, "simulated charge declined", "order_number", req.OrderNumber)
		return nil, domain.ErrPaymentDeclined
	}
	res := &domain.ChargeResult{TransactionID: uuid.NewString(), Status: "settled"}
	logger.Info(ctx, "simulated charge settled", "order_number", req.OrderNumber, "amount", req.Amount.StringFixed(2), "transaction_id", res.TransactionID)
	return res, nil
}
