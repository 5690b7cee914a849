package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrPaymentDeclined = errors.New("payment declined")
	ErrMissingNonce    = errors.New("payment nonce is required")
)

// ChargeRequest 扣款请求
type ChargeRequest struct {
	OrderNumber string          `json:"order_number"`
	Amount      decimal.Decimal `json:"amount"`
	Nonce       string          `json:"nonce"`
}

// ChargeResult 扣款结果
type ChargeResult struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

// Gateway 支付网关
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}
