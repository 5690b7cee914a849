package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/wyfcoding/nexoshop/internal/payment/domain"
	"github.com/wyfcoding/nexoshop/pkg/logger"
)

// HTTPConfig 外部支付网关配置
type HTTPConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Retries int
}

// HTTPGateway 通过 REST 调用外部支付网关
type HTTPGateway struct {
	client *resty.Client
}

type chargeBody struct {
	OrderNumber string `json:"order_number"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Nonce       string `json:"nonce"`
}

type errorBody struct {
	Error string `json:"error"`
}

// NewHTTPGateway 创建 HTTP 网关，服务端错误与网络错误按配置重试
func NewHTTPGateway(cfg HTTPConfig) *HTTPGateway {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}
	return &HTTPGateway{client: client}
}

func (g *HTTPGateway) Charge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error) {
	if req.Nonce == "" {
		return nil, domain.ErrMissingNonce
	}

	var (
		result domain.ChargeResult
		failed errorBody
	)
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", req.OrderNumber+":"+req.Nonce).
		SetBody(chargeBody{
			OrderNumber: req.OrderNumber,
			Amount:      req.Amount.StringFixed(2),
			Currency:    "EUR",
			Nonce:       req.Nonce,
		}).
		SetResult(&result).
		SetError(&failed).
		Post("/v1/charges")
	if err != nil {
		return nil, fmt.Errorf("charge request: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusPaymentRequired || resp.StatusCode() == http.StatusUnprocessableEntity:
		logger.Warn(ctx, "gateway declined charge", "order_number", req.OrderNumber, "reason", failed.Error)
		return nil, domain.ErrPaymentDeclined
	case resp.IsError():
		return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode(), failed.Error)
	}
	if result.TransactionID == "" {
		return nil, fmt.Errorf("gateway response missing transaction id")
	}
	return &result, nil
}
