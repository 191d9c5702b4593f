// Package payment 支付服务商的结账会话客户端。
package payment

import (
	"IdeaVault/internal/api/config"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
)

var ErrNotConfigured = errors.New("payment provider not configured")

// CheckoutRequest 创建结账会话
type CheckoutRequest struct {
	UserID     uint64 `json:"client_reference_id"`
	Tier       string `json:"tier"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

// Session 服务商返回的结账会话
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type Client struct {
	http       *resty.Client
	successURL string
	cancelURL  string
}

func NewClient(cfg config.PaymentConfig) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")).
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(300*time.Millisecond).
		SetAuthToken(cfg.ApiKey).
		SetHeader("Content-Type", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)
	return &Client{
		http:       client,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
	}
}

// CreateCheckoutSession 调用服务商创建会话，返回会话 ID 与跳转地址
func (c *Client) CreateCheckoutSession(ctx context.Context, userID uint64, tier string) (*Session, error) {
	if c.http.BaseURL == "" {
		return nil, ErrNotConfigured
	}
	session := &Session{}
	failure := &errorBody{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&CheckoutRequest{
			UserID:     userID,
			Tier:       tier,
			SuccessURL: c.successURL,
			CancelURL:  c.cancelURL,
		}).
		SetResult(session).
		SetError(failure).
		Post("/checkout/sessions")
	if err != nil {
		return nil, fmt.Errorf("checkout request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("checkout rejected: status=%d msg=%s", resp.StatusCode(), failure.Error.Message)
	}
	if session.ID == "" {
		return nil, errors.New("checkout response missing session id")
	}
	return session, nil
}
