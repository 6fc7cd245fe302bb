// Package baselinker — клиент BaseLinker connector API.
package baselinker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/DRSN-tech/feedconv/internal/cfg"
	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/DRSN-tech/feedconv/pkg/logger"
	"github.com/jimlawless/whereami"
)

const (
	statusSuccess = "SUCCESS"
	tokenHeader   = "X-BLToken"
	maxBodySize   = 16 << 20
)

// Limiter ограничивает частоту запросов к API.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Client вызывает методы BaseLinker: POST формы method + parameters (JSON) с токеном в заголовке.
type Client struct {
	http    *http.Client
	url     string
	token   string
	limiter Limiter
	logger  logger.Logger
}

func NewClient(cfg *cfg.BaseLinkerCfg, limiter Limiter, logger logger.Logger) *Client {
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		url:     cfg.URL,
		token:   cfg.Token,
		limiter: limiter,
		logger:  logger,
	}
}

// Call выполняет метод API и возвращает ответ как JSON-объект. Числа остаются json.Number.
// Ответ со status=ERROR возвращается как *domain.RemoteAPIError.
func (c *Client) Call(ctx context.Context, method string, params map[string]any) (map[string]any, error) {
	if c.token == "" {
		return nil, e.Wrap("baselinker token", e.ErrNotConfigured)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	if params == nil {
		params = map[string]any{}
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	form := url.Values{}
	form.Set("method", method)
	form.Set("parameters", string(encoded))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(tokenHeader, c.token)

	c.logger.Debugf("baselinker call: method=%s", method)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, e.Wrap(method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, e.Wrap(method, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.RemoteAPIError{
			Method:  method,
			Code:    fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message: http.StatusText(resp.StatusCode),
		}
	}

	result, err := decodeObject(body)
	if err != nil {
		return nil, e.Wrap(method, err)
	}

	if status, _ := result["status"].(string); status != statusSuccess {
		code, _ := result["error_code"].(string)
		msg, _ := result["error_message"].(string)
		if msg == "" {
			msg = "Unknown error"
		}
		c.logger.Warnf("baselinker %s failed: %s (%s)", method, msg, code)
		return nil, &domain.RemoteAPIError{Method: method, Code: code, Message: msg}
	}

	return result, nil
}

func decodeObject(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return out, nil
}
