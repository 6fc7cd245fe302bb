package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/DRSN-tech/feedconv/internal/cfg"
	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/DRSN-tech/feedconv/pkg/e"
)

// HTTPFetcher загружает фиды поставщиков по URL. Одна попытка, без повторов.
type HTTPFetcher struct {
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
}

func NewHTTPFetcher(cfg *cfg.FeedCfg) *HTTPFetcher {
	return &HTTPFetcher{
		client:   &http.Client{},
		timeout:  cfg.FetchTimeout,
		maxBytes: cfg.MaxBytes,
	}
}

// Fetch возвращает тело ответа целиком. Сбои сети, таймаут, статус не 2xx
// и превышение лимита размера возвращаются как *domain.FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/xml, text/xml;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &domain.FetchError{URL: url, Err: fmt.Errorf("unexpected status code %d", resp.StatusCode)}
	}

	body := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: err}
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, &domain.FetchError{URL: url, Err: e.Wrap(fmt.Sprintf("limit %d bytes", f.maxBytes), e.ErrFileTooLarge)}
	}

	return data, nil
}
