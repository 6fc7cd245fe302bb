package baselinker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DRSN-tech/feedconv/internal/cfg"
	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/DRSN-tech/feedconv/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLimiter struct {
	calls int
	err   error
}

func (c *countingLimiter) Wait(context.Context) error {
	c.calls++
	return c.err
}

func newClient(url, token string, limiter Limiter) *Client {
	return NewClient(&cfg.BaseLinkerCfg{Token: token, URL: url, Timeout: time.Second}, limiter, logger.NewNopLogger())
}

func TestCall_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get("X-BLToken"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "getInventories", r.PostForm.Get("method"))

		var params map[string]any
		require.NoError(t, json.Unmarshal([]byte(r.PostForm.Get("parameters")), &params))
		assert.Equal(t, float64(81501), params["inventory_id"])

		_, _ = w.Write([]byte(`{"status":"SUCCESS","inventories":[{"inventory_id":81501,"name":"Main"}]}`))
	}))
	defer srv.Close()

	limiter := &countingLimiter{}
	res, err := newClient(srv.URL, "secret", limiter).Call(context.Background(), "getInventories", map[string]any{"inventory_id": 81501})
	require.NoError(t, err)
	assert.Equal(t, 1, limiter.calls)

	inventories, ok := res["inventories"].([]any)
	require.True(t, ok)
	require.Len(t, inventories, 1)
	assert.Equal(t, json.Number("81501"), inventories[0].(map[string]any)["inventory_id"])
}

func TestCall_RemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ERROR","error_code":"ERROR_BAD_TOKEN","error_message":"Invalid user token"}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, "bad", nil).Call(context.Background(), "getInventories", nil)

	var remote *domain.RemoteAPIError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "ERROR_BAD_TOKEN", remote.Code)
	assert.Equal(t, "Invalid user token", remote.Message)
	assert.ErrorIs(t, err, e.ErrRemoteAPI)
}

func TestCall_HTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, "t", nil).Call(context.Background(), "getInventories", nil)
	assert.ErrorIs(t, err, e.ErrRemoteAPI)
}

func TestCall_NotConfigured(t *testing.T) {
	_, err := newClient("http://unused", "", nil).Call(context.Background(), "getInventories", nil)
	assert.ErrorIs(t, err, e.ErrNotConfigured)
}

func TestCall_LimiterError(t *testing.T) {
	limiterErr := errors.New("limited")
	_, err := newClient("http://unused", "t", &countingLimiter{err: limiterErr}).Call(context.Background(), "getInventories", nil)
	assert.ErrorIs(t, err, limiterErr)
}

func TestLocalLimiter(t *testing.T) {
	l := NewLocalLimiter(600)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for range 5 {
		require.NoError(t, l.Wait(ctx))
	}
}
