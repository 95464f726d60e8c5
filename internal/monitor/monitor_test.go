package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeBot bool

func (f fakeBot) Ready() bool { return bool(f) }

func doHealth(t *testing.T, s *Server, method string) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, "/health", nil))

	var resp HealthResponse
	if rec.Code != http.StatusMethodNotAllowed {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestHealthOK(t *testing.T) {
	s := NewServer(0, fakePinger{}, fakeBot(true), zap.NewNop().Sugar())

	rec, resp := doHealth(t, s, http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, HealthResponse{Success: true, Redis: "ok", Discord: true}, resp)
}

func TestHealthRedisDown(t *testing.T) {
	s := NewServer(0, fakePinger{err: errors.New("dial tcp: connection refused")}, fakeBot(false), zap.NewNop().Sugar())

	rec, resp := doHealth(t, s, http.MethodGet)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "unreachable", resp.Redis)
	assert.False(t, resp.Discord)
}

func TestHealthMethodNotAllowed(t *testing.T) {
	s := NewServer(0, fakePinger{}, nil, zap.NewNop().Sugar())

	rec, _ := doHealth(t, s, http.MethodPost)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStopWithoutStart(t *testing.T) {
	s := NewServer(0, fakePinger{}, nil, zap.NewNop().Sugar())
	assert.NoError(t, s.Stop(context.Background()))
}
