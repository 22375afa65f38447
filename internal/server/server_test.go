package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/messagely/apiserver/config"
	"github.com/messagely/apiserver/internal/store"
	"github.com/messagely/apiserver/internal/store/memory"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		ServerPort: 0,
		Auth: config.AuthConfig{
			JWTSecret:          "secret",
			TokenTTL:           time.Hour,
			BcryptWorkFactor:   4,
			LoginRatePerMinute: 60,
			LoginBurst:         3,
		},
	}
}

func memoryDeps() Deps {
	mem := memory.New()
	return Deps{Users: mem.Users(), Messages: mem.Messages()}
}

func request(h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.0.2.1:5000"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestNewRouter_OpsEndpoints(t *testing.T) {
	h := NewRouter(testConfig(), memoryDeps(), zerolog.Nop())

	assert.Equal(t, http.StatusOK, request(h, http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusOK, request(h, http.MethodGet, "/readyz", nil).Code)

	rr := request(h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "http_requests_total")
}

func TestNewRouter_Unauthenticated(t *testing.T) {
	h := NewRouter(testConfig(), memoryDeps(), zerolog.Nop())

	assert.Equal(t, http.StatusUnauthorized, request(h, http.MethodGet, "/users", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, request(h, http.MethodPost, "/messages", nil).Code)
	assert.Equal(t, http.StatusNotFound, request(h, http.MethodGet, "/admin", nil).Code)
}

func TestNewRouter_AuthRateLimited(t *testing.T) {
	h := NewRouter(testConfig(), memoryDeps(), zerolog.Nop())
	login := map[string]string{"username": "ghost", "password": "x"}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusBadRequest, request(h, http.MethodPost, "/auth/login", login).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, request(h, http.MethodPost, "/auth/login", login).Code)
}

func TestNewRouter_WithSQLStore(t *testing.T) {
	dbConn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer dbConn.Close()

	deps := Deps{
		Users:    store.NewUserRepository(dbConn),
		Messages: store.NewMessageRepository(dbConn),
		DB:       dbConn,
	}
	h := NewRouter(testConfig(), deps, zerolog.Nop())

	mock.ExpectPing()
	assert.Equal(t, http.StatusOK, request(h, http.MethodGet, "/readyz", nil).Code)

	mock.ExpectQuery("SELECT password FROM users").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"password"}))
	rr := request(h, http.MethodPost, "/auth/login", map[string]string{"username": "ghost", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "invalid username/password"))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNew_RequiresSecret(t *testing.T) {
	_, err := New(context.Background(), config.Config{}, zerolog.Nop(), Options{InMemory: true})
	assert.EqualError(t, err, "JWT_SECRET is required")
}

func TestNew_InMemory(t *testing.T) {
	cfg := testConfig()
	cfg.ServerPort = 18181
	srv, err := New(context.Background(), cfg, zerolog.Nop(), Options{InMemory: true})
	require.NoError(t, err)
	assert.Equal(t, ":18181", srv.Addr())
	require.NoError(t, srv.Shutdown(context.Background()))
}
