package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/edgechat/edgechat/pkg/ai"
	"github.com/edgechat/edgechat/pkg/auth"
	"github.com/edgechat/edgechat/pkg/httputil"
	"github.com/edgechat/edgechat/pkg/observability"
	"github.com/edgechat/edgechat/pkg/storage"
	"github.com/edgechat/edgechat/pkg/usage"
)

// stubProvider is a canned Provider for handler tests
type stubProvider struct {
	reply string
	err   error

	lastMessages []ai.Message
	lastText     string
	lastMime     string
}

func (p *stubProvider) Model() string { return "stub-model" }

func (p *stubProvider) Complete(_ context.Context, messages []ai.Message) (string, error) {
	p.lastMessages = messages
	return p.reply, p.err
}

func (p *stubProvider) Summarize(_ context.Context, text string) (string, error) {
	p.lastText = text
	return p.reply, p.err
}

func (p *stubProvider) Vision(_ context.Context, _ []byte, mimeType, _ string) (string, error) {
	p.lastMime = mimeType
	return p.reply, p.err
}

// testFixtures exposes the collaborators behind a test server
type testFixtures struct {
	users    *storage.MemoryUserStore
	usage    *storage.MemoryUsageStore
	chats    *storage.MemoryChatStore
	tokens   *auth.TokenService
	provider *stubProvider
	redis    *miniredis.Miniredis
}

const testRateCeiling = 100

func newTestServer(t *testing.T) (*Server, *testFixtures) {
	t.Helper()
	return newTestServerWithCeiling(t, testRateCeiling)
}

func newTestServerWithCeiling(t *testing.T, ceiling int) (*Server, *testFixtures) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	metrics := observability.NewMetrics(nil)

	f := &testFixtures{
		users:    storage.NewMemoryUserStore(),
		usage:    storage.NewMemoryUsageStore(),
		chats:    storage.NewMemoryChatStore(),
		tokens:   auth.NewTokenService("test-secret", 15*time.Minute, 7*24*time.Hour),
		provider: &stubProvider{reply: "stub reply"},
		redis:    mr,
	}

	recorder := usage.NewRecorder(f.usage, logger, metrics)
	t.Cleanup(func() { recorder.Close(time.Second) })

	server := NewServer(Options{
		AppName:          "EdgeChat Backend",
		Logger:           logger,
		Metrics:          metrics,
		Tokens:           f.tokens,
		Hasher:           auth.NewPasswordHasherWithCost(bcrypt.MinCost),
		Users:            f.users,
		Chats:            f.chats,
		Counters:         storage.NewRedisCounterStore(client),
		Recorder:         recorder,
		Provider:         f.provider,
		RateLimitCeiling: ceiling,
		RateLimitWindow:  time.Minute,
	})

	return server, f
}

// doJSON runs one request through the full pipeline
func doJSON(t *testing.T, server *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

// registerUser registers an account and returns its token pair
func registerUser(t *testing.T, server *Server, email, password string) TokenResponse {
	t.Helper()

	rec := doJSON(t, server, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
		Email:    email,
		Password: password,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}

	var tokens TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &tokens); err != nil {
		t.Fatalf("failed to decode token response: %v", err)
	}
	return tokens
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorEnvelope {
	t.Helper()

	var envelope httputil.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	return envelope
}
