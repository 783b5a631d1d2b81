package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/edgechat/edgechat/pkg/ai"
	"github.com/edgechat/edgechat/pkg/apperr"
	"github.com/edgechat/edgechat/pkg/auth"
	"github.com/edgechat/edgechat/pkg/httputil"
	"github.com/edgechat/edgechat/pkg/middleware"
	"github.com/edgechat/edgechat/pkg/observability"
	"github.com/edgechat/edgechat/pkg/storage"
	"github.com/edgechat/edgechat/pkg/usage"
)

// Options carries the collaborators the server wires together
type Options struct {
	AppName string

	Logger  *observability.Logger
	Metrics *observability.Metrics

	Tokens *auth.TokenService
	Hasher *auth.PasswordHasher

	Users    storage.UserStore
	Chats    storage.ChatStore
	Counters storage.CounterStore
	Recorder *usage.Recorder

	Provider ai.Provider

	RateLimitCeiling int
	RateLimitWindow  time.Duration
}

// Server is the HTTP API: router plus the assembled middleware pipeline
type Server struct {
	opts    Options
	router  *mux.Router
	handler http.Handler
}

// NewServer creates the API server and builds the full pipeline
func NewServer(opts Options) *Server {
	s := &Server{
		opts:   opts,
		router: mux.NewRouter(),
	}
	s.setupRoutes()

	limiter := middleware.NewRateLimiter(
		opts.Counters,
		opts.RateLimitCeiling,
		opts.RateLimitWindow,
		opts.Logger,
		opts.Metrics,
	)

	// Request ID sits outermost so every response, including panics and rate
	// limit rejections, carries the correlation header. Recovery runs just
	// inside it so a panic envelope still has the request_id.
	pipeline := middleware.Chain(
		middleware.RequestID(opts.Logger),
		middleware.Recover(opts.Logger),
		middleware.HTTPMetrics(opts.Metrics),
		limiter.Handler,
		middleware.UsageHook(opts.Tokens, opts.Recorder),
	)
	s.handler = pipeline(s.router)

	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	// Unknown paths still leave through the uniform envelope.
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, r, apperr.New(apperr.KindNotFound, "Not Found"))
	})

	s.router.HandleFunc("/", s.root).Methods("GET")

	v1 := s.router.PathPrefix("/api/v1").Subrouter()

	authHandlers := newAuthHandlers(s.opts.Tokens, s.opts.Hasher, s.opts.Users)
	v1.HandleFunc("/auth/register", authHandlers.register).Methods("POST")
	v1.HandleFunc("/auth/login", authHandlers.login).Methods("POST")
	v1.HandleFunc("/auth/refresh", authHandlers.refresh).Methods("POST")

	gate := middleware.NewAuthenticator(s.opts.Tokens, s.opts.Users)
	protected := v1.NewRoute().Subrouter()
	protected.Use(gate.Handler)

	protected.HandleFunc("/auth/me", authHandlers.me).Methods("GET")

	aiHandlers := newAIHandlers(s.opts.Provider, s.opts.Chats, s.opts.Logger)
	protected.HandleFunc("/ai/chat", aiHandlers.chat).Methods("POST")
	protected.HandleFunc("/ai/summarize", aiHandlers.summarize).Methods("POST")
	protected.HandleFunc("/ai/vision", aiHandlers.vision).Methods("POST")

	chatHandlers := newChatHandlers(s.opts.Chats)
	protected.HandleFunc("/chat/conversations", chatHandlers.list).Methods("GET")
	protected.HandleFunc("/chat/conversations/{id}", chatHandlers.get).Methods("GET")
	protected.HandleFunc("/chat/conversations/{id}", chatHandlers.delete).Methods("DELETE")

	usageHandlers := newUsageHandlers(s.opts.Recorder)
	protected.HandleFunc("/usage/me", usageHandlers.me).Methods("GET")
}

// ServeHTTP implements http.Handler by running the full pipeline
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// root handles GET /
func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, RootResponse{Status: "ok", App: s.opts.AppName})
}
