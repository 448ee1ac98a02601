package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/pipeline"
	"github.com/ppiankov/factcheck/internal/scope"
)

// Checker checks a single claim. *pipeline.Pipeline satisfies it.
type Checker interface {
	Check(ctx context.Context, claim string, sel scope.Selector) *model.Outcome
}

// Server exposes the pipeline over HTTP
type Server struct {
	checker  Checker
	renderer *pipeline.Renderer
	config   model.ServerConfig
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	validate *validator.Validate
	router   *chi.Mux
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the request logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithGatherer mounts /metrics for the given registry
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// New creates a server around checker
func New(checker Checker, cfg model.ServerConfig, opts ...Option) *Server {
	s := &Server{
		checker:  checker,
		renderer: pipeline.NewRenderer(),
		config:   cfg,
		logger:   zap.NewNop(),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	if s.config.RequestTimeout > 0 {
		r.Use(requestDeadline(s.config.RequestTimeout))
	}

	r.Get("/healthz", s.handleHealth)

	// Legacy single-source endpoint
	r.Get("/smc", s.handleLegacy)
	r.Get("/smc/", s.handleLegacy)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/check", s.handleCheck)
		r.Get("/categories", s.handleCategories)
	})

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on the configured address until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		timeout := s.config.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		s.logger.Info("server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Health check handler
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLegacy answers GET /smc/?user_input=... with {"message": verdict}.
// The counter-argument is not exposed here.
func (s *Server) handleLegacy(w http.ResponseWriter, r *http.Request) {
	if !r.URL.Query().Has("user_input") {
		respondError(w, http.StatusBadRequest, "user_input is required", nil)
		return
	}
	claim := r.URL.Query().Get("user_input")
	if err := s.checkLength(claim); err != nil {
		respondError(w, http.StatusBadRequest, "user_input is too long", err)
		return
	}

	out := s.checker.Check(r.Context(), claim, scope.Normalize(s.config.LegacySelector))
	respondJSON(w, http.StatusOK, map[string]string{"message": out.Verdict})
}

type checkRequest struct {
	Claim       string `json:"claim"`
	Category    string `json:"category" validate:"max=64"`
	Constrained *bool  `json:"constrained,omitempty"`
}

type checkResponse struct {
	ID           string           `json:"id"`
	Claim        string           `json:"claim"`
	Category     string           `json:"category,omitempty"`
	Verdict      string           `json:"verdict"`
	VerdictHTML  string           `json:"verdict_html"`
	Counter      string           `json:"counter"`
	IsFalse      bool             `json:"is_false"`
	Status       model.Status     `json:"status"`
	Citations    []model.Citation `json:"citations"`
	CounterError string           `json:"counter_error,omitempty"`
}

// handleCheck runs a categorized check. Every pipeline outcome, including
// warnings and service errors, is a 200; only malformed requests are 400.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(s.config.MaxClaimBytes)+4096)

	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request", err)
		return
	}
	if err := s.checkLength(req.Claim); err != nil {
		respondError(w, http.StatusBadRequest, "claim is too long", err)
		return
	}

	sel := scope.Normalize(req.Category)
	if sel == "" && req.Constrained != nil {
		sel = scope.FromFlag(*req.Constrained)
	}

	out := s.checker.Check(r.Context(), req.Claim, sel)

	citations := out.Citations
	if citations == nil {
		citations = []model.Citation{}
	}
	respondJSON(w, http.StatusOK, checkResponse{
		ID:           out.ID,
		Claim:        out.Claim,
		Category:     out.Category,
		Verdict:      out.Verdict,
		VerdictHTML:  s.renderer.HTML(out.Verdict),
		Counter:      out.Counter,
		IsFalse:      out.IsFalse,
		Status:       out.Status,
		Citations:    citations,
		CounterError: out.CounterError,
	})
}

type category struct {
	Name    string   `json:"name"`
	Domains []string `json:"domains"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats := scope.Categories()
	resp := make([]category, 0, len(cats))
	for _, c := range cats {
		resp = append(resp, category{Name: string(c), Domains: scope.Resolve(c).Domains()})
	}
	respondJSON(w, http.StatusOK, map[string]any{"categories": resp})
}

func (s *Server) checkLength(claim string) error {
	if s.config.MaxClaimBytes <= 0 {
		return nil
	}
	return s.validate.Var(claim, fmt.Sprintf("max=%d", s.config.MaxClaimBytes))
}

// requestDeadline bounds the request context without writing a response of
// its own. An expired deadline reaches the client as a service_error outcome.
func requestDeadline(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestLogger logs one line per request through zap
func requestLogger(l *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				l.Info("request",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// Helper functions
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]string{
		"error": message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}
