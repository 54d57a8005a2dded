package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"seo_strategist/generator"
	"seo_strategist/gsc"
	"seo_strategist/pagefetch"
	"seo_strategist/usage"
)

//go:embed web/dist
var embeddedStatic embed.FS

const anonymousClient = "anonymous"

// ArticleFetcher loads the readable content of a page for URL-based audits.
type ArticleFetcher interface {
	Article(ctx context.Context, url string) (pagefetch.Article, error)
}

// Options wires optional collaborators into the server.
type Options struct {
	Tracker *usage.Tracker
	GSC     gsc.Source
	// Fetcher is nil when outbound fetching is disabled.
	Fetcher  ArticleFetcher
	Logger   *zap.Logger
	Gatherer prometheus.Gatherer
	// Timeout bounds each model-backed request.
	Timeout time.Duration
	// SessionTTL drops sessions idle for longer; MaxSessions caps how many are held.
	SessionTTL  time.Duration
	MaxSessions int
}

type Server struct {
	agent    *generator.Agent
	tracker  *usage.Tracker
	gsc      gsc.Source
	fetcher  ArticleFetcher
	logger   *zap.Logger
	gatherer prometheus.Gatherer
	timeout  time.Duration
	store    *sessionStore
	staticFS http.Handler
}

func New(agent *generator.Agent, opts Options) (*Server, error) {
	if agent == nil {
		return nil, errors.New("generator agent required")
	}

	sub, err := fs.Sub(embeddedStatic, "web/dist")
	if err != nil {
		return nil, err
	}

	srv := &Server{
		agent:    agent,
		tracker:  opts.Tracker,
		gsc:      opts.GSC,
		fetcher:  opts.Fetcher,
		logger:   opts.Logger,
		gatherer: opts.Gatherer,
		timeout:  opts.Timeout,
		store:    newStore(opts.SessionTTL, opts.MaxSessions),
		staticFS: http.FileServer(http.FS(sub)),
	}
	if srv.tracker == nil {
		srv.tracker = usage.NewTracker(nil, nil)
	}
	if srv.gsc == nil {
		srv.gsc = gsc.FixtureSource{}
	}
	if srv.logger == nil {
		srv.logger = zap.NewNop()
	}
	if srv.gatherer == nil {
		srv.gatherer = prometheus.DefaultGatherer
	}
	if srv.timeout <= 0 {
		srv.timeout = 3 * time.Minute
	}
	return srv, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sessions", s.handleSessionCreate)
	mux.HandleFunc("GET /api/sessions/{id}", s.withSession(s.handleSessionGet))
	mux.HandleFunc("PUT /api/sessions/{id}/tab", s.withSession(s.handleSetTab))
	mux.HandleFunc("POST /api/sessions/{id}/strategy", s.withSession(s.handleStrategy))
	mux.HandleFunc("POST /api/sessions/{id}/briefs", s.withSession(s.handleBrief))
	mux.HandleFunc("DELETE /api/sessions/{id}/brief", s.withSession(s.handleCloseBrief))
	mux.HandleFunc("DELETE /api/sessions/{id}/error", s.withSession(s.handleDismissError))

	mux.HandleFunc("POST /api/brand-voice", s.handleBrandVoice)
	mux.HandleFunc("POST /api/video-briefs", s.handleVideoBrief)
	mux.HandleFunc("POST /api/audits", s.handleAudit)
	mux.HandleFunc("POST /api/internal-links", s.handleInternalLinks)
	mux.HandleFunc("GET /api/gsc/pages", s.handleGSCPages)
	mux.HandleFunc("POST /api/gsc/decay", s.handleGSCDecay)
	mux.HandleFunc("POST /api/gsc/ctr", s.handleGSCCTR)
	mux.HandleFunc("POST /api/export", s.handleExport)
	mux.HandleFunc("GET /api/options", s.handleOptions)

	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/", s.staticHandler())
	return logMiddleware(s.logger, mux)
}

func (s *Server) staticHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		s.staticFS.ServeHTTP(w, r)
	})
}

// withSession resolves {id} or answers 404.
func (s *Server) withSession(next func(http.ResponseWriter, *http.Request, *generator.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.store.get(r.PathValue("id"))
		if !ok {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		next(w, r, sess)
	}
}

// modelContext bounds a model-backed request.
func (s *Server) modelContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.timeout)
}

// --- Helpers ---

// decodeBody reads a JSON body. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func newID() string {
	return uuid.NewString()
}

// clientID identifies the caller of a stateless tool for usage limits.
func clientID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-Client-ID")); id != "" {
		return id
	}
	return anonymousClient
}

type errorResp struct {
	Error   string              `json:"error"`
	Session *generator.Snapshot `json:"session,omitempty"`
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSONStatus(w, status, errorResp{Error: msg})
}

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	var fetchErr *pagefetch.FetchError
	var notFound *gsc.NotFoundError
	switch {
	case errors.Is(err, generator.ErrUsageLimitReached):
		return http.StatusTooManyRequests
	case generator.IsContext(err):
		return http.StatusConflict
	case generator.IsValidation(err):
		return http.StatusBadRequest
	case generator.IsRemoteCall(err), generator.IsParse(err), errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, snap *generator.Snapshot) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSONStatus(w, status, errorResp{Error: generator.UserMessage(err), Session: snap})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)))
	})
}
