package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"chirper/crud"
	"chirper/domain"
)

// Server provides the http functionality of the app: routing, request
// handling and middleware. It performs authentication and authorization
// before handing things over to one of the crud services.
type Server struct {
	router *mux.Router
	logger *zap.Logger

	us    domain.UserService
	ts    domain.TweetService
	rs    domain.ReplyService
	fs    domain.FollowService
	ls    domain.LikeService
	cache *crud.CacheService

	tokenSecret  string
	clientOrigin string
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the app services passed in.
func NewServer(
	logger *zap.Logger,
	tokenSecret string,
	clientOrigin string,
	us domain.UserService,
	ts domain.TweetService,
	rs domain.ReplyService,
	fs domain.FollowService,
	ls domain.LikeService,
	cache *crud.CacheService,
) *Server {
	s := &Server{
		router:       mux.NewRouter(),
		logger:       logger,
		us:           us,
		ts:           ts,
		rs:           rs,
		fs:           fs,
		ls:           ls,
		cache:        cache,
		tokenSecret:  tokenSecret,
		clientOrigin: clientOrigin,
	}

	api := s.router.PathPrefix("/api").Subrouter()
	s.registerAuthRoutes(api)
	s.registerTweetRoutes(api)
	s.registerReplyRoutes(api)
	s.registerUserRoutes(api)
	s.registerSearchRoutes(api)
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router.Use(setContentTypeJSON, s.logRequest)
	return s
}

// handleHealth handles the route "GET /api/health". It's a plain liveness
// probe and touches nothing.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// The setContentTypeJSON middleware sets the content type to "application/json".
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// The logRequest middleware logs every request with a generated request id.
func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("request_id", uuid.NewString()),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// Run starts the server on the given address and serves until the passed in
// context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{s.clientOrigin}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	srv := &http.Server{
		Addr:         addr,
		Handler:      cors(s.router),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
