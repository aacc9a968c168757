package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"chirper/auth"
	"chirper/domain"
	"chirper/errs"
)

// registerAuthRoutes is a helper for registering all auth routes.
func (s *Server) registerAuthRoutes(r *mux.Router) {
	r.HandleFunc("/auth/register", s.handleRegister).Methods("POST")
	r.HandleFunc("/auth/login", s.handleLogin).Methods("POST")
	r.HandleFunc("/auth/me", s.requireAuth(s.handleMe)).Methods("GET")
}

// handleRegister handles the route "POST /api/auth/register".
// It creates a new user and signs them in by returning a bearer token.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var user domain.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}
	if user.Username == "" || user.Email == "" || user.Password == "" {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "All fields are required."))
		return
	}

	if err := s.us.Create(r.Context(), &user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	token, err := auth.NewToken(s.tokenSecret, user.ID, auth.TokenTTL)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"token": token,
		"user":  user,
	}); err != nil {
		errs.LogError(r, err)
	}
}

// handleLogin handles the route "POST /api/auth/login".
// It authenticates an email and password pair and returns a bearer token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}
	if creds.Email == "" || creds.Password == "" {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "All fields are required."))
		return
	}

	user, err := s.us.Authenticate(r.Context(), creds.Email, creds.Password)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	token, err := auth.NewToken(s.tokenSecret, user.ID, auth.TokenTTL)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"token": token,
		"user":  user,
	}); err != nil {
		errs.LogError(r, err)
	}
}

// handleMe handles the route "GET /api/auth/me".
// It returns the user record behind the request's bearer token.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.us.ByID(r.Context(), s.userID(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"user": user}); err != nil {
		errs.LogError(r, err)
	}
}

// requireAuth derives an authenticated user ID from the request's bearer
// token and attaches it to the request context. It is a pure function of the
// Authorization header and the token verifier; it never hits the database.
// Requests without a valid token are rejected with 401.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			errs.ReturnError(w, r, errs.Errorf(errs.ENOTAUTHENTICATED, "No token provided."))
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			errs.ReturnError(w, r, errs.Errorf(errs.ENOTAUTHENTICATED, "Invalid token format."))
			return
		}
		userID, err := auth.ParseToken(s.tokenSecret, parts[1])
		if err != nil {
			errs.ReturnError(w, r, errs.Errorf(errs.ENOTAUTHENTICATED, "Invalid or expired token."))
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
	}
}

// userID returns the authenticated user ID attached by requireAuth.
func (s *Server) userID(r *http.Request) int {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}
