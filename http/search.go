package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"chirper/domain"
	"chirper/errs"
)

// Result caps for one search request.
const (
	maxUserResults  = 10
	maxTweetResults = 20
)

// registerSearchRoutes is a helper for registering the search route.
func (s *Server) registerSearchRoutes(r *mux.Router) {
	r.HandleFunc("/search", s.handleSearch).Methods("GET")
}

// handleSearch handles the route "GET /api/search?q=".
// It matches usernames and tweet texts case-insensitively and caps results
// at 10 users and 20 tweets. A blank query returns empty result sets.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	users := []*domain.User{}
	tweets := []*domain.Tweet{}
	if q != "" {
		var err error
		users, err = s.us.Search(r.Context(), q, maxUserResults)
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}
		tweets, err = s.ts.Search(r.Context(), q, maxTweetResults)
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}
	}

	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"users":  users,
		"tweets": tweets,
	}); err != nil {
		errs.LogError(r, err)
	}
}
