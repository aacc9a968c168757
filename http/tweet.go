package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"chirper/domain"
	"chirper/errs"
)

// registerTweetRoutes is a helper for registering all Tweet routes.
func (s *Server) registerTweetRoutes(r *mux.Router) {
	r.HandleFunc("/tweets", s.handleFeed).Methods("GET")
	r.HandleFunc("/tweets/user/{username}", s.handleTweetsByUser).Methods("GET")
	r.HandleFunc("/tweets", s.requireAuth(s.handleCreateTweet)).Methods("POST")
	r.HandleFunc("/tweets/{id:[0-9]+}", s.requireAuth(s.handleDeleteTweet)).Methods("DELETE")
	r.HandleFunc("/tweets/{id:[0-9]+}/like", s.requireAuth(s.handleToggleLike)).Methods("POST")
}

// handleFeed handles the route "GET /api/tweets".
// It returns every tweet, newest first, served from the feed cache when warm.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	if data, ok := s.cache.GetFeed(r.Context()); ok {
		w.Write(data)
		return
	}

	tweets, err := s.ts.All(r.Context())
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	data, err := json.Marshal(map[string]interface{}{"tweets": tweets})
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.cache.SetFeed(r.Context(), data)
	w.Write(data)
}

// handleTweetsByUser handles the route "GET /api/tweets/user/:username".
// It returns one user's tweets, newest first.
func (s *Server) handleTweetsByUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.us.ByUsername(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	tweets, err := s.ts.ByAuthorID(r.Context(), user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"tweets": tweets}); err != nil {
		errs.LogError(r, err)
	}
}

// handleCreateTweet handles the route "POST /api/tweets".
// The authenticated user becomes the tweet's author.
func (s *Server) handleCreateTweet(w http.ResponseWriter, r *http.Request) {
	var tweet domain.Tweet
	if err := json.NewDecoder(r.Body).Decode(&tweet); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}
	tweet.AuthorID = s.userID(r)

	if err := s.ts.Create(r.Context(), &tweet); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.cache.InvalidateFeed(r.Context())

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"tweet": tweet}); err != nil {
		errs.LogError(r, err)
	}
}

// handleDeleteTweet handles the route "DELETE /api/tweets/:id".
// Only the tweet's author may delete it.
func (s *Server) handleDeleteTweet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid ID format."))
		return
	}

	tweet, err := s.ts.ByID(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if tweet.AuthorID != s.userID(r) {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to delete this tweet."))
		return
	}

	if err := s.ts.Delete(r.Context(), tweet); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.cache.InvalidateFeed(r.Context())

	if err := json.NewEncoder(w).Encode(map[string]string{"message": "Tweet deleted."}); err != nil {
		errs.LogError(r, err)
	}
}

// handleToggleLike handles the route "POST /api/tweets/:id/like".
// It flips the authenticated user's like on the tweet and returns the
// updated tweet.
func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid ID format."))
		return
	}

	tweet, err := s.ls.Toggle(r.Context(), id, s.userID(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.cache.InvalidateFeed(r.Context())

	if err := json.NewEncoder(w).Encode(map[string]interface{}{"tweet": tweet}); err != nil {
		errs.LogError(r, err)
	}
}
