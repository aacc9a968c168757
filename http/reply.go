package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"chirper/domain"
	"chirper/errs"
)

// registerReplyRoutes is a helper for registering all Reply routes.
func (s *Server) registerReplyRoutes(r *mux.Router) {
	r.HandleFunc("/replies/{tweetId:[0-9]+}", s.handleRepliesByTweet).Methods("GET")
	r.HandleFunc("/replies/{tweetId:[0-9]+}", s.requireAuth(s.handleCreateReply)).Methods("POST")
	r.HandleFunc("/replies/{replyId:[0-9]+}", s.requireAuth(s.handleDeleteReply)).Methods("DELETE")
}

// handleRepliesByTweet handles the route "GET /api/replies/:tweetId".
// It returns a tweet's replies, oldest first.
func (s *Server) handleRepliesByTweet(w http.ResponseWriter, r *http.Request) {
	tweetID, err := strconv.Atoi(mux.Vars(r)["tweetId"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid ID format."))
		return
	}

	replies, err := s.rs.ByTweetID(r.Context(), tweetID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"replies": replies}); err != nil {
		errs.LogError(r, err)
	}
}

// handleCreateReply handles the route "POST /api/replies/:tweetId".
// The authenticated user becomes the reply's author.
func (s *Server) handleCreateReply(w http.ResponseWriter, r *http.Request) {
	tweetID, err := strconv.Atoi(mux.Vars(r)["tweetId"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid ID format."))
		return
	}

	var reply domain.Reply
	if err := json.NewDecoder(r.Body).Decode(&reply); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}
	reply.TweetID = tweetID
	reply.AuthorID = s.userID(r)

	if err := s.rs.Create(r.Context(), &reply); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"reply": reply}); err != nil {
		errs.LogError(r, err)
	}
}

// handleDeleteReply handles the route "DELETE /api/replies/:replyId".
// Only the reply's author may delete it.
func (s *Server) handleDeleteReply(w http.ResponseWriter, r *http.Request) {
	replyID, err := strconv.Atoi(mux.Vars(r)["replyId"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid ID format."))
		return
	}

	reply, err := s.rs.ByID(r.Context(), replyID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if reply.AuthorID != s.userID(r) {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to delete this reply."))
		return
	}

	if err := s.rs.Delete(r.Context(), reply); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := json.NewEncoder(w).Encode(map[string]string{"message": "Reply deleted."}); err != nil {
		errs.LogError(r, err)
	}
}
