package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"chirper/domain"
	"chirper/errs"
)

// registerUserRoutes is a helper for registering all User routes.
func (s *Server) registerUserRoutes(r *mux.Router) {
	r.HandleFunc("/users/me", s.requireAuth(s.handleUpdateMe)).Methods("PUT")
	r.HandleFunc("/users/{username}", s.handleProfile).Methods("GET")
	r.HandleFunc("/users/{id:[0-9]+}/follow", s.requireAuth(s.handleToggleFollow)).Methods("POST")
}

// handleProfile handles the route "GET /api/users/:username".
// It returns the user with followers and following populated.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.us.ByUsername(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"user": user}); err != nil {
		errs.LogError(r, err)
	}
}

// handleToggleFollow handles the route "POST /api/users/:id/follow".
// It flips the relationship between the authenticated user and the target.
func (s *Server) handleToggleFollow(w http.ResponseWriter, r *http.Request) {
	targetID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid ID format."))
		return
	}

	state, err := s.fs.Toggle(r.Context(), s.userID(r), targetID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	message := "User unfollowed."
	if state == domain.Followed {
		message = "User followed."
	}
	if err := json.NewEncoder(w).Encode(map[string]string{"message": message}); err != nil {
		errs.LogError(r, err)
	}
}

// handleUpdateMe handles the route "PUT /api/users/me".
// The update applies all-or-nothing; see crud.UserService.Update.
func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var upd domain.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	user, err := s.us.Update(r.Context(), s.userID(r), upd)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"user": user}); err != nil {
		errs.LogError(r, err)
	}
}
