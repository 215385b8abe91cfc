package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/PaulBabatuyi/sup-api/internal/apperr"
	"github.com/PaulBabatuyi/sup-api/internal/middleware"
	"github.com/PaulBabatuyi/sup-api/internal/respond"
	"github.com/PaulBabatuyi/sup-api/internal/service"
	"github.com/PaulBabatuyi/sup-api/internal/validate"

	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

// decodePayload reads a JSON object body. An empty body decodes to an empty
// payload so the field checks report what is missing.
func decodePayload(w http.ResponseWriter, r *http.Request) (validate.Payload, error) {
	var p validate.Payload
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&p)
	if errors.Is(err, io.EOF) {
		return validate.Payload{}, nil
	}
	if err != nil {
		return nil, apperr.BadRequest("Malformed JSON body")
	}
	return p, nil
}

// listUsers returns every user.
func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		respond.Error(w, r, s.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, users)
}

// createUser registers a user from {username, password}.
func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	p, err := decodePayload(w, r)
	if err == nil {
		err = validate.Signup(p)
	}
	if err != nil {
		respond.Error(w, r, s.logger, err)
		return
	}

	user, err := s.users.Create(r.Context(), p["username"].(string), p["password"].(string))
	if err != nil {
		respond.Error(w, r, s.logger, err)
		return
	}

	w.Header().Set("Location", s.location("users", user.ID))
	respond.JSON(w, http.StatusCreated, respond.Empty)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respond.Error(w, r, s.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

// putUser replaces the username of a user, creating it when absent.
func (s *Server) putUser(w http.ResponseWriter, r *http.Request) {
	p, err := decodePayload(w, r)
	if err == nil {
		err = validate.User(p)
	}
	id := mux.Vars(r)["id"]
	if err == nil {
		err = s.users.Upsert(r.Context(), id, p["username"].(string))
	}
	if err != nil {
		respond.Error(w, r, s.logger, err)
		return
	}
	s.audit(r, "replace user", id)
	respond.JSON(w, http.StatusOK, respond.Empty)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.users.Delete(r.Context(), id); err != nil {
		respond.Error(w, r, s.logger, err)
		return
	}
	s.audit(r, "delete user", id)
	respond.JSON(w, http.StatusOK, respond.Empty)
}

// audit logs a write to a user record together with the authenticated user
// who made it.
func (s *Server) audit(r *http.Request, action, targetID string) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return
	}
	s.logger.Info("user record changed",
		"action", action,
		"target_id", targetID,
		"actor_id", actor.ID.Hex(),
		"actor", actor.Username)
}

// listMessages returns messages matching the query string, e.g.
// /messages?to=<id>. Only the first value of each key is used.
func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	raw := make(map[string]string)
	for k, v := range r.URL.Query() {
		raw[k] = v[0]
	}

	msgs, err := s.msgs.List(r.Context(), raw)
	if err != nil {
		respond.Error(w, r, s.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, msgs)
}

// createMessage stores a message from {text, from, to}.
func (s *Server) createMessage(w http.ResponseWriter, r *http.Request) {
	p, err := decodePayload(w, r)
	if err == nil {
		err = validate.Message(p)
	}
	if err != nil {
		respond.Error(w, r, s.logger, err)
		return
	}

	id, err := s.msgs.Create(r.Context(), service.NewMessage{
		Text: p["text"].(string),
		From: p["from"].(string),
		To:   p["to"].(string),
	})
	if err != nil {
		respond.Error(w, r, s.logger, err)
		return
	}

	w.Header().Set("Location", s.location("messages", id))
	respond.JSON(w, http.StatusCreated, respond.Empty)
}

func (s *Server) getMessage(w http.ResponseWriter, r *http.Request) {
	msg, err := s.msgs.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respond.Error(w, r, s.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, msg)
}
