package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username != s.username || req.Password != s.password {
		slog.WarnContext(r.Context(), "Login rejected", "username", req.Username)
		writeError(w, http.StatusUnauthorized, "invalid login credential")
		return
	}

	token, err := s.tokens.Issue(req.Username)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
