package apitest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/venue-console/internal/lib/password"
	"github.com/magabrotheeeer/venue-console/internal/models"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	var acc account
	a, ok := s.accounts[req.Username]
	if ok {
		acc = *a
	}
	s.mu.Unlock()
	if !ok || password.Compare(acc.hash, req.Password) != nil {
		writeError(w, r, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token := acc.token
	if token == "" {
		var err error
		if token, err = s.maker.Issue(acc.user.Username, acc.user.Role); err != nil {
			writeError(w, r, http.StatusInternalServerError, "failed to issue token")
			return
		}
	}

	render.JSON(w, r, models.LoginResponse{
		Token:     token,
		Username:  acc.user.Username,
		Role:      acc.user.Role,
		CreatedAt: acc.user.CreatedAt,
	})
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordChange
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accountFor(token)
	if a == nil || password.Compare(a.hash, req.CurrentPassword) != nil {
		writeError(w, r, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	if len(req.NewPassword) < 6 {
		writeError(w, r, http.StatusBadRequest, "New password must be at least 6 characters")
		return
	}
	hash, err := password.Hash(req.NewPassword, bcrypt.MinCost)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid new password")
		return
	}
	a.hash = hash
	render.JSON(w, r, map[string]string{"message": "Password updated"})
}
