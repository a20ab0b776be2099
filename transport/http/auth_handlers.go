package http

import (
	"encoding/json"
	"net/http"

	"github.com/samber/lo"

	"sms-relay/repositories"
	"sms-relay/services"
)

type AuthHandlers struct {
	Auth  services.IAuthService
	Users repositories.IUserRepository
}

type registerRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type contactResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid body")
		return
	}

	token, err := h.Auth.Register(req.Name, req.Username, req.Password)
	if err != nil {
		failFrom(w, err)
		return
	}
	created(w, map[string]string{"token": string(token)})
}

func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid body")
		return
	}

	token, err := h.Auth.Login(req.Username, req.Password)
	if err != nil {
		failFrom(w, err)
		return
	}
	ok(w, map[string]string{"token": string(token)})
}

// Contacts lists every registered account for the contact picker.
func (h *AuthHandlers) Contacts(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListUsers()
	if err != nil {
		failFrom(w, err)
		return
	}
	ok(w, lo.Map(users, func(u repositories.User, _ int) contactResponse {
		return contactResponse{ID: u.ID, Name: u.Name, Username: u.Username}
	}))
}
