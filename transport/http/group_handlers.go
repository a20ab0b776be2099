package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sms-relay/services"
)

type GroupHandlers struct {
	Groups services.IGroupService
}

type createGroupRequest struct {
	Name      string   `json:"name" validate:"required"`
	Members   []string `json:"members" validate:"required,min=1"`
	CreatedBy string   `json:"createdBy"`
}

type memberRequest struct {
	User string `json:"user" validate:"required"`
}

func (h *GroupHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := validate.Struct(req); err != nil {
		fail(w, http.StatusBadRequest, "name and members[] required")
		return
	}

	group, err := h.Groups.Create(req.Name, req.CreatedBy, req.Members)
	if err != nil {
		failFrom(w, err)
		return
	}
	created(w, group)
}

// List returns all groups, or only those of ?member=name, newest first.
func (h *GroupHandlers) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Groups.List(r.URL.Query().Get("member"))
	if err != nil {
		failFrom(w, err)
		return
	}
	ok(w, groups)
}

func (h *GroupHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Groups.Delete(chi.URLParam(r, "id")); err != nil {
		failFrom(w, err)
		return
	}
	ok(w, nil)
}

func (h *GroupHandlers) AddMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := validate.Struct(req); err != nil {
		fail(w, http.StatusBadRequest, "user required")
		return
	}

	group, err := h.Groups.AddMember(chi.URLParam(r, "id"), req.User)
	if err != nil {
		failFrom(w, err)
		return
	}
	ok(w, group)
}

func (h *GroupHandlers) RemoveMember(w http.ResponseWriter, r *http.Request) {
	group, err := h.Groups.RemoveMember(chi.URLParam(r, "id"), chi.URLParam(r, "user"))
	if err != nil {
		failFrom(w, err)
		return
	}
	ok(w, group)
}
