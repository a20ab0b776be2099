package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"sms-relay/domain"
	"sms-relay/runtime"
)

var validate = validator.New()

type MessageHandlers struct {
	Engine *runtime.Engine
}

type sendDirectRequest struct {
	From    string `json:"from" validate:"required"`
	To      string `json:"to" validate:"required"`
	Message string `json:"message" validate:"required"`
}

type sendGroupRequest struct {
	From string `json:"from" validate:"required"`
	Text string `json:"text" validate:"required"`
}

type receiptResponse struct {
	Message     domain.Message `json:"msg"`
	DeliveredTo []string       `json:"deliveredTo"`
}

// SendDirect submits a direct message. The response carries the committed
// record even when nobody was online to receive it.
func (h *MessageHandlers) SendDirect(w http.ResponseWriter, r *http.Request) {
	var req sendDirectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := validate.Struct(req); err != nil {
		fail(w, http.StatusBadRequest, "from,to,message required")
		return
	}

	receipt, err := h.Engine.SubmitDirect(r.Context(), req.From, req.To, req.Message)
	if err != nil {
		failFrom(w, err)
		return
	}
	created(w, receiptResponse{Message: receipt.Message, DeliveredTo: receipt.DeliveredTo})
}

// DirectHistory returns the conversation between u1 and u2, ascending.
// The lookup is symmetric: ?u1=a&u2=b and ?u1=b&u2=a read the same log.
func (h *MessageHandlers) DirectHistory(w http.ResponseWriter, r *http.Request) {
	u1 := r.URL.Query().Get("u1")
	u2 := r.URL.Query().Get("u2")
	if u1 == "" || u2 == "" {
		fail(w, http.StatusBadRequest, "u1 and u2 required")
		return
	}
	window, err := windowFrom(r)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid since timestamp")
		return
	}

	messages, err := h.Engine.History(domain.DirectConversation{U1: u1, U2: u2}, window)
	if err != nil {
		failFrom(w, err)
		return
	}
	ok(w, messages)
}

func (h *MessageHandlers) SendGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	var req sendGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := validate.Struct(req); err != nil {
		fail(w, http.StatusBadRequest, "from,text required")
		return
	}

	receipt, err := h.Engine.SubmitGroup(r.Context(), groupID, req.From, req.Text)
	if err != nil {
		failFrom(w, err)
		return
	}
	created(w, receiptResponse{Message: receipt.Message, DeliveredTo: receipt.DeliveredTo})
}

func (h *MessageHandlers) GroupHistory(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	window, err := windowFrom(r)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid since timestamp")
		return
	}

	messages, err := h.Engine.History(domain.GroupConversation{GroupID: groupID}, window)
	if err != nil {
		failFrom(w, err)
		return
	}
	ok(w, messages)
}

// windowFrom reads the optional ?since=RFC3339 bound. Since is exclusive.
func windowFrom(r *http.Request) (domain.Window, error) {
	raw := r.URL.Query().Get("since")
	if raw == "" {
		return domain.Window{}, nil
	}
	since, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return domain.Window{}, err
	}
	return domain.Window{Since: &since}, nil
}
