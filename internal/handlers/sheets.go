package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jredh-dev/nexus-relay/internal/sheets"
)

// Spreadsheet endpoints never turn a spreadsheet failure into an HTTP error:
// POSTs answer 201 and GETs 200, and the body's success flag carries the
// outcome.

type logMessageReq struct {
	From    string `json:"from"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// LogMessage handles POST /api/sheets/log-message
func (h *Handler) LogMessage(w http.ResponseWriter, r *http.Request) {
	var req logMessageReq
	if !decode(w, r, &req) {
		return
	}
	if req.From == "" || req.Message == "" {
		jsonError(w, "from and message are required", http.StatusBadRequest)
		return
	}
	res := h.sheets.LogMessage(r.Context(), sheets.Message{From: req.From, Body: req.Message, Type: req.Type})
	jsonOK(w, http.StatusCreated, res)
}

// GetConfig handles GET /api/sheets/config
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, http.StatusOK, h.sheets.Config(r.Context()))
}

// CreateSheet handles POST /api/sheets/create-sheet/{id}
func (h *Handler) CreateSheet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	jsonOK(w, http.StatusCreated, h.sheets.CreateSheet(r.Context(), id))
}

type addUserReq struct {
	Phone  string `json:"phone"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Plan   string `json:"plan"`
}

// AddUser handles POST /api/sheets/add-user
func (h *Handler) AddUser(w http.ResponseWriter, r *http.Request) {
	var req addUserReq
	if !decode(w, r, &req) {
		return
	}
	if req.Phone == "" {
		jsonError(w, "phone is required", http.StatusBadRequest)
		return
	}
	res := h.sheets.AddUser(r.Context(), sheets.User{
		Phone:  req.Phone,
		Name:   req.Name,
		Status: req.Status,
		Plan:   req.Plan,
	})
	jsonOK(w, http.StatusCreated, res)
}

// GetUsers handles GET /api/sheets/users
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, http.StatusOK, h.sheets.Users(r.Context()))
}

type addReminderReq struct {
	Phone         string `json:"phone"`
	Message       string `json:"message"`
	ScheduledTime string `json:"scheduledTime"`
	Frequency     string `json:"frequency"` // once, daily, weekly; defaults to once
	Status        string `json:"status"`    // pending, sent, cancelled; defaults to pending
}

// AddReminder handles POST /api/sheets/add-reminder
func (h *Handler) AddReminder(w http.ResponseWriter, r *http.Request) {
	var req addReminderReq
	if !decode(w, r, &req) {
		return
	}
	if req.Phone == "" || req.Message == "" || req.ScheduledTime == "" {
		jsonError(w, "phone, message, and scheduledTime are required", http.StatusBadRequest)
		return
	}
	res := h.sheets.AddReminder(r.Context(), sheets.Reminder{
		Phone:         req.Phone,
		Message:       req.Message,
		ScheduledTime: req.ScheduledTime,
		Frequency:     req.Frequency,
		Status:        req.Status,
	})
	jsonOK(w, http.StatusCreated, res)
}

// GetReminders handles GET /api/sheets/reminders
func (h *Handler) GetReminders(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, http.StatusOK, h.sheets.Reminders(r.Context()))
}

type addAnalyticReq struct {
	Phone     string `json:"phone"`
	Action    string `json:"action"`
	SessionID string `json:"session_id"`
	EventType string `json:"event_type"`
}

// AddAnalytic handles POST /api/sheets/add-analytic
func (h *Handler) AddAnalytic(w http.ResponseWriter, r *http.Request) {
	var req addAnalyticReq
	if !decode(w, r, &req) {
		return
	}
	if req.Phone == "" || req.Action == "" {
		jsonError(w, "phone and action are required", http.StatusBadRequest)
		return
	}
	res := h.sheets.AddAnalytic(r.Context(), sheets.Analytic{
		Phone:     req.Phone,
		Action:    req.Action,
		SessionID: req.SessionID,
		EventType: req.EventType,
	})
	jsonOK(w, http.StatusCreated, res)
}

// GetAnalytics handles GET /api/sheets/analytics
func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, http.StatusOK, h.sheets.Analytics(r.Context()))
}

type addTemplateReq struct {
	Name     string `json:"name"`
	Content  string `json:"content"`
	Phone    string `json:"phone"`
	Category string `json:"category"`
	Status   string `json:"status"`
}

// AddTemplate handles POST /api/sheets/add-template
func (h *Handler) AddTemplate(w http.ResponseWriter, r *http.Request) {
	var req addTemplateReq
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" || req.Content == "" {
		jsonError(w, "name and content are required", http.StatusBadRequest)
		return
	}
	res := h.sheets.AddTemplate(r.Context(), sheets.Template{
		Name:     req.Name,
		Content:  req.Content,
		Phone:    req.Phone,
		Category: req.Category,
		Status:   req.Status,
	})
	jsonOK(w, http.StatusCreated, res)
}

// GetTemplates handles GET /api/sheets/templates
func (h *Handler) GetTemplates(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, http.StatusOK, h.sheets.Templates(r.Context()))
}
