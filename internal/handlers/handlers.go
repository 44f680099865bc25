// Package handlers maps the relay's HTTP endpoints onto the WhatsApp and
// Sheets clients.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jredh-dev/nexus-relay/config"
	"github.com/jredh-dev/nexus-relay/internal/sheets"
	"github.com/jredh-dev/nexus-relay/internal/whatsapp"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	sheets     *sheets.Client
	wa         *whatsapp.Client
	dispatcher *whatsapp.Dispatcher
	cfg        config.WhatsAppConfig
	logger     *slog.Logger
}

// New creates a new Handler.
func New(sh *sheets.Client, wa *whatsapp.Client, d *whatsapp.Dispatcher, cfg config.WhatsAppConfig, logger *slog.Logger) *Handler {
	return &Handler{
		sheets:     sh,
		wa:         wa,
		dispatcher: d,
		cfg:        cfg,
		logger:     logger.With("component", "handlers"),
	}
}

// Register mounts every endpoint under /api.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/whatsapp", func(r chi.Router) {
			r.Get("/webhook", h.Verify)
			r.Post("/webhook", h.Webhook)
			r.Post("/send-template", h.SendTemplate)
			r.Get("/env-check", h.EnvCheck)
		})

		r.Route("/sheets", func(r chi.Router) {
			r.Post("/log-message", h.LogMessage)
			r.Get("/config", h.GetConfig)
			r.Post("/create-sheet/{id}", h.CreateSheet)
			r.Post("/add-user", h.AddUser)
			r.Get("/users", h.GetUsers)
			r.Post("/add-reminder", h.AddReminder)
			r.Get("/reminders", h.GetReminders)
			r.Post("/add-analytic", h.AddAnalytic)
			r.Get("/analytics", h.GetAnalytics)
			r.Post("/add-template", h.AddTemplate)
			r.Get("/templates", h.GetTemplates)
		})
	})
}

// --- helpers ---

func jsonOK(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// decode reads a JSON body into v, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}
