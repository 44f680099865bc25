package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/jredh-dev/nexus-relay/internal/whatsapp"
)

// subscribeMode is the only hub.mode the Cloud API sends when verifying.
const subscribeMode = "subscribe"

// Verify answers the webhook verification handshake.
// GET /api/whatsapp/webhook?hub.mode=subscribe&hub.verify_token=...&hub.challenge=...
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode != subscribeMode || h.cfg.VerifyToken == "" || token != h.cfg.VerifyToken {
		h.logger.Warn("webhook verification rejected", "mode", mode)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(challenge))
}

// Webhook receives event callbacks. Processing errors are logged and answered
// with 200 anyway so the provider does not redeliver the same callback.
// POST /api/whatsapp/webhook
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	if err := h.dispatcher.Dispatch(r.Context(), body); err != nil {
		h.logger.Error("webhook handler error", "error", err)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("EVENT_RECEIVED"))
}

type sendTemplateReq struct {
	To            string   `json:"to"`
	Template      string   `json:"template"`
	Params        []string `json:"params"`
	PhoneNumberID string   `json:"phoneNumberId"` // optional, overrides WABA_PHONE_NUMBER_ID
	Token         string   `json:"token"`         // optional, overrides WABA_TOKEN
	Lang          string   `json:"lang"`          // defaults to "es"
}

// SendTemplate sends a template message and relays the Graph API response.
// POST /api/whatsapp/send-template
func (h *Handler) SendTemplate(w http.ResponseWriter, r *http.Request) {
	var req sendTemplateReq
	if !decode(w, r, &req) {
		return
	}
	if req.To == "" || req.Template == "" {
		jsonError(w, "to and template are required", http.StatusBadRequest)
		return
	}

	creds := whatsapp.Credentials{
		PhoneNumberID: req.PhoneNumberID,
		Token:         req.Token,
	}
	if creds.PhoneNumberID == "" {
		creds.PhoneNumberID = h.cfg.PhoneNumberID
	}
	if creds.Token == "" {
		creds.Token = h.cfg.Token
	}
	lang := req.Lang
	if lang == "" {
		lang = "es"
	}

	resp, err := h.wa.SendTemplate(r.Context(), whatsapp.TemplateMessage{
		Credentials: creds,
		To:          req.To,
		Template:    req.Template,
		Lang:        lang,
		Params:      req.Params,
	})
	if err != nil {
		var apiErr *whatsapp.APIError
		if errors.As(err, &apiErr) {
			jsonOK(w, apiErr.Status, map[string]interface{}{
				"message": "WA API error",
				"details": apiErr.Details,
			})
			return
		}
		jsonError(w, "failed to send template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(resp)
}

type envCheckResp struct {
	HasPhoneNumberID bool   `json:"hasPhoneNumberId"`
	HasToken         bool   `json:"hasToken"`
	VerifyToken      string `json:"verifyToken"`
}

// EnvCheck reports which WhatsApp settings are present without revealing
// them.
// GET /api/whatsapp/env-check
func (h *Handler) EnvCheck(w http.ResponseWriter, r *http.Request) {
	resp := envCheckResp{
		HasPhoneNumberID: h.cfg.PhoneNumberID != "",
		HasToken:         h.cfg.Token != "",
		VerifyToken:      "missing",
	}
	if h.cfg.VerifyToken != "" {
		resp.VerifyToken = "set"
	}
	jsonOK(w, http.StatusOK, resp)
}
