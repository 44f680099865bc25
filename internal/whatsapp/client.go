// nexus-relay - WhatsApp to Google Sheets webhook relay
// Copyright (C) 2026  nexus contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package whatsapp talks to the WhatsApp Cloud API: it sends template and
// free-text messages and dispatches inbound webhook callbacks.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jredh-dev/nexus-relay/internal/metrics"
)

// DefaultLanguage is the template language used when none is given.
const DefaultLanguage = "en_US"

// Credentials select the sending phone number and authorise the call. They
// are supplied per message so one relay can send for several accounts.
type Credentials struct {
	PhoneNumberID string
	Token         string
}

// TemplateMessage is a pre-approved template send.
type TemplateMessage struct {
	Credentials
	To       string // E.164 digits only, no "+"
	Template string
	Lang     string
	Params   []string // body parameters, in order
}

// TextMessage is a free-text send, only deliverable inside the 24-hour
// customer service window.
type TextMessage struct {
	Credentials
	To   string
	Text string
}

// APIError is returned for any failed send. Status is the Graph API status
// code, or 500 when no response was received. Details is the decoded error
// body, or the transport error message.
type APIError struct {
	Status  int
	Details interface{}
}

func (e *APIError) Error() string {
	if raw, ok := e.Details.(json.RawMessage); ok {
		return fmt.Sprintf("whatsapp api error (status %d): %s", e.Status, string(raw))
	}
	return fmt.Sprintf("whatsapp api error (status %d): %v", e.Status, e.Details)
}

// Client sends messages through the Graph API messages endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewClient creates a Client rooted at baseURL (for example
// "https://graph.facebook.com/v21.0").
func NewClient(baseURL string, logger *slog.Logger, m *metrics.Metrics) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger.With("component", "whatsapp"),
		metrics:    m,
	}
}

// sendRequest is the JSON body sent to POST /{phone-number-id}/messages.
type sendRequest struct {
	MessagingProduct string           `json:"messaging_product"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Template         *templatePayload `json:"template,omitempty"`
	Text             *textPayload     `json:"text,omitempty"`
}

type templatePayload struct {
	Name       string      `json:"name"`
	Language   language    `json:"language"`
	Components []component `json:"components,omitempty"`
}

type language struct {
	Code string `json:"code"`
}

type component struct {
	Type       string      `json:"type"`
	Parameters []parameter `json:"parameters"`
}

type parameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type textPayload struct {
	Body string `json:"body"`
}

// Close drops idle keep-alive connections to the Graph API.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// SendTemplate sends a template message and returns the raw Graph API
// response. Components are attached only when Params is non-empty.
func (c *Client) SendTemplate(ctx context.Context, msg TemplateMessage) (json.RawMessage, error) {
	lang := msg.Lang
	if lang == "" {
		lang = DefaultLanguage
	}

	tpl := &templatePayload{
		Name:     msg.Template,
		Language: language{Code: lang},
	}
	if len(msg.Params) > 0 {
		params := make([]parameter, len(msg.Params))
		for i, p := range msg.Params {
			params[i] = parameter{Type: "text", Text: p}
		}
		tpl.Components = []component{{Type: "body", Parameters: params}}
	}

	return c.send(ctx, "template", msg.Credentials, sendRequest{
		MessagingProduct: "whatsapp",
		To:               msg.To,
		Type:             "template",
		Template:         tpl,
	})
}

// SendText sends a free-text message and returns the raw Graph API response.
func (c *Client) SendText(ctx context.Context, msg TextMessage) (json.RawMessage, error) {
	return c.send(ctx, "text", msg.Credentials, sendRequest{
		MessagingProduct: "whatsapp",
		To:               msg.To,
		Type:             "text",
		Text:             &textPayload{Body: msg.Text},
	})
}

func (c *Client) send(ctx context.Context, kind string, creds Credentials, payload sendRequest) (json.RawMessage, error) {
	start := time.Now()
	resp, err := c.post(ctx, creds, payload)
	c.metrics.GraphLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	c.metrics.OutgoingMessages.WithLabelValues(kind, metrics.Outcome(err)).Inc()
	if err != nil {
		c.metrics.Errors.WithLabelValues("whatsapp").Inc()
		c.logger.Error("wa api error", "kind", kind, "to", payload.To, "error", err)
		return nil, err
	}
	c.logger.Debug("wa message sent", "kind", kind, "to", payload.To)
	return resp, nil
}

func (c *Client) post(ctx context.Context, creds Credentials, payload sendRequest) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &APIError{Status: http.StatusInternalServerError, Details: fmt.Sprintf("marshal request: %v", err)}
	}

	url := c.baseURL + "/" + creds.PhoneNumberID + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &APIError{Status: http.StatusInternalServerError, Details: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+creds.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Status: http.StatusInternalServerError, Details: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Status: resp.StatusCode, Details: fmt.Sprintf("read response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Details: errorDetails(resp.StatusCode, respBody)}
	}

	if !json.Valid(respBody) {
		return nil, &APIError{Status: http.StatusBadGateway, Details: "invalid json response: " + string(respBody)}
	}
	return json.RawMessage(respBody), nil
}

// errorDetails keeps a JSON error body as-is and falls back to plain text.
func errorDetails(status int, body []byte) interface{} {
	trimmed := bytes.TrimSpace(body)
	switch {
	case len(trimmed) == 0:
		return fmt.Sprintf("request failed with status code %d", status)
	case json.Valid(trimmed):
		return json.RawMessage(trimmed)
	default:
		return string(trimmed)
	}
}
