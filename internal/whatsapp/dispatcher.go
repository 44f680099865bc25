package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jredh-dev/nexus-relay/internal/metrics"
	"github.com/jredh-dev/nexus-relay/internal/sheets"
)

// Replier sends free-text replies. *Client satisfies it.
type Replier interface {
	SendText(ctx context.Context, msg TextMessage) (json.RawMessage, error)
}

// MessageLogger records inbound messages. *sheets.Client satisfies it.
type MessageLogger interface {
	LogMessage(ctx context.Context, msg sheets.Message) sheets.Result
}

// Dispatcher processes webhook callbacks: it acknowledges every inbound
// message with a free-text reply and logs status updates. Each callback is
// handled on its own; the Dispatcher keeps no state between calls.
type Dispatcher struct {
	replier  Replier
	creds    Credentials
	messages MessageLogger // nil disables inbound logging
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewDispatcher creates a Dispatcher that replies with creds. messages may be
// nil.
func NewDispatcher(replier Replier, creds Credentials, messages MessageLogger, logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		replier:  replier,
		creds:    creds,
		messages: messages,
		logger:   logger.With("component", "webhook"),
		metrics:  m,
	}
}

// Dispatch parses body and processes every message and status in it. A
// failed reply does not stop the remaining messages; all failures, including
// a panic, are returned joined so the caller can log them.
func (d *Dispatcher) Dispatch(ctx context.Context, body []byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic while dispatching webhook: %v", rec)
		}
		if err != nil {
			d.metrics.Errors.WithLabelValues("webhook").Inc()
		}
	}()

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("decode webhook payload: %w", err)
	}

	log := d.logger.With("callback_id", uuid.NewString())

	var errs []error
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if err := d.handleMessage(ctx, log, msg); err != nil {
					errs = append(errs, err)
				}
			}
			if len(change.Value.Statuses) > 0 {
				d.handleStatuses(log, change.Value.Statuses)
			}
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) handleMessage(ctx context.Context, log *slog.Logger, msg Message) error {
	text, ok := ExtractText(msg)
	d.metrics.WebhookMessages.WithLabelValues(messageTypeLabel(msg.Type)).Inc()
	log.Info("incoming message", "from", msg.From, "type", msg.Type, "text", text)

	if d.messages != nil {
		msgType := msg.Type
		if msgType == "" {
			msgType = "text"
		}
		if res := d.messages.LogMessage(ctx, sheets.Message{From: msg.From, Body: text, Type: msgType}); !res.Success {
			log.Warn("inbound message not logged", "from", msg.From, "error", res.Error)
		}
	}

	if msg.From == "" {
		return nil
	}

	// Free text only reaches users inside the 24-hour window.
	_, err := d.replier.SendText(ctx, TextMessage{
		Credentials: d.creds,
		To:          msg.From,
		Text:        ReplyText(text, ok),
	})
	if err != nil {
		return fmt.Errorf("auto-reply to %s: %w", msg.From, err)
	}
	return nil
}

func (d *Dispatcher) handleStatuses(log *slog.Logger, statuses []Status) {
	for _, st := range statuses {
		d.metrics.WebhookStatuses.WithLabelValues(statusLabel(st.Status)).Inc()
		log.Info("status update", "message_id", st.ID, "status", st.Status, "recipient", st.RecipientID)
	}
}

// Metric labels taken from callback fields are limited to these values;
// anything else is counted as "other".
var (
	knownMessageTypes = map[string]bool{
		"text": true, "button": true, "interactive": true, "image": true,
		"audio": true, "video": true, "document": true, "sticker": true,
		"location": true, "contacts": true, "reaction": true,
	}
	knownStatuses = map[string]bool{
		"sent": true, "delivered": true, "read": true, "failed": true,
	}
)

func messageTypeLabel(t string) string {
	if knownMessageTypes[t] {
		return t
	}
	return "other"
}

func statusLabel(s string) string {
	if knownStatuses[s] {
		return s
	}
	return "other"
}
