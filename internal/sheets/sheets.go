// nexus-relay - WhatsApp to Google Sheets webhook relay
// Copyright (C) 2026  nexus contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package sheets appends and reads entity rows in named ranges of a Google
// Sheets spreadsheet.
//
// The spreadsheet is a best-effort side channel: no method returns a Go
// error. Failures are logged and reported through the Success/Error fields of
// Result and RowsResult so callers can relay them as-is.
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/jredh-dev/nexus-relay/internal/metrics"
)

// Named ranges, one per entity.
const (
	MessagesRange  = "Messages!A:D"
	ConfigRange    = "Config!A:B"
	UsersRange     = "Users!A:E"
	RemindersRange = "Reminders!A:F"
	AnalyticsRange = "Analytics!A:E"
	TemplatesRange = "Templates!A:F"
)

// timestampLayout matches the millisecond UTC ISO-8601 stamps already present
// in existing sheets.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrNotInitialised is reported when the Sheets service could not be built at
// startup.
var ErrNotInitialised = errors.New("sheets client not initialised")

// Config holds the spreadsheet coordinates and credentials.
type Config struct {
	SpreadsheetID   string
	CredentialsPath string // service account JSON; empty uses application default credentials
}

// Client wraps the Sheets v4 values API for a single default spreadsheet.
type Client struct {
	values        *gsheets.SpreadsheetsValuesService
	spreadsheetID string
	logger        *slog.Logger
	metrics       *metrics.Metrics

	now   func() time.Time
	newID func() string
}

// New builds a Client. Extra options are appended after the credentials, so
// tests can point the service at a fake endpoint.
//
// When the underlying service cannot be built the error is returned together
// with a usable Client whose operations all report ErrNotInitialised.
func New(ctx context.Context, cfg Config, logger *slog.Logger, m *metrics.Metrics, opts ...option.ClientOption) (*Client, error) {
	c := &Client{
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger.With("component", "sheets"),
		metrics:       m,
		now:           time.Now,
		newID:         func() string { return uuid.New().String() },
	}

	var all []option.ClientOption
	if cfg.CredentialsPath != "" {
		all = append(all, option.WithCredentialsFile(cfg.CredentialsPath))
	}
	all = append(all, option.WithScopes(gsheets.SpreadsheetsScope))
	all = append(all, opts...)

	srv, err := gsheets.NewService(ctx, all...)
	if err != nil {
		return c, fmt.Errorf("init sheets service: %w", err)
	}
	c.values = srv.Spreadsheets.Values
	c.logger.Info("google sheets api initialised", "spreadsheet_id", cfg.SpreadsheetID)
	return c, nil
}

// Result is the outcome of a write.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RowsResult is the outcome of a read. Data is never null on success.
type RowsResult struct {
	Success bool       `json:"success"`
	Data    [][]string `json:"data"`
	Error   string     `json:"error,omitempty"`
}

// MarshalJSON drops data from failed reads and renders empty reads as [].
func (r RowsResult) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(Result{Success: false, Error: r.Error})
	}
	data := r.Data
	if data == nil {
		data = [][]string{}
	}
	return json.Marshal(struct {
		Success bool       `json:"success"`
		Data    [][]string `json:"data"`
	}{true, data})
}

func (c *Client) timestamp() string {
	return c.now().UTC().Format(timestampLayout)
}

// appendRow appends a single row at the end of rng.
func (c *Client) appendRow(ctx context.Context, rng string, row []interface{}) error {
	if c.values == nil {
		return ErrNotInitialised
	}
	vr := &gsheets.ValueRange{Values: [][]interface{}{row}}
	_, err := c.values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	c.count(rng, "append", err)
	return err
}

// readRows returns every row in rng as strings, in sheet order.
func (c *Client) readRows(ctx context.Context, rng string) ([][]string, error) {
	if c.values == nil {
		return nil, ErrNotInitialised
	}
	resp, err := c.values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	c.count(rng, "get", err)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// updateRows overwrites rng of spreadsheetID with rows.
func (c *Client) updateRows(ctx context.Context, spreadsheetID, rng string, rows [][]interface{}) error {
	if c.values == nil {
		return ErrNotInitialised
	}
	_, err := c.values.Update(spreadsheetID, rng, &gsheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	c.count(rng, "update", err)
	return err
}

func (c *Client) count(rng, op string, err error) {
	c.metrics.SheetOperations.WithLabelValues(sheetName(rng), op, metrics.Outcome(err)).Inc()
	if err != nil {
		c.metrics.Errors.WithLabelValues("sheets").Inc()
	}
}

// sheetName returns the tab part of an A1 range ("Users!A:E" -> "Users").
func sheetName(rng string) string {
	name, _, _ := strings.Cut(rng, "!")
	return name
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
