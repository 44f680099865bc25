// nexus-relay - WhatsApp Cloud API to Google Sheets relay
// Copyright (C) 2026  nexus contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// send-template sends one approved template message through the Cloud API
// using the same environment as the server:
//
//	WABA_PHONE_NUMBER_ID  sending phone number ID
//	WABA_TOKEN            Graph API bearer token
//	WABA_API_BASE         optional Graph API base URL
//
// Example:
//
//	send-template -to 50671508835 -template cita -params Juan,10:00
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jredh-dev/nexus-relay/config"
	"github.com/jredh-dev/nexus-relay/internal/logging"
	"github.com/jredh-dev/nexus-relay/internal/metrics"
	"github.com/jredh-dev/nexus-relay/internal/whatsapp"
)

func main() {
	to := flag.String("to", "", "Recipient phone number (required)")
	template := flag.String("template", "", "Approved template name (required)")
	lang := flag.String("lang", "es", "Template language code")
	params := flag.String("params", "", "Comma-separated body parameters")
	flag.Parse()

	if *to == "" || *template == "" {
		fmt.Fprintln(os.Stderr, "send-template: -to and -template are required")
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	logger := logging.NewLogger(cfg.Server.LogLevel)
	if cfg.WhatsApp.PhoneNumberID == "" || cfg.WhatsApp.Token == "" {
		logger.Error("WABA_PHONE_NUMBER_ID and WABA_TOKEN must be set")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := whatsapp.NewClient(cfg.WhatsApp.APIBase, logger, metrics.Registry(cfg.Metrics.Namespace))
	resp, err := client.SendTemplate(ctx, whatsapp.TemplateMessage{
		Credentials: whatsapp.Credentials{
			PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
			Token:         cfg.WhatsApp.Token,
		},
		To:       *to,
		Template: *template,
		Lang:     *lang,
		Params:   splitParams(*params),
	})
	if err != nil {
		var apiErr *whatsapp.APIError
		if errors.As(err, &apiErr) {
			logger.Error("template rejected", "status", apiErr.Status, "error", apiErr.Error())
		} else {
			logger.Error("template send failed", "error", err)
		}
		os.Exit(1)
	}

	fmt.Println(string(resp))
}

func splitParams(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
