// nexus-relay - WhatsApp Cloud API to Google Sheets relay
// Copyright (C) 2026  nexus contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jredh-dev/nexus-relay/config"
	"github.com/jredh-dev/nexus-relay/internal/handlers"
	"github.com/jredh-dev/nexus-relay/internal/logging"
	"github.com/jredh-dev/nexus-relay/internal/metrics"
	"github.com/jredh-dev/nexus-relay/internal/server"
	"github.com/jredh-dev/nexus-relay/internal/sheets"
	"github.com/jredh-dev/nexus-relay/internal/whatsapp"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("nexus-relay %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", buildDate)
		os.Exit(0)
	}

	cfg := config.Load()
	logger := logging.NewLogger(cfg.Server.LogLevel)
	m := metrics.Registry(cfg.Metrics.Namespace)

	// A broken credentials file leaves the sheets client uninitialised; the
	// webhook keeps replying and spreadsheet calls report the failure.
	sh, err := sheets.New(context.Background(), sheets.Config{
		SpreadsheetID:   cfg.Sheets.SpreadsheetID,
		CredentialsPath: cfg.Sheets.CredentialsPath,
	}, logger, m)
	if err != nil {
		logger.Warn("google sheets unavailable", "error", err)
	}

	wa := whatsapp.NewClient(cfg.WhatsApp.APIBase, logger, m)

	var inbound whatsapp.MessageLogger
	if cfg.WhatsApp.LogInbound {
		inbound = sh
	}
	d := whatsapp.NewDispatcher(wa, whatsapp.Credentials{
		PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
		Token:         cfg.WhatsApp.Token,
	}, inbound, logger, m)

	h := handlers.New(sh, wa, d, cfg.WhatsApp, logger)

	s := server.New(logger)
	h.Register(s.Router)
	s.OnStop(wa.Close)

	addr := ":" + cfg.Server.Port
	logger.Info("nexus-relay configured",
		"version", version,
		"webhook", "http://localhost"+addr+"/api/whatsapp/webhook",
		"metrics", "http://localhost"+addr+"/metrics",
	)

	if err := s.ListenAndServe(addr); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
