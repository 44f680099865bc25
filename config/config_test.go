package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "GOOGLE_SHEET_ID", "GOOGLE_CREDENTIALS_PATH",
		"WABA_PHONE_NUMBER_ID", "WABA_TOKEN", "WABA_VERIFY_TOKEN",
		"WABA_API_BASE", "LOG_INBOUND_MESSAGES", "METRICS_NAMESPACE",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Server.Port != "4001" {
		t.Errorf("expected port 4001, got %q", cfg.Server.Port)
	}
	if cfg.WhatsApp.APIBase != DefaultGraphBase {
		t.Errorf("expected default api base, got %q", cfg.WhatsApp.APIBase)
	}
	if !cfg.WhatsApp.LogInbound {
		t.Error("expected inbound logging on by default")
	}
	if cfg.Metrics.Namespace != "relay" {
		t.Errorf("expected namespace relay, got %q", cfg.Metrics.Namespace)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("GOOGLE_SHEET_ID", "sheet-123")
	t.Setenv("WABA_VERIFY_TOKEN", "s3cret")
	t.Setenv("LOG_INBOUND_MESSAGES", "false")
	t.Setenv("METRICS_NAMESPACE", "")

	cfg := Load()
	if cfg.Server.Port != "9000" {
		t.Errorf("expected port 9000, got %q", cfg.Server.Port)
	}
	if cfg.Sheets.SpreadsheetID != "sheet-123" {
		t.Errorf("expected sheet id, got %q", cfg.Sheets.SpreadsheetID)
	}
	if cfg.WhatsApp.VerifyToken != "s3cret" {
		t.Errorf("expected verify token, got %q", cfg.WhatsApp.VerifyToken)
	}
	if cfg.WhatsApp.LogInbound {
		t.Error("expected inbound logging disabled")
	}
}

func TestGetEnvBool_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_FLAG", "not-a-bool")
	if !getEnvBool("SOME_FLAG", true) {
		t.Error("expected default for unparsable bool")
	}
}
