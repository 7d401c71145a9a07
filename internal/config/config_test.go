package config

import "testing"

func TestRequire(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://localhost/drivedesk"}

	if err := cfg.Require("DATABASE_URL"); err != nil {
		t.Errorf("unexpected error for present var: %v", err)
	}

	err := cfg.Require("DATABASE_URL", "MIDTRANS_SERVER_KEY", "CRON_SECRET")
	if err == nil {
		t.Fatal("expected error for missing vars")
	}
	want := "missing required environment variables: MIDTRANS_SERVER_KEY, CRON_SECRET"
	if err.Error() != want {
		t.Errorf("error = %q; want %q", err.Error(), want)
	}
}

func TestRequireServer(t *testing.T) {
	cfg := &Config{
		DatabaseURL:       "postgres://localhost/drivedesk",
		MidtransServerKey: "SB-Mid-server-xxx",
		CronSecret:        "secret",
	}
	if err := cfg.RequireServer(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.CronSecret = ""
	if err := cfg.RequireServer(); err == nil {
		t.Error("expected error when CRON_SECRET is unset")
	}
}
