package infra

import "testing"

func TestPoolConfig(t *testing.T) {
	if _, err := poolConfig(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if _, err := poolConfig(&Config{DatabaseURL: "postgres://%zz"}); err == nil {
		t.Fatalf("expected parse error")
	}

	cfg, err := poolConfig(&Config{DatabaseURL: "postgres://u:p@localhost:26257/marketplace?sslmode=disable", DBMaxConns: 0})
	if err != nil {
		t.Fatalf("poolConfig returned error: %v", err)
	}
	if cfg.MaxConns != 1 {
		t.Fatalf("max conns should be clamped to 1, got %d", cfg.MaxConns)
	}
	if got := cfg.ConnConfig.RuntimeParams["application_name"]; got != serviceName {
		t.Fatalf("application_name = %q", got)
	}

	cfg, err = poolConfig(&Config{DatabaseURL: "postgres://localhost/db?application_name=custom", DBMaxConns: 7})
	if err != nil {
		t.Fatalf("poolConfig returned error: %v", err)
	}
	if cfg.MaxConns != 7 || cfg.ConnConfig.RuntimeParams["application_name"] != "custom" {
		t.Fatalf("unexpected config %d %q", cfg.MaxConns, cfg.ConnConfig.RuntimeParams["application_name"])
	}
}
