package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Addr() != "0.0.0.0:5000" {
		t.Errorf("addr = %q", cfg.App.Addr())
	}
	if cfg.App.PushAddr() != "0.0.0.0:5001" {
		t.Errorf("push addr = %q", cfg.App.PushAddr())
	}
	if cfg.Client.RequestTimeout() != 15*time.Second {
		t.Errorf("timeout = %v", cfg.Client.RequestTimeout())
	}
}

func TestRequestTimeoutFallsBackOnNonsense(t *testing.T) {
	t.Parallel()

	c := ClientConfig{RequestTimeoutSeconds: -3}
	if c.RequestTimeout() != 15*time.Second {
		t.Errorf("timeout = %v", c.RequestTimeout())
	}
}

func TestLoadSeed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seed.yaml")
	fixture := `users:
  - name: Root
    email: root@example.com
    password: pass1234
    role: admin
serviceCenters:
  - name: FixIt
    email: fixit@example.com
    password: pass1234
    city: Pune
    phone: "9999999999"
    verified: true
`
	if err := os.WriteFile(path, []byte(fixture), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	seed, err := LoadSeed(path)
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	if len(seed.Users) != 1 || seed.Users[0].Role != "admin" {
		t.Errorf("users = %+v", seed.Users)
	}
	if len(seed.ServiceCenters) != 1 || !seed.ServiceCenters[0].Verified {
		t.Errorf("centers = %+v", seed.ServiceCenters)
	}

	if _, err := LoadSeed(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file must error")
	}
}
