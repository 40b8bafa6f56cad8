package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/photon-storage/sth-explorer/database/mysql"
)

type testConfig struct {
	Port  int          `yaml:"port"`
	MySQL mysql.Config `yaml:"mysql"`
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "api.yaml")
	content := `
port: 8080
mysql:
  master:
    host: 127.0.0.1
    port: 3306
    username: sth
    password: secret
    db_name: sth_explorer
  replicas:
    - host: 10.0.0.2
      port: 3306
      username: sth
      password: secret
      db_name: sth_explorer
  conn_cfg:
    max_open_conns: 20
    max_idle_conns: 5
  log_level: 1
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := &testConfig{}
	if err := Load(path, cfg); err != nil {
		t.Fatalf("load config failed: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Port)
	}
	if cfg.MySQL.Master.DBName != "sth_explorer" {
		t.Errorf("master db name = %q", cfg.MySQL.Master.DBName)
	}
	if len(cfg.MySQL.Replicas) != 1 || cfg.MySQL.Replicas[0].Host != "10.0.0.2" {
		t.Errorf("unexpected replicas %+v", cfg.MySQL.Replicas)
	}
	if cfg.MySQL.ConnCfg.MaxOpenConns != 20 {
		t.Errorf("max open conns = %d, want 20", cfg.MySQL.ConnCfg.MaxOpenConns)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	unknown := filepath.Join(dir, "unknown.yaml")
	if err := os.WriteFile(unknown, []byte("prot: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name string
		path string
	}{
		{name: "empty path", path: ""},
		{name: "missing file", path: filepath.Join(dir, "missing.yaml")},
		{name: "unknown field", path: unknown},
	}
	for _, c := range testCases {
		t.Run(c.name, func(t *testing.T) {
			if err := Load(c.path, &testConfig{}); err == nil {
				t.Errorf("expected error loading %q", c.path)
			}
		})
	}
}
