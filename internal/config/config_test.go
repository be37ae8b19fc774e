package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWithOverridesAndDropIns(t *testing.T) {
	dir := t.TempDir()
	mainCfg := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(mainCfg, []byte(`
region = "us-west-2"
read_only = true
log_level = "debug"
`), 0600); err != nil {
		t.Fatalf("write main config: %v", err)
	}

	dropInDir := filepath.Join(dir, "conf.d")
	if err := os.MkdirAll(dropInDir, 0700); err != nil {
		t.Fatalf("mkdir dropins: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dropInDir, "10-base.toml"), []byte(`
disable_destructive = true
log_level = "info"
services = ["ec2", "vpc"]
`), 0600); err != nil {
		t.Fatalf("write dropin: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dropInDir, "20-override.toml"), []byte(`
log_level = "warn"
services = ["s3"]
`), 0600); err != nil {
		t.Fatalf("write dropin: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dropInDir, "README"), []byte("not toml"), 0600); err != nil {
		t.Fatalf("write readme: %v", err)
	}

	overrideReadOnly := false
	overrideProfile := "ops"
	cfg, err := Load(mainCfg, dropInDir, Overrides{ReadOnly: &overrideReadOnly, Profile: &overrideProfile})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ReadOnly {
		t.Fatalf("expected override read_only false")
	}
	if !cfg.DisableDestructive {
		t.Fatalf("expected disable_destructive from drop-in")
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected drop-in override log_level, got %q", cfg.LogLevel)
	}
	if cfg.Region != "us-west-2" || cfg.Profile != "ops" {
		t.Fatalf("unexpected region/profile %q/%q", cfg.Region, cfg.Profile)
	}
	if len(cfg.Services) != 1 || cfg.Services[0] != "s3" {
		t.Fatalf("expected services from last drop-in, got %#v", cfg.Services)
	}
	if len(cfg.Toolsets) != 1 || cfg.Toolsets[0] != "aws" {
		t.Fatalf("expected default toolsets, got %#v", cfg.Toolsets)
	}
}

func TestLoadSectionTables(t *testing.T) {
	dir := t.TempDir()
	mainCfg := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(mainCfg, []byte(`
[safety]
allow_destructive_tools = ["delete_vpc"]

[policy]
denied_tools = ["invoke_lambda_function"]

[timeouts]
default_seconds = 30
max_seconds = 120
per_tool = { create_rds_instance = 90 }

[cache]
list_ttl_seconds = 15

[aws]
max_attempts = 5
`), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(mainCfg, "", Overrides{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Safety.AllowDestructiveTools) != 1 || cfg.Safety.AllowDestructiveTools[0] != "delete_vpc" {
		t.Fatalf("unexpected safety config: %#v", cfg.Safety)
	}
	if len(cfg.Policy.DeniedTools) != 1 {
		t.Fatalf("unexpected policy config: %#v", cfg.Policy)
	}
	if cfg.Timeouts.DefaultSeconds != 30 || cfg.Timeouts.MaxSeconds != 120 || cfg.Timeouts.PerTool["create_rds_instance"] != 90 {
		t.Fatalf("unexpected timeouts: %#v", cfg.Timeouts)
	}
	if cfg.Cache.ListTTLSeconds != 15 || cfg.AWS.MaxAttempts != 5 {
		t.Fatalf("unexpected cache/aws config: %#v %#v", cfg.Cache, cfg.AWS)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml"), "", Overrides{}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadMissingDropInDir(t *testing.T) {
	cfg, err := Load("", filepath.Join(t.TempDir(), "nope"), Overrides{})
	if err != nil {
		t.Fatalf("expected missing drop-in dir to be ignored: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected defaults, got %#v", cfg)
	}
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv(EnvPath, "/etc/awsinfra/config.toml")
	if got := Path(""); got != "/etc/awsinfra/config.toml" {
		t.Fatalf("expected env path, got %q", got)
	}
	if got := Path("local.toml"); got != "local.toml" {
		t.Fatalf("expected explicit path, got %q", got)
	}
}
