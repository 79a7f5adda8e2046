package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "macerator.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFull(t *testing.T) {
	path := writeConfig(t, `
broker: tcp://192.168.1.200:1883
device: cellar-01
client_id: macerator-test
topic_prefix: home/wine
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("Broker: got %q", cfg.Broker)
	}
	if cfg.Device != "cellar-01" {
		t.Errorf("Device: got %q", cfg.Device)
	}
	if cfg.ClientID != "macerator-test" {
		t.Errorf("ClientID: got %q", cfg.ClientID)
	}
	if cfg.TopicPrefix != "home/wine" {
		t.Errorf("TopicPrefix: got %q", cfg.TopicPrefix)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
broker: tcp://localhost:1883
device: cellar-01
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ClientID != DefaultClientID {
		t.Errorf("ClientID default: got %q, want %q", cfg.ClientID, DefaultClientID)
	}
	if cfg.TopicPrefix != DefaultTopicPrefix {
		t.Errorf("TopicPrefix default: got %q, want %q", cfg.TopicPrefix, DefaultTopicPrefix)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadMissingBroker(t *testing.T) {
	path := writeConfig(t, "device: cellar-01\n")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for missing broker")
	}
	if !strings.Contains(err.Error(), "broker") {
		t.Errorf("error should name the missing key: %v", err)
	}
}

func TestLoadMissingDevice(t *testing.T) {
	path := writeConfig(t, "broker: tcp://localhost:1883\n")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for missing device")
	}
	if !strings.Contains(err.Error(), "device") {
		t.Errorf("error should name the missing key: %v", err)
	}
}

func TestLoadUnknownKey(t *testing.T) {
	path := writeConfig(t, `
broker: tcp://localhost:1883
device: cellar-01
brokre_typo: oops
`)
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, "broker: [unclosed\n")
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}
