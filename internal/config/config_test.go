package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyFileParsesRecognizedNames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dvswitch.conf")
	content := "# comment\nMIXER_HOST=mixer.example\nMIXER_PORT = 7890\nIGNORED=x\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var s Settings
	if err := applyFile(path, &s); err != nil {
		t.Fatalf("applyFile: %v", err)
	}
	if s.MixerHost != "mixer.example" {
		t.Errorf("MixerHost = %q, want %q", s.MixerHost, "mixer.example")
	}
	if s.MixerPort != "7890" {
		t.Errorf("MixerPort = %q, want %q", s.MixerPort, "7890")
	}
}

func TestApplyFileMissingIsNotAnError(t *testing.T) {
	var s Settings
	if err := applyFile(filepath.Join(t.TempDir(), "missing.conf"), &s); err != nil {
		t.Fatalf("applyFile on missing file: %v", err)
	}
}

func TestLaterFileOverridesEarlier(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.conf")
	second := filepath.Join(dir, "b.conf")
	os.WriteFile(first, []byte("MIXER_HOST=first\nMIXER_PORT=1\n"), 0o644)
	os.WriteFile(second, []byte("MIXER_HOST=second\n"), 0o644)

	var s Settings
	if err := applyFile(first, &s); err != nil {
		t.Fatal(err)
	}
	if err := applyFile(second, &s); err != nil {
		t.Fatal(err)
	}
	if s.MixerHost != "second" {
		t.Errorf("MixerHost = %q, want %q (later file wins)", s.MixerHost, "second")
	}
	if s.MixerPort != "1" {
		t.Errorf("MixerPort = %q, want %q (unset in later file keeps earlier value)", s.MixerPort, "1")
	}
}
