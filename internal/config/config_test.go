package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.Device.Root != "/sdcard" {
		t.Errorf("Expected Root=/sdcard, got %q", cfg.Device.Root)
	}
	if cfg.Transfer.IncludeHidden {
		t.Error("Expected IncludeHidden=false")
	}
	if cfg.Transfer.SdcardFallback {
		t.Error("Expected SdcardFallback=false")
	}
	if !cfg.Transfer.CheckDiskSpace {
		t.Error("Expected CheckDiskSpace=true")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Expected Level=info, got %q", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfigLoadSave(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "droidxfer.conf")

	cfg := NewConfig()
	cfg.Device.Serial = "R58M12345ABC"
	cfg.Device.Root = "/storage/emulated/0"
	cfg.ADB.Path = "/opt/platform-tools/adb"
	cfg.Transfer.IncludeHidden = true
	cfg.Transfer.SdcardFallback = true
	cfg.Transfer.CheckDiskSpace = false
	cfg.Logging.Level = "debug"

	if err := SaveConfig(cfg, configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(configPath)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("Expected permissions 0600, got %o", perm)
		}
	}
	if _, err := os.Stat(configPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	loaded, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", *loaded, *cfg)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.conf"))
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if *cfg != *NewConfig() {
		t.Errorf("expected defaults, got %+v", *cfg)
	}
}

func TestLoadConfigPartialFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "droidxfer.conf")
	content := "[transfer]\nsdcard_fallback = true\n"
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Transfer.SdcardFallback {
		t.Error("sdcard_fallback not read")
	}
	if cfg.Device.Root != "/sdcard" || !cfg.Transfer.CheckDiskSpace || cfg.Logging.Level != "info" {
		t.Errorf("unset keys should keep defaults: %+v", *cfg)
	}
}

func TestLoadConfigInvalidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "droidxfer.conf")
	if err := os.WriteFile(configPath, []byte("[device\nserial"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Error("expected error for malformed INI")
	}
}

func TestValidate(t *testing.T) {
	cfg := NewConfig()
	cfg.Device.Root = "sdcard"
	if err := cfg.Validate(); !errors.Is(err, ErrRelativeDeviceRoot) {
		t.Errorf("expected ErrRelativeDeviceRoot, got %v", err)
	}

	cfg = NewConfig()
	cfg.Logging.Level = "chatty"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("expected ErrInvalidLogLevel, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ANDROID_SERIAL", "emulator-5554")
	t.Setenv("ADB", "/usr/local/bin/adb")

	cfg := NewConfig()
	cfg.Device.Serial = "from-file"
	cfg.ApplyEnv()

	if cfg.Device.Serial != "emulator-5554" || cfg.ADB.Path != "/usr/local/bin/adb" {
		t.Errorf("env not applied: %+v", *cfg)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path, err := DefaultConfigPath()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if !strings.HasSuffix(path, filepath.Join("droidxfer", "droidxfer.conf")) {
		t.Errorf("unexpected default path %q", path)
	}
}
