// Package config loads and saves droidxfer's INI configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/droidxfer/droidxfer/internal/constants"
	"github.com/droidxfer/droidxfer/internal/logging"
)

// Config is the droidxfer configuration.
//
// INI format:
//
//	[device]
//	serial = R58M12345ABC
//	root = /sdcard
//
//	[adb]
//	path = /opt/platform-tools/adb
//
//	[transfer]
//	include_hidden = false
//	sdcard_fallback = false
//	check_disk_space = true
//
//	[logging]
//	level = info
type Config struct {
	Device   DeviceConfig
	ADB      ADBConfig
	Transfer TransferConfig
	Logging  LoggingConfig
}

// DeviceConfig selects the device and its default directory.
type DeviceConfig struct {
	// Serial is the device to use. Empty means the only attached device.
	Serial string `ini:"serial"`

	// Root is the device directory navigation starts from and never
	// ascends past. Default: /sdcard
	Root string `ini:"root"`
}

// ADBConfig locates the adb executable.
type ADBConfig struct {
	// Path to adb. Empty means look it up in PATH.
	Path string `ini:"path"`
}

// TransferConfig tunes listing and transfer behavior.
type TransferConfig struct {
	// IncludeHidden shows dot-files when browsing. Transfers always copy
	// them. Default: false
	IncludeHidden bool `ini:"include_hidden"`

	// SdcardFallback retries a missing device directory under Root, with
	// a warning. Default: false
	SdcardFallback bool `ini:"sdcard_fallback"`

	// CheckDiskSpace verifies free host space before pulling. Default: true
	CheckDiskSpace bool `ini:"check_disk_space"`
}

// LoggingConfig sets the default log level.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error. Default: info
	Level string `ini:"level"`
}

// Config validation errors
var (
	ErrRelativeDeviceRoot = errors.New("device root must be an absolute device path")
	ErrInvalidLogLevel    = errors.New("logging level must be one of debug, info, warn, error")
)

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			Root: constants.DefaultDeviceRoot,
		},
		Transfer: TransferConfig{
			CheckDiskSpace: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from path, or from DefaultConfigPath when
// path is empty. A missing file yields defaults and no error; a file that
// exists but cannot be parsed is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filepath.Base(path), err)
	}

	deviceSection := iniFile.Section("device")
	cfg.Device.Serial = strings.TrimSpace(deviceSection.Key("serial").String())
	cfg.Device.Root = deviceSection.Key("root").MustString(constants.DefaultDeviceRoot)

	cfg.ADB.Path = strings.TrimSpace(iniFile.Section("adb").Key("path").String())

	transferSection := iniFile.Section("transfer")
	cfg.Transfer.IncludeHidden = transferSection.Key("include_hidden").MustBool(false)
	cfg.Transfer.SdcardFallback = transferSection.Key("sdcard_fallback").MustBool(false)
	cfg.Transfer.CheckDiskSpace = transferSection.Key("check_disk_space").MustBool(true)

	cfg.Logging.Level = iniFile.Section("logging").Key("level").MustString("info")

	return cfg, nil
}

// SaveConfig writes cfg to path, or to DefaultConfigPath when path is empty.
// The file is written to a temporary name and renamed into place.
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	deviceSection, err := iniFile.NewSection("device")
	if err != nil {
		return fmt.Errorf("failed to create device section: %w", err)
	}
	deviceSection.Key("serial").SetValue(cfg.Device.Serial)
	deviceSection.Key("root").SetValue(cfg.Device.Root)

	adbSection, err := iniFile.NewSection("adb")
	if err != nil {
		return fmt.Errorf("failed to create adb section: %w", err)
	}
	adbSection.Key("path").SetValue(cfg.ADB.Path)

	transferSection, err := iniFile.NewSection("transfer")
	if err != nil {
		return fmt.Errorf("failed to create transfer section: %w", err)
	}
	transferSection.Key("include_hidden").SetValue(fmt.Sprintf("%t", cfg.Transfer.IncludeHidden))
	transferSection.Key("sdcard_fallback").SetValue(fmt.Sprintf("%t", cfg.Transfer.SdcardFallback))
	transferSection.Key("check_disk_space").SetValue(fmt.Sprintf("%t", cfg.Transfer.CheckDiskSpace))

	loggingSection, err := iniFile.NewSection("logging")
	if err != nil {
		return fmt.Errorf("failed to create logging section: %w", err)
	}
	loggingSection.Key("level").SetValue(cfg.Logging.Level)

	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// ApplyEnv overrides the device serial and adb path from the environment
// variables adb itself honors: ANDROID_SERIAL and ADB.
func (cfg *Config) ApplyEnv() {
	if serial := strings.TrimSpace(os.Getenv("ANDROID_SERIAL")); serial != "" {
		cfg.Device.Serial = serial
	}
	if adbPath := strings.TrimSpace(os.Getenv("ADB")); adbPath != "" {
		cfg.ADB.Path = adbPath
	}
}

// Validate checks if the configuration is valid.
func (cfg *Config) Validate() error {
	if !strings.HasPrefix(cfg.Device.Root, "/") {
		return ErrRelativeDeviceRoot
	}
	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLogLevel, err)
	}
	return nil
}
