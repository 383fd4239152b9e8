package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/droidxfer/droidxfer/internal/bridge"
	"github.com/droidxfer/droidxfer/internal/bridge/adb"
	"github.com/droidxfer/droidxfer/internal/config"
	"github.com/droidxfer/droidxfer/internal/constants"
	"github.com/droidxfer/droidxfer/internal/events"
	"github.com/droidxfer/droidxfer/internal/logging"
	"github.com/droidxfer/droidxfer/internal/pathutil"
	"github.com/droidxfer/droidxfer/internal/progress"
	"github.com/droidxfer/droidxfer/internal/services"
	"github.com/droidxfer/droidxfer/internal/state"
)

// newBridgeClient builds the device bridge. Tests replace it with an
// in-memory fake.
var newBridgeClient = func(cfg *config.Config, logger *logging.Logger) (bridge.Client, error) {
	return adb.NewClient(adb.Options{BinaryPath: cfg.ADB.Path, Logger: logger})
}

// newTransferReporter builds the file-count progress UI for push and pull.
var newTransferReporter = func() progress.TransferReporter {
	return progress.NewTransferUI()
}

// loadConfig loads the config file and layers the environment and the
// global flags over it, in that order.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	if deviceSerial != "" {
		cfg.Device.Serial = deviceSerial
	}
	if adbPath != "" {
		cfg.ADB.Path = adbPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !verbose && !debug {
		level, _ := logging.ParseLevel(cfg.Logging.Level)
		logging.SetGlobalLevel(level)
	}
	return cfg, nil
}

// newService wires a TransferService for one command. The session starts in
// the working directory on the host and the configured root on the device.
// overrides adjust the loaded config for command-specific flags.
func newService(overrides ...func(*config.Config)) (*services.TransferService, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	for _, override := range overrides {
		override(cfg)
	}

	client, err := newBridgeClient(cfg, GetLogger())
	if err != nil {
		return nil, nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	eventBus := events.NewEventBus(constants.EventBusDefaultBuffer)
	svc := services.NewTransferService(services.Options{
		Client:       client,
		Session:      state.NewSession(cfg.Device.Root, cwd, eventBus),
		Config:       cfg,
		EventBus:     eventBus,
		Logger:       GetLogger(),
		Reporter:     newTransferReporter(),
		ByteReporter: progress.NewCLIProgress(),
	})
	return svc, cfg, nil
}

// newDeviceService is newService plus device selection, for every command
// that touches the device.
func newDeviceService(ctx context.Context, overrides ...func(*config.Config)) (*services.TransferService, *config.Config, error) {
	svc, cfg, err := newService(overrides...)
	if err != nil {
		return nil, nil, err
	}

	device, err := svc.SelectDevice(ctx, cfg.Device.Serial)
	if err != nil {
		return nil, nil, err
	}
	GetLogger().Debug().Str("serial", device.Serial).Str("model", device.Model).Msg("device selected")
	return svc, cfg, nil
}

// resolveRemote makes a device path absolute against the session's current
// device directory.
func resolveRemote(session *state.Session, p string) string {
	p = pathutil.NormalizeForDevice(p)
	if strings.HasPrefix(p, "/") {
		return pathutil.Join(p, "", true)
	}
	return pathutil.Join(session.RemotePath(), p, true)
}

// resolveLocal makes a host path absolute, expanding a leading ~.
func resolveLocal(p string) (string, error) {
	return pathutil.ResolveAbsolutePath(p)
}
