// Package adb implements bridge.Client by driving the Android Debug Bridge
// executable. Every operation is one adb invocation; nothing is cached.
package adb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path"
	"strconv"
	"strings"

	"github.com/droidxfer/droidxfer/internal/bridge"
	"github.com/droidxfer/droidxfer/internal/logging"
)

// Options configures the adb client.
type Options struct {
	// BinaryPath is the adb executable. Empty means look it up in PATH.
	BinaryPath string

	// Logger receives debug output for every adb invocation. Optional.
	Logger *logging.Logger
}

// Client wraps the adb CLI.
type Client struct {
	binaryPath string
	logger     *logging.Logger
}

var _ bridge.Client = (*Client)(nil)

// NewClient creates an adb client and verifies the binary is available.
func NewClient(opts Options) (*Client, error) {
	binaryPath := opts.BinaryPath
	if binaryPath == "" {
		found, err := exec.LookPath("adb")
		if err != nil {
			return nil, fmt.Errorf("adb not found in PATH: %w", err)
		}
		binaryPath = found
	} else if _, err := exec.LookPath(binaryPath); err != nil {
		return nil, fmt.Errorf("adb binary %s is not executable: %w", binaryPath, err)
	}

	return &Client{binaryPath: binaryPath, logger: opts.Logger}, nil
}

// BinaryPath returns the adb executable in use.
func (c *Client) BinaryPath() string {
	return c.binaryPath
}

// execResult holds the output from one adb invocation.
type execResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// output returns stderr and stdout joined, for error classification.
func (r *execResult) output() string {
	return strings.TrimSpace(r.Stderr + "\n" + r.Stdout)
}

// run executes adb with args. A non-zero exit is reported in the result, not
// as an error; the error is reserved for failures to run adb at all.
func (c *Client) run(ctx context.Context, args ...string) (*execResult, error) {
	if c.logger != nil {
		c.logger.Debug().Strs("args", args).Msg("adb")
	}

	cmd := exec.CommandContext(ctx, c.binaryPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := &execResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("adb exec failed: %w", err)
	}

	return result, nil
}

func deviceArgs(deviceID string, args ...string) []string {
	if deviceID == "" {
		return args
	}
	return append([]string{"-s", deviceID}, args...)
}

// ListDevices returns every device adb knows about, online or not.
func (c *Client) ListDevices(ctx context.Context) ([]bridge.Device, error) {
	result, err := c.run(ctx, "devices", "-l")
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return nil, fmt.Errorf("adb devices failed (exit %d): %s", result.ExitCode, result.output())
	}
	return parseDevices(result.Stdout), nil
}

// ReadDir lists one remote directory. Each entry is reported with its raw
// hex st_mode so callers classify it with bridge.IsDirMode.
func (c *Client) ReadDir(ctx context.Context, deviceID, dir string) ([]bridge.RawEntry, error) {
	// The trailing slash makes find follow a symlinked start point such as
	// /sdcard without following symlinked children.
	start := strings.TrimRight(dir, "/") + "/"
	command := fmt.Sprintf("find %s -mindepth 1 -maxdepth 1 -exec stat -c '%%f|%%s|%%n' {} +", bridge.ShellQuote(start))

	result, err := c.run(ctx, deviceArgs(deviceID, "shell", command)...)
	if err != nil {
		return nil, err
	}

	entries, parseErr := parseStatLines(result.Stdout)
	if result.ExitCode != 0 && len(entries) == 0 {
		return nil, fmt.Errorf("read %s: %w", dir, classify(result.output()))
	}
	if parseErr != nil {
		return nil, fmt.Errorf("read %s: %w", dir, parseErr)
	}
	return entries, nil
}

// Pull streams a remote file. The stream must be closed; Close reports a
// failure of the remote side (missing file, device gone).
func (c *Client) Pull(ctx context.Context, deviceID, remotePath string) (io.ReadCloser, error) {
	args := deviceArgs(deviceID, "exec-out", "cat "+bridge.ShellQuote(remotePath))
	if c.logger != nil {
		c.logger.Debug().Strs("args", args).Msg("adb")
	}

	cmd := exec.CommandContext(ctx, c.binaryPath, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("adb pull pipe: %w", err)
	}
	stream := &pullStream{ReadCloser: stdout, cmd: cmd, remotePath: remotePath}
	cmd.Stderr = &stream.stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("adb exec failed: %w", err)
	}
	return stream, nil
}

type pullStream struct {
	io.ReadCloser
	cmd        *exec.Cmd
	stderr     bytes.Buffer
	remotePath string
	closed     bool
}

func (s *pullStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	// Drain so adb is not blocked on a full pipe when the reader stops early.
	_, _ = io.Copy(io.Discard, s.ReadCloser)
	if err := s.cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("pull %s: %w", s.remotePath, classify(s.stderr.String()))
		}
		return fmt.Errorf("pull %s: %w", s.remotePath, err)
	}
	return nil
}

// Push copies a local file to the device.
func (c *Client) Push(ctx context.Context, deviceID, localPath, remotePath string) error {
	result, err := c.run(ctx, deviceArgs(deviceID, "push", localPath, remotePath)...)
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("push %s: %w", remotePath, classify(result.output()))
	}
	return nil
}

// Shell runs command in the device shell and returns its stdout.
func (c *Client) Shell(ctx context.Context, deviceID, command string) (string, error) {
	result, err := c.run(ctx, deviceArgs(deviceID, "shell", command)...)
	if err != nil {
		return "", err
	}
	if result.ExitCode != 0 {
		return result.Stdout, fmt.Errorf("shell %q: %w", command, classify(result.output()))
	}
	return result.Stdout, nil
}

// parseDevices parses `adb devices -l` output.
func parseDevices(out string) []bridge.Device {
	var devices []bridge.Device
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of devices") || strings.HasPrefix(line, "*") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		dev := bridge.Device{Serial: fields[0], State: fields[1]}
		for _, field := range fields[2:] {
			key, value, ok := strings.Cut(field, ":")
			if !ok {
				continue
			}
			switch key {
			case "model":
				dev.Model = value
			case "product":
				dev.Product = value
			}
		}
		devices = append(devices, dev)
	}
	return devices
}

// parseStatLines parses `stat -c '%f|%s|%n'` lines: hex mode, size, path.
func parseStatLines(out string) ([]bridge.RawEntry, error) {
	var entries []bridge.RawEntry
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			// find/stat diagnostics for single entries land here
			continue
		}
		mode, err := strconv.ParseUint(parts[0], 16, 32)
		if err != nil {
			return entries, fmt.Errorf("invalid mode %q for %s", parts[0], parts[2])
		}
		size, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return entries, fmt.Errorf("invalid size %q for %s", parts[1], parts[2])
		}
		name := path.Base(parts[2])
		if name == "." || name == ".." || name == "/" {
			continue
		}
		entries = append(entries, bridge.RawEntry{Name: name, Mode: uint32(mode), Size: size})
	}
	return entries, nil
}

// classify maps adb/device-shell diagnostics onto bridge sentinel errors.
func classify(output string) error {
	msg := strings.TrimSpace(output)
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "no devices/emulators found"),
		strings.Contains(lower, "device offline"),
		strings.Contains(lower, "unauthorized"),
		strings.HasPrefix(lower, "error: device") && strings.Contains(lower, "not found"),
		strings.HasPrefix(lower, "error: closed"):
		return fmt.Errorf("%w: %s", bridge.ErrDeviceUnavailable, msg)
	case strings.Contains(lower, "no such file or directory"):
		return fmt.Errorf("%w: %s", bridge.ErrNotFound, msg)
	case msg == "":
		return errors.New("command failed with no output")
	default:
		return errors.New(msg)
	}
}
