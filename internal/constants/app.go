// Package constants holds tunables shared across droidxfer packages.
package constants

import "os"

// Device namespace
const (
	// DefaultDeviceRoot is where remote navigation starts and where ParentOf
	// lands when no path segments remain.
	DefaultDeviceRoot = "/sdcard"

	// DeviceSeparator is the only separator used in device paths.
	DeviceSeparator = "/"
)

// Local filesystem permissions
const (
	// DirPerm is used for every directory created on the host.
	DirPerm os.FileMode = 0755

	// FilePerm is used for files pulled from the device.
	FilePerm os.FileMode = 0644

	// ConfigDirPerm restricts the config and log directory to the owner.
	ConfigDirPerm os.FileMode = 0700
)

// Disk space safety margin
const (
	// DiskSpaceSafetyMargin - multiplier applied to plan bytes before pulling
	// into a local destination (10% headroom for partial files).
	DiskSpaceSafetyMargin = 1.1
)

// Event System
const (
	// EventBusDefaultBuffer - default buffer size for event channels (1000)
	EventBusDefaultBuffer = 1000

	// EventBusMaxBuffer - maximum buffer size for high-throughput scenarios (5000)
	EventBusMaxBuffer = 5000
)

// Partial download suffix. Files are pulled to <dest>.part and renamed once
// the stream completes so a failed pull never leaves a truncated file behind.
const PartialSuffix = ".part"
