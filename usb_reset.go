package polydaq

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// reenumerateDelay is how long a reset board usually needs to come back
var reenumerateDelay = 2 * time.Second

var (
	lookPath   = exec.LookPath
	runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return exec.CommandContext(ctx, name, args...).CombinedOutput()
	}
	waitReenumerate = sleepContext
)

// ResetUSBDevice performs a USB-level reset of the board behind portPath
// with usbreset(1), then waits for the board to re-enumerate. This recovers
// a board whose firmware has stopped answering without unplugging it.
//
// usbreset must be installed (usbutils) and the caller usually needs root.
// A port without USB bus and device numbers yields ErrUSBInfoNotAvailable.
func ResetUSBDevice(ctx context.Context, portPath string) error {
	info, err := GetPortInfo(portPath)
	if err != nil {
		return fmt.Errorf("failed to get port info: %w", err)
	}
	return resetPort(ctx, info)
}

// ResetUSBDeviceBySerial resets the board whose USB serial number matches.
// The port path of a board can change between resets; its serial cannot.
func ResetUSBDeviceBySerial(ctx context.Context, serialNumber string) error {
	info := findBySerial(serialNumber)
	if info == nil {
		return fmt.Errorf("%w: no device with serial %s", ErrDeviceNotFound, serialNumber)
	}
	return resetPort(ctx, info)
}

// IsUSBResetAvailable checks if usbreset utility is available in PATH
func IsUSBResetAvailable() bool {
	_, err := lookPath("usbreset")
	return err == nil
}

func resetPort(ctx context.Context, info *PortInfo) error {
	target, err := usbAddress(info)
	if err != nil {
		return err
	}
	if !IsUSBResetAvailable() {
		return ErrUSBResetNotAvailable
	}

	if output, err := runCommand(ctx, "usbreset", target); err != nil {
		return fmt.Errorf("usbreset %s failed: %w (output: %s)", target, err, strings.TrimSpace(string(output)))
	}
	return waitReenumerate(ctx, reenumerateDelay)
}

// usbAddress formats the bus and device numbers the way usbreset wants
// them, BBB/DDD
func usbAddress(info *PortInfo) (string, error) {
	if info.BusNumber == "" || info.DeviceNumber == "" {
		return "", ErrUSBInfoNotAvailable
	}
	bus, err := strconv.Atoi(info.BusNumber)
	if err != nil {
		return "", fmt.Errorf("%w: bus %q", ErrUSBInfoNotAvailable, info.BusNumber)
	}
	dev, err := strconv.Atoi(info.DeviceNumber)
	if err != nil {
		return "", fmt.Errorf("%w: device %q", ErrUSBInfoNotAvailable, info.DeviceNumber)
	}
	return fmt.Sprintf("%03d/%03d", bus, dev), nil
}

// findBySerial walks the USB ttys sysfs knows about. It does not need the
// device node, which may be missing while the board is wedged.
func findBySerial(serialNumber string) *PortInfo {
	if serialNumber == "" {
		return nil
	}
	entries, err := os.ReadDir(filepath.Join(sysfsRoot, "class", "tty"))
	if err != nil {
		return nil
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "ttyUSB") && !strings.HasPrefix(name, "ttyACM") {
			continue
		}
		info := &PortInfo{
			Name:        name,
			Path:        filepath.Join(devDir, name),
			Description: getPortDescription(name),
		}
		enrichUSBInfo(info)
		if info.SerialNumber == serialNumber {
			return info
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
