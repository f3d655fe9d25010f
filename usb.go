package polydaq

import (
	"os"
	"path/filepath"
	"strings"

	"go.bug.st/serial/enumerator"
)

// sysfsRoot is the mount point of sysfs
var sysfsRoot = "/sys"

// detailedPorts lists USB details for every port the enumerator knows about
var detailedPorts = enumerator.GetDetailedPortsList

// enrichUSBInfo fills in the USB fields of info. Missing data is left empty.
func enrichUSBInfo(info *PortInfo) {
	if ports, err := detailedPorts(); err == nil {
		for _, p := range ports {
			if p.Name != info.Path || !p.IsUSB {
				continue
			}
			info.IsUSB = true
			info.VendorID = strings.ToLower(p.VID)
			info.ProductID = strings.ToLower(p.PID)
			info.SerialNumber = p.SerialNumber
			break
		}
	}

	dir := findUSBDeviceDir(info.Name)
	if dir == "" {
		return
	}
	info.IsUSB = true
	info.BusNumber = readSysfsFile(filepath.Join(dir, "busnum"))
	info.DeviceNumber = readSysfsFile(filepath.Join(dir, "devnum"))
	info.Manufacturer = readSysfsFile(filepath.Join(dir, "manufacturer"))
	info.Product = readSysfsFile(filepath.Join(dir, "product"))
	if info.VendorID == "" {
		info.VendorID = readSysfsFile(filepath.Join(dir, "idVendor"))
	}
	if info.ProductID == "" {
		info.ProductID = readSysfsFile(filepath.Join(dir, "idProduct"))
	}
	if info.SerialNumber == "" {
		info.SerialNumber = readSysfsFile(filepath.Join(dir, "serial"))
	}
}

// findUSBDeviceDir resolves /sys/class/tty/<name>/device and walks up to the
// USB device directory, the first ancestor holding busnum and devnum.
func findUSBDeviceDir(name string) string {
	link := filepath.Join(sysfsRoot, "class", "tty", name, "device")
	dir, err := filepath.EvalSymlinks(link)
	if err != nil {
		return ""
	}

	for dir != sysfsRoot && dir != "/" && dir != "." {
		if fileExists(filepath.Join(dir, "busnum")) && fileExists(filepath.Join(dir, "devnum")) {
			return dir
		}
		dir = filepath.Dir(dir)
	}
	return ""
}

// readSysfsFile returns the trimmed contents of a sysfs attribute, or ""
func readSysfsFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
