package hid

import (
	"github.com/karalabe/hid"
)

// DeviceInfo describes a discovered HID device.
type DeviceInfo struct {
	VendorID     uint16
	ProductID    uint16
	Path         string
	Manufacturer string
	Product      string
	SerialNumber string
	UsagePage    uint16
	Usage        uint16
}

func infoFromSystem(d hid.DeviceInfo) DeviceInfo {
	return DeviceInfo{
		VendorID:     d.VendorID,
		ProductID:    d.ProductID,
		Path:         d.Path,
		Manufacturer: d.Manufacturer,
		Product:      d.Product,
		SerialNumber: d.Serial,
		UsagePage:    d.UsagePage,
		Usage:        d.Usage,
	}
}

// ListDevices enumerates every HID device on the system.
func ListDevices() ([]DeviceInfo, error) {
	devices := hid.Enumerate(0, 0)

	result := make([]DeviceInfo, len(devices))
	for i, d := range devices {
		result[i] = infoFromSystem(d)
	}

	return result, nil
}

// FindDevice looks for a device matching the given vendor and product
// IDs. Returns nil when no match is attached.
func FindDevice(vendorID, productID uint16) (*DeviceInfo, error) {
	devices := hid.Enumerate(vendorID, productID)
	if len(devices) == 0 {
		return nil, nil
	}

	info := infoFromSystem(devices[0])
	return &info, nil
}
