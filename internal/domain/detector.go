package domain

// DetectorDevice is the bus the detection accelerator hangs off.
type DetectorDevice string

const (
	DetectorDevicePCI DetectorDevice = "pci"
	DetectorDeviceUSB DetectorDevice = "usb"
)

// DetectorConfig is the single global accelerator record. When disabled
// the rendered document carries no detector section at all; the device
// type is retained so re-enabling keeps the last choice.
type DetectorConfig struct {
	Enabled bool           `json:"enabled"`
	Device  DetectorDevice `json:"type"`
}

// ValidDetectorDevice reports whether the value is a supported bus.
func ValidDetectorDevice(d DetectorDevice) bool {
	return d == DetectorDevicePCI || d == DetectorDeviceUSB
}

// DefaultLabels is the object vocabulary used when the remote model's
// labelmap cannot be extracted.
var DefaultLabels = []string{"person", "car", "cat", "dog", "truck", "bicycle"}
