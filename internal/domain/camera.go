package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// RetainMode selects which recordings are kept past the retention window.
type RetainMode string

const (
	RetainModeMotion        RetainMode = "motion"
	RetainModeActiveObjects RetainMode = "active_objects"
	RetainModeAll           RetainMode = "all"
)

// Default values applied when the remote document omits a field.
const (
	DefaultDetectWidth    = 1024
	DefaultDetectHeight   = 768
	DefaultDetectFPS      = 3
	DefaultRetainDays     = 3
	DefaultMotionThreshold = 30
	DefaultContourArea    = 15
	DefaultSnapshotRetain = 60

	MinRetainDays = 1
	MaxRetainDays = 90
)

// DefaultObjects is the object set tracked when none is configured.
var DefaultObjects = []string{"person", "car"}

// cameraNameRE bounds names to what Frigate accepts as a YAML key and
// go2rtc accepts as a stream name.
var cameraNameRE = regexp.MustCompile(`^[A-Za-z0-9_]{1,32}$`)

// CameraRecord is one configured camera. Records live in memory only and
// are rebuilt from the remote document on every load.
type CameraRecord struct {
	Name string `json:"name"`

	// Exactly one of RtspURL / CustomCameraURL is authoritative.
	// Normalize clears the RTSP fields when a custom URL is set.
	RtspURL         string `json:"rtspUrl"`
	SubStreamURL    string `json:"subStreamUrl"`
	CustomCameraURL string `json:"customCameraUrl"`

	// Advisory transcoding directives, independent of each other.
	ForceH264  bool `json:"forceH264"`
	EnableAac  bool `json:"enableAac"`
	EnableOpus bool `json:"enableOpus"`

	DetectWidth    int      `json:"detectWidth"`
	DetectHeight   int      `json:"detectHeight"`
	DetectFPS      int      `json:"detectFps"`
	ObjectsToTrack []string `json:"objectsToTrack"`

	RecordEnabled    bool       `json:"recordEnabled"`
	RecordRetainDays int        `json:"recordRetainDays"`
	RecordRetainMode RetainMode `json:"recordRetainMode"`

	MotionThreshold       int  `json:"motionThreshold"`
	MotionContourArea     int  `json:"motionContourArea"`
	MotionImproveContrast bool `json:"motionImproveContrast"`

	SnapshotsEnabled     bool `json:"snapshotsEnabled"`
	SnapshotsTimestamp   bool `json:"snapshotsTimestamp"`
	SnapshotsBoundingBox bool `json:"snapshotsBoundingBox"`
	SnapshotsRetain      int  `json:"snapshotsRetainDefault"`
}

// NewCameraRecord returns a record carrying the documented defaults.
// Boolean defaults live here because a zero bool is indistinguishable
// from an explicit false once the record exists.
func NewCameraRecord(name string) CameraRecord {
	return CameraRecord{
		Name:                  name,
		DetectWidth:           DefaultDetectWidth,
		DetectHeight:          DefaultDetectHeight,
		DetectFPS:             DefaultDetectFPS,
		ObjectsToTrack:        append([]string(nil), DefaultObjects...),
		RecordRetainDays:      DefaultRetainDays,
		RecordRetainMode:      RetainModeMotion,
		MotionThreshold:       DefaultMotionThreshold,
		MotionContourArea:     DefaultContourArea,
		MotionImproveContrast: true,
		SnapshotsEnabled:      true,
		SnapshotsTimestamp:    true,
		SnapshotsBoundingBox:  true,
		SnapshotsRetain:       DefaultSnapshotRetain,
	}
}

// ValidateName checks the camera name against the allowed character set
// and length bound.
func ValidateName(name string) error {
	if !cameraNameRE.MatchString(name) {
		return fmt.Errorf("%w: camera name must be 1-32 letters, numbers, or underscores", ErrValidation)
	}
	return nil
}

// Validate rejects a record that cannot be stored.
func (c *CameraRecord) Validate() error {
	if err := ValidateName(c.Name); err != nil {
		return err
	}
	if c.CustomCameraURL == "" && c.RtspURL == "" {
		return fmt.Errorf("%w: RTSP URL is required when no custom URL is set", ErrValidation)
	}
	return nil
}

// Normalize enforces the structural invariants: custom-URL exclusivity,
// retain-day clamping, non-empty object set and retain mode.
func (c *CameraRecord) Normalize() {
	if c.CustomCameraURL != "" {
		c.RtspURL = ""
		c.SubStreamURL = ""
	}
	if c.RecordRetainDays < MinRetainDays {
		c.RecordRetainDays = MinRetainDays
	}
	if c.RecordRetainDays > MaxRetainDays {
		c.RecordRetainDays = MaxRetainDays
	}
	if len(c.ObjectsToTrack) == 0 {
		c.ObjectsToTrack = append([]string(nil), DefaultObjects...)
	}
	switch c.RecordRetainMode {
	case RetainModeMotion, RetainModeActiveObjects, RetainModeAll:
	default:
		c.RecordRetainMode = RetainModeMotion
	}
	if c.DetectWidth <= 0 {
		c.DetectWidth = DefaultDetectWidth
	}
	if c.DetectHeight <= 0 {
		c.DetectHeight = DefaultDetectHeight
	}
	if c.DetectFPS <= 0 {
		c.DetectFPS = DefaultDetectFPS
	}
	if c.MotionThreshold <= 0 {
		c.MotionThreshold = DefaultMotionThreshold
	}
	if c.MotionContourArea <= 0 {
		c.MotionContourArea = DefaultContourArea
	}
	if c.SnapshotsRetain <= 0 {
		c.SnapshotsRetain = DefaultSnapshotRetain
	}
}

// NameEqual compares camera names case-insensitively. Names are ASCII
// alphanumeric plus underscore, so simple folding is safe.
func NameEqual(a, b string) bool {
	return strings.EqualFold(a, b)
}
