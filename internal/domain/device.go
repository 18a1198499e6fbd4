package domain

import (
	"math"
	"sort"
)

// DiscoveredDevice is a transient descriptor for an ONVIF responder
// found during a multicast probe. It is never persisted.
type DiscoveredDevice struct {
	IP           string `json:"ip"`
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	OnvifURL     string `json:"onvifUrl"`
}

// NetworkInterface describes a local interface as shown in the scan
// UI. Eligible interfaces are the ones a discovery sweep will probe.
type NetworkInterface struct {
	Name     string `json:"name"`
	IP       string `json:"ip"`
	Eligible bool   `json:"eligible"`
}

// Resolution is one advertised encoder resolution.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns the pixel count.
func (r Resolution) Area() int { return r.Width * r.Height }

// StreamCapabilities summarizes a device's media profiles: distinct
// encoder names and resolutions in profile (insertion) order.
type StreamCapabilities struct {
	VideoEncoders []string     `json:"videoEncoders"`
	AudioEncoders []string     `json:"audioEncoders"`
	Resolutions   []Resolution `json:"resolutions"`
}

// DeviceStreams holds the negotiated stream URLs. SubStream is empty
// when the device exposes a single profile or when the sub-stream URI
// duplicates the main one.
type DeviceStreams struct {
	MainStream string `json:"mainStream"`
	SubStream  string `json:"subStream"`
}

// DerivedSettings are the codec and detection defaults suggested for a
// camera from its negotiated capabilities.
type DerivedSettings struct {
	ForceH264    bool `json:"forceH264"`
	EnableAac    bool `json:"enableAac"`
	EnableOpus   bool `json:"enableOpus"`
	DetectWidth  int  `json:"detectWidth"`
	DetectHeight int  `json:"detectHeight"`
}

// Detection dimensions are capped at 1080p; anything larger is
// downscaled proportionally.
const (
	maxDetectWidth  = 1920
	maxDetectHeight = 1080
)

// DeriveStreamSettings maps negotiated capabilities to camera defaults:
// force H.264 transcoding only when the device advertises encoders and
// none of them is H.264, enable AAC when the device advertises it, and
// offer OPUS whenever any audio encoder exists (devices rarely
// advertise OPUS natively but go2rtc can transcode to it for WebRTC).
func DeriveStreamSettings(caps StreamCapabilities) DerivedSettings {
	s := DerivedSettings{
		DetectWidth:  DefaultDetectWidth,
		DetectHeight: DefaultDetectHeight,
	}
	if len(caps.VideoEncoders) > 0 {
		s.ForceH264 = !hasEncoder(caps.VideoEncoders, "H264")
	}
	s.EnableAac = hasEncoder(caps.AudioEncoders, "AAC")
	s.EnableOpus = len(caps.AudioEncoders) > 0

	if best, ok := bestResolution(caps.Resolutions); ok {
		s.DetectWidth, s.DetectHeight = FitDetect(best)
	}
	return s
}

// bestResolution picks the highest-area resolution. Equal areas tie-break
// on the wider width so the choice is stable regardless of input order.
func bestResolution(rs []Resolution) (Resolution, bool) {
	if len(rs) == 0 {
		return Resolution{}, false
	}
	sorted := append([]Resolution(nil), rs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Area() != sorted[j].Area() {
			return sorted[i].Area() > sorted[j].Area()
		}
		return sorted[i].Width > sorted[j].Width
	})
	return sorted[0], true
}

// FitDetect downscales a resolution to fit 1920x1080, preserving aspect
// ratio and anchoring the longer edge to its bound. Values already
// inside the bound pass through unchanged.
func FitDetect(r Resolution) (int, int) {
	if r.Width <= 0 || r.Height <= 0 {
		return DefaultDetectWidth, DefaultDetectHeight
	}
	scale := math.Min(float64(maxDetectWidth)/float64(r.Width), float64(maxDetectHeight)/float64(r.Height))
	if scale >= 1 {
		return r.Width, r.Height
	}
	w := int(math.Round(float64(r.Width) * scale))
	h := int(math.Round(float64(r.Height) * scale))
	return w, h
}

func hasEncoder(encoders []string, name string) bool {
	for _, e := range encoders {
		if e == name {
			return true
		}
	}
	return false
}
