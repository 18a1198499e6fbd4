package codec

import (
	"log"

	"github.com/lich2000117/Frigate-SimpleUI/internal/domain"
)

// Extract derives the camera record set from a decoded document, in
// document order, filling the documented defaults for every field the
// remote side omitted.
func Extract(doc *Document) ([]domain.CameraRecord, error) {
	names, nodes, err := doc.cameraEntries()
	if err != nil {
		return nil, err
	}

	records := make([]domain.CameraRecord, 0, len(names))
	for i, name := range names {
		var section CameraSection
		if err := nodes[i].Decode(&section); err != nil {
			log.Printf("Warning: skipping camera %q: %v", name, err)
			continue
		}
		records = append(records, extractCamera(doc, name, &section))
	}
	return records, nil
}

// extractCamera resolves one camera's stream references and settings.
func extractCamera(doc *Document, name string, section *CameraSection) domain.CameraRecord {
	rec := domain.NewCameraRecord(name)

	entries := doc.Go2RTC.Streams[name]

	// Primary reference: the first media-routing entry wins when it is a
	// plain or ffmpeg-wrapped RTSP URL; any other first entry is an
	// opaque custom URL. With no routing entry at all, fall back to the
	// camera's direct input path.
	if len(entries) > 0 {
		first := domain.ParseDirective(entries[0])
		if first.IsRTSP() {
			rec.RtspURL = first.Source
		} else {
			rec.CustomCameraURL = entries[0]
		}
	} else if section.FFmpeg != nil && len(section.FFmpeg.Inputs) > 0 {
		rec.RtspURL = section.FFmpeg.Inputs[0].Path
	}

	// Sub-stream: first RTSP entry after the primary, skipping the
	// synthetic OPUS loopback entry (its source is the camera name, not
	// a URL). Reading index 1 blindly would capture that loopback entry
	// and break the load/render round trip.
	if rec.CustomCameraURL == "" {
		for _, raw := range entries[min(1, len(entries)):] {
			d := domain.ParseDirective(raw)
			if d.IsRTSP() && d.Source != rec.RtspURL {
				rec.SubStreamURL = d.Source
				break
			}
		}
	}

	// Codec hints live in the annotations, anywhere in the entry list.
	for _, raw := range entries {
		d := domain.ParseDirective(raw)
		if d.Video == "h264" {
			rec.ForceH264 = true
		}
		if d.HasAudio("aac") {
			rec.EnableAac = true
		}
		if d.HasAudio("opus") {
			rec.EnableOpus = true
		}
	}

	if det := section.Detect; det != nil {
		if det.Width > 0 {
			rec.DetectWidth = det.Width
		}
		if det.Height > 0 {
			rec.DetectHeight = det.Height
		}
		if det.FPS > 0 {
			rec.DetectFPS = det.FPS
		}
	}
	if obj := section.Objects; obj != nil && len(obj.Track) > 0 {
		rec.ObjectsToTrack = append([]string(nil), obj.Track...)
	}
	if recSec := section.Record; recSec != nil {
		if recSec.Enabled != nil {
			rec.RecordEnabled = *recSec.Enabled
		}
		if recSec.Retain != nil {
			if recSec.Retain.Days > 0 {
				rec.RecordRetainDays = recSec.Retain.Days
			}
			if recSec.Retain.Mode != "" {
				rec.RecordRetainMode = domain.RetainMode(recSec.Retain.Mode)
			}
		}
	}
	if m := section.Motion; m != nil {
		if m.Threshold > 0 {
			rec.MotionThreshold = m.Threshold
		}
		if m.ContourArea > 0 {
			rec.MotionContourArea = m.ContourArea
		}
		if m.ImproveContrast != nil {
			rec.MotionImproveContrast = *m.ImproveContrast
		}
	}
	if s := section.Snapshots; s != nil {
		if s.Enabled != nil {
			rec.SnapshotsEnabled = *s.Enabled
		}
		if s.Timestamp != nil {
			rec.SnapshotsTimestamp = *s.Timestamp
		}
		if s.BoundingBox != nil {
			rec.SnapshotsBoundingBox = *s.BoundingBox
		}
		if s.Retain != nil && s.Retain.Default > 0 {
			rec.SnapshotsRetain = s.Retain.Default
		}
	}

	rec.Normalize()
	return rec
}

// ExtractDetector reads the accelerator sub-section. A missing section
// means disabled; the previous device type is kept in that case.
func ExtractDetector(doc *Document, previous domain.DetectorConfig) domain.DetectorConfig {
	if coral, ok := doc.Detectors["coral"]; ok {
		device := domain.DetectorDevice(coral.Device)
		if !domain.ValidDetectorDevice(device) {
			device = domain.DetectorDevicePCI
		}
		return domain.DetectorConfig{Enabled: true, Device: device}
	}
	cfg := previous
	cfg.Enabled = false
	if !domain.ValidDetectorDevice(cfg.Device) {
		cfg.Device = domain.DetectorDevicePCI
	}
	return cfg
}
