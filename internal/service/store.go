package service

import (
	"fmt"
	"log"
	"sync"

	"github.com/lich2000117/Frigate-SimpleUI/internal/codec"
	"github.com/lich2000117/Frigate-SimpleUI/internal/domain"
	"github.com/lich2000117/Frigate-SimpleUI/internal/frigate"
)

// ConfigService owns the in-memory camera store. The store is a cache
// of the remote document, never a source of truth: Load rebuilds it
// wholesale and Save projects it back to the wire format.
//
// Name lookups are case-insensitive throughout (names are constrained
// to ASCII alphanumerics plus underscore, so folding is unambiguous);
// the stored spelling is preserved.
type ConfigService struct {
	mu       sync.RWMutex
	cameras  []domain.CameraRecord
	detector domain.DetectorConfig
	labels   []string

	client   *frigate.Client
	bus      *EventBus
	skeleton codec.Skeleton
}

// NewConfigService creates the service with an empty store.
func NewConfigService(client *frigate.Client, bus *EventBus, sk codec.Skeleton, defaultDevice domain.DetectorDevice) *ConfigService {
	if !domain.ValidDetectorDevice(defaultDevice) {
		defaultDevice = domain.DetectorDevicePCI
	}
	return &ConfigService{
		client:   client,
		bus:      bus,
		skeleton: sk,
		detector: domain.DetectorConfig{Device: defaultDevice},
		labels:   append([]string(nil), domain.DefaultLabels...),
	}
}

// List returns a copy of all camera records in store order.
func (s *ConfigService) List() []domain.CameraRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyRecords(s.cameras)
}

// Find returns the record with the given name, or false. The match is
// case-insensitive.
func (s *ConfigService) Find(name string) (domain.CameraRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.cameras {
		if domain.NameEqual(s.cameras[i].Name, name) {
			return cloneRecord(s.cameras[i]), true
		}
	}
	return domain.CameraRecord{}, false
}

// Upsert validates and stores a camera record, merging over an existing
// record of the same name or appending a new one.
func (s *ConfigService) Upsert(rec domain.CameraRecord) error {
	rec.Normalize()
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cameras {
		if domain.NameEqual(s.cameras[i].Name, rec.Name) {
			rec.Name = s.cameras[i].Name // keep stored spelling
			s.cameras[i] = cloneRecord(rec)
			log.Printf("Updated camera %q (H264=%t AAC=%t OPUS=%t)", rec.Name, rec.ForceH264, rec.EnableAac, rec.EnableOpus)
			s.publish(EventCameraUpdated, rec.Name)
			return nil
		}
	}
	s.cameras = append(s.cameras, cloneRecord(rec))
	log.Printf("Added camera %q (H264=%t AAC=%t OPUS=%t)", rec.Name, rec.ForceH264, rec.EnableAac, rec.EnableOpus)
	s.publish(EventCameraUpdated, rec.Name)
	return nil
}

// Remove deletes a camera by name, reporting whether one existed.
func (s *ConfigService) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cameras {
		if domain.NameEqual(s.cameras[i].Name, name) {
			s.cameras = append(s.cameras[:i], s.cameras[i+1:]...)
			log.Printf("Removed camera %q", name)
			s.publish(EventCameraRemoved, name)
			return true
		}
	}
	log.Printf("Warning: camera %q not found, nothing removed", name)
	return false
}

// DetectorConfig returns the current accelerator configuration.
func (s *ConfigService) DetectorConfig() domain.DetectorConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detector
}

// SetDetectorConfig replaces the accelerator configuration.
func (s *ConfigService) SetDetectorConfig(cfg domain.DetectorConfig) error {
	if !domain.ValidDetectorDevice(cfg.Device) {
		return fmt.Errorf("%w: detector device must be %q or %q", domain.ErrValidation, domain.DetectorDevicePCI, domain.DetectorDeviceUSB)
	}
	s.mu.Lock()
	s.detector = cfg
	s.mu.Unlock()
	log.Printf("Updated detector configuration: enabled=%t device=%s", cfg.Enabled, cfg.Device)
	return nil
}

// AvailableLabels returns the detector's object vocabulary.
func (s *ConfigService) AvailableLabels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.labels...)
}

// RenderYAML projects the current store into the remote document
// format. Pure with respect to the store: same state, same bytes.
func (s *ConfigService) RenderYAML() ([]byte, error) {
	s.mu.RLock()
	cameras := copyRecords(s.cameras)
	detector := s.detector
	s.mu.RUnlock()
	return codec.Render(cameras, detector, s.skeleton)
}

func (s *ConfigService) publish(t EventType, name string) {
	if s.bus != nil {
		s.bus.Publish(Event{Type: t, Payload: map[string]string{"name": name}})
	}
}

func copyRecords(in []domain.CameraRecord) []domain.CameraRecord {
	out := make([]domain.CameraRecord, len(in))
	for i := range in {
		out[i] = cloneRecord(in[i])
	}
	return out
}

func cloneRecord(rec domain.CameraRecord) domain.CameraRecord {
	rec.ObjectsToTrack = append([]string(nil), rec.ObjectsToTrack...)
	return rec
}
