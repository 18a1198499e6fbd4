package service

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/lich2000117/Frigate-SimpleUI/internal/codec"
	"github.com/lich2000117/Frigate-SimpleUI/internal/domain"
	"github.com/lich2000117/Frigate-SimpleUI/internal/frigate"
)

// Load fetches the remote raw configuration and replaces the whole
// in-memory store with what it describes. This is a hard resync:
// local edits not yet saved are discarded. On failure the
// store is reset to empty rather than left half-populated.
func (s *ConfigService) Load(ctx context.Context) error {
	raw, err := s.client.RawConfig(ctx)
	if err != nil {
		s.reset()
		return fmt.Errorf("load config: %w", err)
	}

	doc, err := codec.Decode(raw)
	if err != nil {
		s.reset()
		return fmt.Errorf("load config: %w", err)
	}

	records, err := codec.Extract(doc)
	if err != nil {
		s.reset()
		return fmt.Errorf("load config: %w", err)
	}

	// The label vocabulary comes from a separate, possibly filtered
	// view. Failures here are non-fatal and fall back to the default
	// label set.
	labels := s.fetchLabels(ctx)

	s.mu.Lock()
	detector := codec.ExtractDetector(doc, s.detector)
	s.cameras = records
	s.detector = detector
	s.labels = labels
	s.mu.Unlock()

	if detector.Enabled {
		log.Printf("Loaded detector configuration: enabled=true device=%s", detector.Device)
	} else {
		log.Printf("Detector accelerator not present in remote config, keeping disabled")
	}
	log.Printf("Extracted %d cameras from the remote config", len(records))

	if s.bus != nil {
		s.bus.Publish(Event{Type: EventConfigLoaded, Payload: map[string]int{"cameras": len(records)}})
	}
	return nil
}

// Save renders the store and pushes it to the remote store, optionally
// asking for a restart.
func (s *ConfigService) Save(ctx context.Context, restart bool) error {
	doc, err := s.RenderYAML()
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	opt := frigate.SaveOnly
	if restart {
		opt = frigate.SaveAndRestart
	}
	if err := s.client.SaveConfig(ctx, doc, opt); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	log.Printf("Saved config to remote store (restart=%t)", restart)
	if s.bus != nil {
		s.bus.Publish(Event{Type: EventConfigSaved, Payload: map[string]bool{"restart": restart}})
	}
	return nil
}

// SaveRaw pushes caller-provided YAML verbatim, then reloads the store
// from the remote side so the cache reflects what was accepted.
func (s *ConfigService) SaveRaw(ctx context.Context, doc []byte, restart bool) error {
	opt := frigate.SaveOnly
	if restart {
		opt = frigate.SaveAndRestart
	}
	if err := s.client.SaveConfig(ctx, doc, opt); err != nil {
		return fmt.Errorf("save raw config: %w", err)
	}
	if err := s.Load(ctx); err != nil {
		log.Printf("Warning: reload after raw save failed: %v", err)
	}
	return nil
}

func (s *ConfigService) reset() {
	s.mu.Lock()
	s.cameras = nil
	s.mu.Unlock()
}

// fetchLabels extracts the recognizable object classes from the
// filtered config view. Every failure mode (transport, missing section,
// malformed structure) degrades to the fixed default set.
func (s *ConfigService) fetchLabels(ctx context.Context) []string {
	filtered, err := s.client.FilteredConfig(ctx)
	if err != nil {
		log.Printf("Warning: could not fetch filtered config for labels: %v", err)
		return append([]string(nil), domain.DefaultLabels...)
	}

	labelmap := findLabelmap(filtered)
	if len(labelmap) == 0 {
		log.Printf("Warning: no labelmap in filtered config, using default objects")
		return append([]string(nil), domain.DefaultLabels...)
	}

	keys := make([]int, 0, len(labelmap))
	for k := range labelmap {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	labels := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := labelmap[k]; v != "" {
			labels = append(labels, v)
		}
	}
	if len(labels) == 0 {
		return append([]string(nil), domain.DefaultLabels...)
	}
	log.Printf("Found %d detectable objects in labelmap", len(labels))
	return labels
}

// findLabelmap checks the known labelmap locations in priority order:
// any detector's model, then the top-level model's merged map, then the
// top-level model's plain map.
func findLabelmap(cfg map[string]any) map[int]string {
	if detectors, ok := cfg["detectors"].(map[string]any); ok {
		for _, d := range detectors {
			if m := labelmapAt(d, "model", "labelmap"); len(m) > 0 {
				return m
			}
		}
	}
	if m := labelmapAt(cfg, "model", "merged_labelmap"); len(m) > 0 {
		return m
	}
	return labelmapAt(cfg, "model", "labelmap")
}

// labelmapAt digs value[path[0]][path[1]] and coerces it to an
// int-keyed label table.
func labelmapAt(value any, path ...string) map[int]string {
	cur := value
	for _, p := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[p]
	}
	raw, ok := cur.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[int]string, len(raw))
	for k, v := range raw {
		idx, err := parseInt(k)
		if err != nil {
			continue
		}
		if label, ok := v.(string); ok {
			out[idx] = label
		}
	}
	return out
}

func parseInt(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}
