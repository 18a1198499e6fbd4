// Package codec converts between the remote NVR's YAML document and the
// in-memory camera records: Decode/Extract on the way in, Render on the
// way out. One shared directive codec (domain.Directive) handles the
// go2rtc stream annotation scheme in both directions.
package codec

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/lich2000117/Frigate-SimpleUI/internal/domain"
)

// Document is the subset of the remote configuration the reconciler
// reads. Cameras stays a raw node so document order is preserved.
type Document struct {
	Go2RTC    Go2RTC              `yaml:"go2rtc"`
	Detectors map[string]Detector `yaml:"detectors"`
	Cameras   yaml.Node           `yaml:"cameras"`
}

// Go2RTC carries the media-routing table.
type Go2RTC struct {
	Streams map[string]StreamList `yaml:"streams"`
}

// Detector is one entry under the detectors section.
type Detector struct {
	Type   string `yaml:"type"`
	Device string `yaml:"device"`
}

// StreamList tolerates both a single scalar entry and a sequence, since
// go2rtc accepts either form for a camera's source list.
type StreamList []string

func (s *StreamList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*s = StreamList{value.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("stream list must be a string or a sequence, got %v", value.Kind)
	}
}

// CameraSection is one camera's settings block. Pointers distinguish
// absent sections from zero values so defaults apply per field.
type CameraSection struct {
	FFmpeg *struct {
		Inputs []struct {
			Path  string   `yaml:"path"`
			Roles []string `yaml:"roles"`
		} `yaml:"inputs"`
	} `yaml:"ffmpeg"`
	Detect *struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
		FPS    int `yaml:"fps"`
	} `yaml:"detect"`
	Objects *struct {
		Track []string `yaml:"track"`
	} `yaml:"objects"`
	Record *struct {
		Enabled *bool `yaml:"enabled"`
		Retain  *struct {
			Days int    `yaml:"days"`
			Mode string `yaml:"mode"`
		} `yaml:"retain"`
	} `yaml:"record"`
	Motion *struct {
		Threshold       int   `yaml:"threshold"`
		ContourArea     int   `yaml:"contour_area"`
		ImproveContrast *bool `yaml:"improve_contrast"`
	} `yaml:"motion"`
	Snapshots *struct {
		Enabled     *bool `yaml:"enabled"`
		Timestamp   *bool `yaml:"timestamp"`
		BoundingBox *bool `yaml:"bounding_box"`
		Retain      *struct {
			Default int `yaml:"default"`
		} `yaml:"retain"`
	} `yaml:"snapshots"`
}

// Decode parses the raw remote document.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse remote config: %v", domain.ErrParse, err)
	}
	return &doc, nil
}

// cameraEntries walks the cameras mapping in document order.
func (d *Document) cameraEntries() ([]string, []*yaml.Node, error) {
	if d.Cameras.Kind == 0 || d.Cameras.Kind == yaml.ScalarNode && d.Cameras.Value == "" {
		return nil, nil, nil
	}
	if d.Cameras.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("%w: cameras section is not a mapping", domain.ErrParse)
	}
	var names []string
	var nodes []*yaml.Node
	for i := 0; i+1 < len(d.Cameras.Content); i += 2 {
		names = append(names, d.Cameras.Content[i].Value)
		nodes = append(nodes, d.Cameras.Content[i+1])
	}
	return names, nodes, nil
}
