package codec

import (
	"bytes"
	"fmt"
	"log"

	"gopkg.in/yaml.v3"

	"github.com/lich2000117/Frigate-SimpleUI/internal/domain"
)

// Skeleton holds the static infrastructure values the rendered document
// must carry for its consumer: broker connection, WebRTC candidates and
// transcoding presets. Passthrough configuration, not computed state.
type Skeleton struct {
	MQTTHost     string
	MQTTPort     int
	MQTTUser     string
	MQTTPassword string

	WebRTCCandidates []string
	WebRTCListen     string
}

// DefaultSkeleton mirrors the stock deployment values.
func DefaultSkeleton() Skeleton {
	return Skeleton{
		MQTTHost:         "192.168.199.2",
		MQTTPort:         1883,
		MQTTUser:         "mqtt-user",
		MQTTPassword:     "mqttpassword",
		WebRTCCandidates: []string{"localhost:8555", "192.168.199.3:8555", "127.0.0.1:8555", "stun:8555"},
		WebRTCListen:     ":8555/tcp",
	}
}

// sentinelStreamURL marks a camera that lost both stream references so
// the document stays structurally valid and the gap is visible.
const sentinelStreamURL = "rtsp://missing/url"

// formatVersion is appended after the last section.
const formatVersion = "0.14"

// Render projects the camera records and detector config into the exact
// document shape the NVR expects. Pure: the same inputs always produce
// byte-identical output.
func Render(cameras []domain.CameraRecord, detector domain.DetectorConfig, sk Skeleton) ([]byte, error) {
	root := mapping()

	appendSection(root, "mqtt", "MQTT configuration", mqttSection(sk))
	appendSection(root, "go2rtc", "Use go2rtc as media source", go2rtcSection(cameras, sk))
	if detector.Enabled {
		appendSection(root, "detectors", "Detector settings", detectorsSection(detector))
	}
	appendSection(root, "ffmpeg", "FFMPEG configuration", ffmpegSection())
	appendSection(root, "cameras", "Camera configurations", camerasSection(cameras))

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	buf.WriteString("\nversion: " + formatVersion + "\n")
	return buf.Bytes(), nil
}

func mqttSection(sk Skeleton) *yaml.Node {
	return mapping(
		strNode("enabled"), boolNode(true),
		strNode("host"), strNode(sk.MQTTHost),
		strNode("port"), intNode(sk.MQTTPort),
		strNode("topic_prefix"), strNode("frigate"),
		strNode("client_id"), strNode("frigate"),
		strNode("user"), strNode(sk.MQTTUser),
		strNode("password"), strNode(sk.MQTTPassword),
	)
}

func go2rtcSection(cameras []domain.CameraRecord, sk Skeleton) *yaml.Node {
	streams := mapping()
	for i := range cameras {
		cam := &cameras[i]
		entries := sequence()
		for _, e := range streamEntries(cam) {
			entries.Content = append(entries.Content, strNode(e))
		}
		streams.Content = append(streams.Content, strNode(cam.Name), entries)
	}

	candidates := sequence()
	for _, c := range sk.WebRTCCandidates {
		candidates.Content = append(candidates.Content, strNode(c))
	}

	return mapping(
		strNode("streams"), streams,
		strNode("webrtc"), mapping(
			strNode("candidates"), candidates,
			strNode("listen"), strNode(sk.WebRTCListen),
		),
	)
}

// streamEntries builds a camera's media-routing list: custom URL
// verbatim as the only entry, or the annotated RTSP URL followed by the
// synthetic OPUS loopback entry and the sub-stream.
func streamEntries(cam *domain.CameraRecord) []string {
	if cam.CustomCameraURL != "" {
		return []string{cam.CustomCameraURL}
	}
	if cam.RtspURL == "" {
		log.Printf("Warning: camera %q has no RTSP URL, emitting placeholder entry", cam.Name)
		return []string{sentinelStreamURL}
	}

	primary := domain.Directive{Source: cam.RtspURL}
	if cam.ForceH264 {
		primary.FFmpeg = true
		primary.Video = "h264"
	}
	if cam.EnableAac {
		primary.FFmpeg = true
		primary.Audio = append(primary.Audio, "aac")
	}

	entries := []string{primary.String()}
	if cam.EnableOpus {
		opus := domain.Directive{Source: cam.Name, FFmpeg: true, Audio: []string{"opus"}}
		entries = append(entries, opus.String())
	}
	if cam.SubStreamURL != "" {
		entries = append(entries, cam.SubStreamURL)
	}
	return entries
}

func detectorsSection(detector domain.DetectorConfig) *yaml.Node {
	return mapping(
		strNode("coral"), mapping(
			strNode("type"), strNode("edgetpu"),
			strNode("device"), strNode(string(detector.Device)),
		),
	)
}

func ffmpegSection() *yaml.Node {
	return mapping(
		strNode("input_args"), strNode("preset-rtsp-restream"),
		strNode("output_args"), mapping(
			strNode("record"), strNode("preset-record-generic-audio-copy"),
		),
	)
}

func camerasSection(cameras []domain.CameraRecord) *yaml.Node {
	out := mapping()
	for i := range cameras {
		cam := &cameras[i]
		out.Content = append(out.Content, strNode(cam.Name), cameraSection(cam))
	}
	return out
}

func cameraSection(cam *domain.CameraRecord) *yaml.Node {
	track := sequence()
	for _, o := range cam.ObjectsToTrack {
		track.Content = append(track.Content, strNode(o))
	}
	roles := sequence(strNode("record"), strNode("detect"))

	// The NVR always pulls from the local go2rtc restream, never from
	// the camera directly.
	loopback := fmt.Sprintf("rtsp://127.0.0.1:8554/%s?video&audio", cam.Name)

	return mapping(
		strNode("enabled"), boolNode(true),
		strNode("ffmpeg"), mapping(
			strNode("inputs"), sequence(mapping(
				strNode("path"), strNode(loopback),
				strNode("roles"), roles,
			)),
		),
		strNode("detect"), mapping(
			strNode("fps"), intNode(cam.DetectFPS),
			strNode("width"), intNode(cam.DetectWidth),
			strNode("height"), intNode(cam.DetectHeight),
		),
		strNode("objects"), mapping(
			strNode("track"), track,
		),
		strNode("record"), mapping(
			strNode("enabled"), boolNode(cam.RecordEnabled),
			strNode("retain"), mapping(
				strNode("days"), intNode(cam.RecordRetainDays),
				strNode("mode"), strNode(string(cam.RecordRetainMode)),
			),
		),
		strNode("motion"), mapping(
			strNode("threshold"), intNode(cam.MotionThreshold),
			strNode("contour_area"), intNode(cam.MotionContourArea),
			strNode("improve_contrast"), boolNode(cam.MotionImproveContrast),
		),
		strNode("snapshots"), mapping(
			strNode("enabled"), boolNode(cam.SnapshotsEnabled),
			strNode("timestamp"), boolNode(cam.SnapshotsTimestamp),
			strNode("bounding_box"), boolNode(cam.SnapshotsBoundingBox),
			strNode("retain"), mapping(
				strNode("default"), intNode(cam.SnapshotsRetain),
			),
		),
	)
}

// appendSection adds a top-level key with its banner comment.
func appendSection(root *yaml.Node, name, banner string, value *yaml.Node) {
	key := strNode(name)
	key.HeadComment = banner
	root.Content = append(root.Content, key, value)
}

func mapping(kv ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: kv}
}

func sequence(items ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: items}
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func intNode(i int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprintf("%d", i)}
}

func boolNode(b bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: fmt.Sprintf("%t", b)}
}
