package adapter

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/lich2000117/Frigate-SimpleUI/internal/domain"
	"github.com/lich2000117/Frigate-SimpleUI/internal/frigate"
)

const snapshotTimeout = 10 * time.Second

// Snapshotter grabs a single still frame from a camera for the setup
// preview. go2rtc is the cheap path; cameras not yet registered there
// fall back to a one-frame ffmpeg pull.
type Snapshotter struct {
	go2rtc *frigate.Go2RTC
	ffmpeg string
}

func NewSnapshotter(go2rtc *frigate.Go2RTC) *Snapshotter {
	return &Snapshotter{go2rtc: go2rtc, ffmpeg: "ffmpeg"}
}

// Snapshot returns JPEG bytes and their content type for the named
// stream, pulling directly from the RTSP URL when go2rtc cannot serve
// a frame.
func (s *Snapshotter) Snapshot(ctx context.Context, name, rtspURL string) ([]byte, string, error) {
	if name != "" && s.go2rtc != nil {
		data, contentType, err := s.go2rtc.Frame(ctx, name)
		if err == nil {
			return data, contentType, nil
		}
		log.Printf("go2rtc snapshot for %s failed, falling back to ffmpeg: %v", name, err)
	}

	if rtspURL == "" {
		return nil, "", fmt.Errorf("%w: no stream URL for snapshot", domain.ErrValidation)
	}

	data, err := s.ffmpegFrame(ctx, rtspURL)
	if err != nil {
		return nil, "", fmt.Errorf("%w: snapshot via ffmpeg: %v", domain.ErrTransport, err)
	}
	return data, "image/jpeg", nil
}

// ffmpegFrame pulls exactly one frame over TCP and reads it back from
// a temp file. TCP transport avoids the UDP packet loss that makes
// first frames unreliable on busy networks.
func (s *Snapshotter) ffmpegFrame(ctx context.Context, rtspURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	dir, err := os.MkdirTemp("", "snapshot-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)
	out := filepath.Join(dir, "frame.jpg")

	cmd := exec.CommandContext(ctx, s.ffmpeg,
		"-rtsp_transport", "tcp",
		"-i", rtspURL,
		"-frames:v", "1",
		"-q:v", "2",
		"-y", out,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %v: %s", err, tail(output, 200))
	}
	return os.ReadFile(out)
}

func tail(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[len(b)-n:])
}
