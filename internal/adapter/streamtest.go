package adapter

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/deepch/vdk/format/rtspv2"

	"github.com/lich2000117/Frigate-SimpleUI/internal/frigate"
)

const rtspDialTimeout = 3 * time.Second

// TestResult reports the outcome of a stream reachability check.
type TestResult struct {
	OK      bool   `json:"ok"`
	Method  string `json:"method"`
	Message string `json:"message"`
}

// StreamTester checks whether a camera's stream is actually reachable.
// It asks go2rtc for a frame first, since that exercises the exact
// path the recorder uses, and falls back to a direct RTSP handshake
// when go2rtc has not picked the stream up yet.
type StreamTester struct {
	go2rtc *frigate.Go2RTC
}

func NewStreamTester(go2rtc *frigate.Go2RTC) *StreamTester {
	return &StreamTester{go2rtc: go2rtc}
}

// Test probes the named go2rtc stream, then the raw RTSP URL.
func (t *StreamTester) Test(ctx context.Context, name, rtspURL string) TestResult {
	if name != "" && t.go2rtc != nil {
		if _, _, err := t.go2rtc.Frame(ctx, name); err == nil {
			return TestResult{OK: true, Method: "go2rtc", Message: "stream is live via go2rtc"}
		} else {
			log.Printf("go2rtc frame probe for %s failed, trying direct RTSP: %v", name, err)
		}
	}

	if rtspURL == "" {
		return TestResult{OK: false, Method: "none", Message: "no stream URL to test"}
	}

	if err := dialRTSP(rtspURL); err != nil {
		return TestResult{OK: false, Method: "rtsp", Message: fmt.Sprintf("RTSP handshake failed: %v", err)}
	}
	return TestResult{OK: true, Method: "rtsp", Message: "RTSP handshake succeeded"}
}

// dialRTSP performs a DESCRIBE/SETUP handshake and disconnects. A
// successful handshake is enough to call the stream reachable.
func dialRTSP(rtspURL string) error {
	client, err := rtspv2.Dial(rtspv2.RTSPClientOptions{
		URL:              rtspURL,
		DisableAudio:     true,
		DialTimeout:      rtspDialTimeout,
		ReadWriteTimeout: rtspDialTimeout,
	})
	if err != nil {
		return err
	}
	client.Close()
	return nil
}
