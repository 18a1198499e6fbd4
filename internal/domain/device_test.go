package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStreamSettings(t *testing.T) {
	t.Run("h264 device needs no transcoding", func(t *testing.T) {
		s := DeriveStreamSettings(StreamCapabilities{
			VideoEncoders: []string{"H264"},
			AudioEncoders: []string{"AAC"},
		})
		assert.False(t, s.ForceH264)
		assert.True(t, s.EnableAac)
		assert.True(t, s.EnableOpus)
	})

	t.Run("h265-only device forces transcoding", func(t *testing.T) {
		s := DeriveStreamSettings(StreamCapabilities{VideoEncoders: []string{"H265"}})
		assert.True(t, s.ForceH264)
		assert.False(t, s.EnableAac)
		assert.False(t, s.EnableOpus)
	})

	t.Run("no advertised encoders stays passive", func(t *testing.T) {
		s := DeriveStreamSettings(StreamCapabilities{})
		assert.False(t, s.ForceH264)
		assert.Equal(t, DefaultDetectWidth, s.DetectWidth)
		assert.Equal(t, DefaultDetectHeight, s.DetectHeight)
	})

	t.Run("g711 audio enables opus but not aac", func(t *testing.T) {
		s := DeriveStreamSettings(StreamCapabilities{
			VideoEncoders: []string{"H264"},
			AudioEncoders: []string{"G711"},
		})
		assert.False(t, s.EnableAac)
		assert.True(t, s.EnableOpus)
	})
}

func TestFitDetect(t *testing.T) {
	cases := []struct {
		name  string
		in    Resolution
		wantW int
		wantH int
	}{
		{"4k lands on 1080p", Resolution{3840, 2160}, 1920, 1080},
		{"portrait 4k anchors to height", Resolution{2160, 3840}, 608, 1080},
		{"already small passes through", Resolution{1280, 720}, 1280, 720},
		{"exact bound passes through", Resolution{1920, 1080}, 1920, 1080},
		{"2k downscales proportionally", Resolution{2560, 1440}, 1920, 1080},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, h := FitDetect(tc.in)
			assert.Equal(t, tc.wantW, w)
			assert.Equal(t, tc.wantH, h)
		})
	}

	t.Run("degenerate resolution uses defaults", func(t *testing.T) {
		w, h := FitDetect(Resolution{0, 0})
		assert.Equal(t, DefaultDetectWidth, w)
		assert.Equal(t, DefaultDetectHeight, h)
	})
}

func TestBestResolution(t *testing.T) {
	t.Run("largest area wins", func(t *testing.T) {
		s := DeriveStreamSettings(StreamCapabilities{
			VideoEncoders: []string{"H264"},
			Resolutions:   []Resolution{{640, 480}, {3840, 2160}, {1920, 1080}},
		})
		assert.Equal(t, 1920, s.DetectWidth)
		assert.Equal(t, 1080, s.DetectHeight)
	})

	t.Run("equal area tie-breaks on width", func(t *testing.T) {
		r, ok := bestResolution([]Resolution{{1080, 1920}, {1920, 1080}})
		assert.True(t, ok)
		assert.Equal(t, Resolution{1920, 1080}, r)
	})
}
