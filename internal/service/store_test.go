package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lich2000117/Frigate-SimpleUI/internal/codec"
	"github.com/lich2000117/Frigate-SimpleUI/internal/domain"
)

func newTestService() *ConfigService {
	return NewConfigService(nil, NewEventBus(), codec.DefaultSkeleton(), domain.DetectorDevicePCI)
}

func validCamera(name string) domain.CameraRecord {
	rec := domain.NewCameraRecord(name)
	rec.RtspURL = "rtsp://10.0.0.5/" + name
	return rec
}

func TestUpsert(t *testing.T) {
	t.Run("adds and lists in insertion order", func(t *testing.T) {
		svc := newTestService()
		require.NoError(t, svc.Upsert(validCamera("front_door")))
		require.NoError(t, svc.Upsert(validCamera("garage")))

		list := svc.List()
		require.Len(t, list, 2)
		assert.Equal(t, "front_door", list[0].Name)
		assert.Equal(t, "garage", list[1].Name)
	})

	t.Run("merge by name is case-insensitive and keeps stored spelling", func(t *testing.T) {
		svc := newTestService()
		require.NoError(t, svc.Upsert(validCamera("Front_Door")))

		update := validCamera("front_door")
		update.DetectFPS = 10
		require.NoError(t, svc.Upsert(update))

		list := svc.List()
		require.Len(t, list, 1)
		assert.Equal(t, "Front_Door", list[0].Name)
		assert.Equal(t, 10, list[0].DetectFPS)
	})

	t.Run("invalid name is rejected", func(t *testing.T) {
		svc := newTestService()
		err := svc.Upsert(validCamera("front door"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})

	t.Run("missing stream url is rejected", func(t *testing.T) {
		svc := newTestService()
		err := svc.Upsert(domain.NewCameraRecord("cam"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})

	t.Run("custom url clears rtsp fields on store", func(t *testing.T) {
		svc := newTestService()
		rec := validCamera("cam")
		rec.SubStreamURL = "rtsp://10.0.0.5/sub"
		rec.CustomCameraURL = "http://10.0.0.5/mjpeg"
		require.NoError(t, svc.Upsert(rec))

		stored, ok := svc.Find("cam")
		require.True(t, ok)
		assert.Empty(t, stored.RtspURL)
		assert.Empty(t, stored.SubStreamURL)
		assert.Equal(t, "http://10.0.0.5/mjpeg", stored.CustomCameraURL)
	})
}

func TestFindAndRemove(t *testing.T) {
	svc := newTestService()
	require.NoError(t, svc.Upsert(validCamera("front_door")))

	t.Run("find is case-insensitive", func(t *testing.T) {
		_, ok := svc.Find("FRONT_DOOR")
		assert.True(t, ok)
		_, ok = svc.Find("back_door")
		assert.False(t, ok)
	})

	t.Run("find returns a copy", func(t *testing.T) {
		rec, ok := svc.Find("front_door")
		require.True(t, ok)
		rec.ObjectsToTrack[0] = "mutated"
		fresh, _ := svc.Find("front_door")
		assert.NotEqual(t, "mutated", fresh.ObjectsToTrack[0])
	})

	t.Run("remove is case-insensitive", func(t *testing.T) {
		assert.True(t, svc.Remove("Front_Door"))
		assert.False(t, svc.Remove("Front_Door"))
		assert.Empty(t, svc.List())
	})
}

func TestDetectorConfig(t *testing.T) {
	svc := newTestService()

	t.Run("starts disabled with configured device", func(t *testing.T) {
		cfg := svc.DetectorConfig()
		assert.False(t, cfg.Enabled)
		assert.Equal(t, domain.DetectorDevicePCI, cfg.Device)
	})

	t.Run("accepts valid devices", func(t *testing.T) {
		require.NoError(t, svc.SetDetectorConfig(domain.DetectorConfig{Enabled: true, Device: domain.DetectorDeviceUSB}))
		cfg := svc.DetectorConfig()
		assert.True(t, cfg.Enabled)
		assert.Equal(t, domain.DetectorDeviceUSB, cfg.Device)
	})

	t.Run("rejects unknown devices", func(t *testing.T) {
		err := svc.SetDetectorConfig(domain.DetectorConfig{Enabled: true, Device: "quantum"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})
}

func TestRenderYAMLFromStore(t *testing.T) {
	svc := newTestService()
	require.NoError(t, svc.Upsert(validCamera("front_door")))

	out, err := svc.RenderYAML()
	require.NoError(t, err)
	assert.Contains(t, string(out), "front_door:")
	assert.Contains(t, string(out), "version: 0.14")
}

func TestEventsOnMutation(t *testing.T) {
	svc := newTestService()
	ch := make(chan Event, 8)
	svc.bus.Subscribe(ch)

	require.NoError(t, svc.Upsert(validCamera("front_door")))
	evt := <-ch
	assert.Equal(t, EventCameraUpdated, evt.Type)

	svc.Remove("front_door")
	evt = <-ch
	assert.Equal(t, EventCameraRemoved, evt.Type)
}
