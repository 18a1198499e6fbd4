package frigate

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lich2000117/Frigate-SimpleUI/internal/domain"
)

func TestRawConfig(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/config/raw", r.URL.Path)
		assert.Equal(t, "text/plain", r.Header.Get("Accept"))
		w.Write([]byte("cameras: {}\n"))
	}))
	defer ts.Close()

	raw, err := NewClient(ts.URL, time.Second).RawConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cameras: {}\n", string(raw))
}

func TestRawConfigError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL, time.Second).RawConfig(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTransport))
}

func TestFilteredConfig(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/config", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model": {"labelmap": {"0": "person"}}}`))
	}))
	defer ts.Close()

	cfg, err := NewClient(ts.URL, time.Second).FilteredConfig(context.Background())
	require.NoError(t, err)
	model, ok := cfg["model"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, model, "labelmap")
}

func TestSaveConfig(t *testing.T) {
	t.Run("passes option and body", func(t *testing.T) {
		var gotOption string
		var gotBody []byte
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/config/save", r.URL.Path)
			gotOption = r.URL.Query().Get("save_option")
			gotBody, _ = io.ReadAll(r.Body)
			w.Write([]byte(`{"success": true, "message": "ok"}`))
		}))
		defer ts.Close()

		err := NewClient(ts.URL, time.Second).SaveConfig(context.Background(), []byte("cameras: {}"), SaveAndRestart)
		require.NoError(t, err)
		assert.Equal(t, "restart", gotOption)
		assert.Equal(t, "cameras: {}", string(gotBody))
	})

	t.Run("remote rejection is a validation error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"success": false, "message": "cameras.x: invalid"}`))
		}))
		defer ts.Close()

		err := NewClient(ts.URL, time.Second).SaveConfig(context.Background(), []byte("bad"), SaveOnly)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrValidation))
		assert.Contains(t, err.Error(), "cameras.x: invalid")
	})
}

func TestPing(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/", r.URL.Path)
		w.Write([]byte("Frigate is running"))
	}))
	defer ts.Close()

	assert.NoError(t, NewClient(ts.URL, time.Second).Ping(context.Background()))
}

func TestGo2RTCFrame(t *testing.T) {
	t.Run("returns image bytes", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/frame.jpeg", r.URL.Path)
			assert.Equal(t, "front_door", r.URL.Query().Get("src"))
			w.Header().Set("Content-Type", "image/jpeg")
			w.Write([]byte{0xff, 0xd8, 0xff})
		}))
		defer ts.Close()

		data, contentType, err := NewGo2RTC(ts.URL, time.Second).Frame(context.Background(), "front_door")
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", contentType)
		assert.Equal(t, []byte{0xff, 0xd8, 0xff}, data)
	})

	t.Run("non-image response is an error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("stream not found"))
		}))
		defer ts.Close()

		_, _, err := NewGo2RTC(ts.URL, time.Second).Frame(context.Background(), "nope")
		assert.Error(t, err)
	})
}
