package hub

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lich2000117/Frigate-SimpleUI/internal/service"
)

func TestFormatEvent(t *testing.T) {
	msg, err := formatEvent(service.Event{
		Type:    service.EventCameraUpdated,
		Payload: map[string]string{"name": "front_door"},
	})
	require.NoError(t, err)
	assert.Equal(t, "event: camera-updated\ndata: {\"name\":\"front_door\"}\n\n", string(msg))
}

func TestBroadcastDelivery(t *testing.T) {
	h := New()
	go h.Run()

	ts := httptest.NewServer(h)
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	h.Broadcast(service.Event{Type: service.EventConfigSaved, Payload: map[string]bool{"restart": false}})

	scanner := bufio.NewScanner(resp.Body)
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for broadcast")
		default:
		}
		require.True(t, scanner.Scan())
		line := scanner.Text()
		if strings.HasPrefix(line, "event: ") {
			assert.Equal(t, "event: config-saved", line)
			require.True(t, scanner.Scan())
			assert.Equal(t, `data: {"restart":false}`, scanner.Text())
			return
		}
	}
}
