package adapter

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lich2000117/Frigate-SimpleUI/internal/domain"
)

const probeMatchEnvelope = `<?xml version="1.0" encoding="UTF-8"?>
<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://www.w3.org/2003/05/soap-envelope"
    xmlns:d="http://schemas.xmlsoap.org/ws/2005/04/discovery"
    xmlns:dn="http://www.onvif.org/ver10/network/wsdl">
  <SOAP-ENV:Body>
    <d:ProbeMatches>
      <d:ProbeMatch>
        <d:Types>dn:NetworkVideoTransmitter</d:Types>
        <d:Scopes>onvif://www.onvif.org/type/video_encoder onvif://www.onvif.org/name/HIKVISION%20DS-2CD2043 onvif://www.onvif.org/hardware/DS-2CD2043G0-I</d:Scopes>
        <d:XAddrs>http://10.0.0.5:8000/onvif/device_service http://[fe80::1]:8000/onvif/device_service</d:XAddrs>
      </d:ProbeMatch>
    </d:ProbeMatches>
  </SOAP-ENV:Body>
</SOAP-ENV:Envelope>`

func TestParseProbeMatches(t *testing.T) {
	t.Run("extracts device from envelope", func(t *testing.T) {
		devices := parseProbeMatches(probeMatchEnvelope)
		require.Len(t, devices, 1)
		dev := devices[0]
		assert.Equal(t, "10.0.0.5", dev.IP)
		assert.Equal(t, "http://10.0.0.5:8000/onvif/device_service", dev.OnvifURL)
		assert.Equal(t, "HIKVISION", dev.Manufacturer)
		assert.Equal(t, "DS-2CD2043G0-I", dev.Model)
	})

	t.Run("garbage input yields nothing", func(t *testing.T) {
		assert.Empty(t, parseProbeMatches("not xml at all"))
	})

	t.Run("match without xaddrs is dropped", func(t *testing.T) {
		env := `<e><Body><ProbeMatches><ProbeMatch><Scopes>x</Scopes></ProbeMatch></ProbeMatches></Body></e>`
		assert.Empty(t, parseProbeMatches(env))
	})
}

func TestScopeValue(t *testing.T) {
	assert.Equal(t, "HIKVISION", scopeValue("onvif://www.onvif.org/name/HIKVISION%20DS-2CD2043"))
	assert.Equal(t, "Dahua", scopeValue("onvif://www.onvif.org/name/Dahua"))
	assert.Equal(t, "IPC-HDW2431T", scopeValue("onvif://www.onvif.org/hardware/IPC-HDW2431T"))
}

func TestHostFromURL(t *testing.T) {
	assert.Equal(t, "10.0.0.5", hostFromURL("http://10.0.0.5:8000/onvif/device_service"))
	assert.Equal(t, "10.0.0.5", hostFromURL("http://10.0.0.5/onvif/device_service"))
	assert.Equal(t, "10.0.0.5", hostFromURL("10.0.0.5:80"))
}

func TestScanCaching(t *testing.T) {
	var sweeps atomic.Int32
	d := &Discovery{cache: cache.New(scanCacheTTL, time.Minute)}
	d.sweep = func(ctx context.Context) []domain.DiscoveredDevice {
		sweeps.Add(1)
		return []domain.DiscoveredDevice{{IP: "10.0.0.5"}}
	}

	first := d.Scan(context.Background())
	second := d.Scan(context.Background())

	assert.Equal(t, int32(1), sweeps.Load(), "second scan inside the TTL must hit the cache")
	assert.Equal(t, first, second)
}

func TestScanCacheExpiry(t *testing.T) {
	var sweeps atomic.Int32
	d := &Discovery{cache: cache.New(10*time.Millisecond, time.Minute)}
	d.sweep = func(ctx context.Context) []domain.DiscoveredDevice {
		sweeps.Add(1)
		return nil
	}

	d.Scan(context.Background())
	time.Sleep(30 * time.Millisecond)
	d.Scan(context.Background())

	assert.Equal(t, int32(2), sweeps.Load())
}
