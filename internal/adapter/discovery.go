package adapter

import (
	"context"
	"log"
	"net"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/beevik/etree"
	"github.com/gofrs/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/use-go/onvif/ws-discovery"
	"golang.org/x/sync/singleflight"

	"github.com/lich2000117/Frigate-SimpleUI/internal/domain"
)

const (
	// WS-Discovery multicast endpoint (ONVIF Core spec).
	discoveryAddr = "239.255.255.250:3702"

	discoveryTimeout = 5 * time.Second
	scanCacheTTL     = 15 * time.Second
	scanCacheKey     = "scan-all"
)

// probeFunc sends a WS-Discovery probe on one interface and returns the
// raw SOAP ProbeMatch envelopes received within the window. Injectable
// for tests.
type probeFunc func(ctx context.Context, iface net.Interface) ([]string, error)

// Discovery finds ONVIF cameras on the local network via WS-Discovery
// multicast. Concurrent scans coalesce into a single probe sweep and
// results are cached briefly so UI refreshes do not re-flood the
// network.
type Discovery struct {
	probe probeFunc
	sweep func(ctx context.Context) []domain.DiscoveredDevice
	group singleflight.Group
	cache *cache.Cache
}

// NewDiscovery creates a discovery adapter using real multicast probes.
func NewDiscovery() *Discovery {
	d := &Discovery{
		cache: cache.New(scanCacheTTL, time.Minute),
	}
	d.probe = d.probeInterface
	d.sweep = d.probeAll
	return d
}

// Scan probes every eligible interface and returns deduplicated
// devices sorted by IP. Scanning is best-effort: interface failures
// are logged and skipped, and a fully failed sweep yields an empty
// result rather than an error.
func (d *Discovery) Scan(ctx context.Context) []domain.DiscoveredDevice {
	v, _, _ := d.group.Do(scanCacheKey, func() (interface{}, error) {
		if cached, ok := d.cache.Get(scanCacheKey); ok {
			log.Printf("Returning cached scan results")
			return cached, nil
		}
		devices := d.sweep(ctx)
		d.cache.Set(scanCacheKey, devices, cache.DefaultExpiration)
		return devices, nil
	})
	devices, _ := v.([]domain.DiscoveredDevice)
	return devices
}

// Interfaces lists the network interfaces a scan would probe, for
// display in the UI.
func (d *Discovery) Interfaces() []domain.NetworkInterface {
	ifaces, err := net.Interfaces()
	if err != nil {
		log.Printf("Warning: could not enumerate interfaces: %v", err)
		return nil
	}
	var out []domain.NetworkInterface
	for _, iface := range ifaces {
		ip, ok := interfaceIPv4(iface)
		if !ok {
			continue
		}
		out = append(out, domain.NetworkInterface{
			Name:     iface.Name,
			IP:       ip.String(),
			Eligible: eligibleInterface(iface),
		})
	}
	return out
}

func (d *Discovery) probeAll(ctx context.Context) []domain.DiscoveredDevice {
	ifaces, err := net.Interfaces()
	if err != nil {
		log.Printf("Warning: could not enumerate interfaces for scan: %v", err)
		return []domain.DiscoveredDevice{}
	}

	seen := make(map[string]domain.DiscoveredDevice)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, iface := range ifaces {
		if !eligibleInterface(iface) {
			continue
		}
		wg.Add(1)
		go func(iface net.Interface) {
			defer wg.Done()
			envelopes, err := d.probe(ctx, iface)
			if err != nil {
				log.Printf("Warning: probe on %s failed: %v", iface.Name, err)
				return
			}
			for _, env := range envelopes {
				for _, dev := range parseProbeMatches(env) {
					mu.Lock()
					if _, dup := seen[dev.IP]; !dup {
						seen[dev.IP] = dev
					}
					mu.Unlock()
				}
			}
		}(iface)
	}
	wg.Wait()

	devices := make([]domain.DiscoveredDevice, 0, len(seen))
	for _, dev := range seen {
		devices = append(devices, dev)
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].IP < devices[j].IP })

	log.Printf("Discovery sweep found %d ONVIF devices", len(devices))
	return devices
}

// probeInterface sends one WS-Discovery probe from the interface's
// IPv4 address and collects responses until the window closes.
func (d *Discovery) probeInterface(ctx context.Context, iface net.Interface) ([]string, error) {
	localIP, ok := interfaceIPv4(iface)
	if !ok {
		return nil, nil
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	msg := wsdiscovery.BuildProbeMessage(id.String(), nil,
		[]string{"dn:NetworkVideoTransmitter"},
		map[string]string{"dn": "http://www.onvif.org/ver10/network/wsdl"})

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: localIP})
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	dst, err := net.ResolveUDPAddr("udp4", discoveryAddr)
	if err != nil {
		return nil, err
	}
	if _, err := conn.WriteToUDP([]byte(msg.String()), dst); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(discoveryTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	conn.SetReadDeadline(deadline)

	var envelopes []string
	buf := make([]byte, 64*1024)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			// Deadline expiry ends the collection window.
			break
		}
		envelopes = append(envelopes, string(buf[:n]))
	}
	return envelopes, nil
}

// parseProbeMatches extracts devices from a ProbeMatches SOAP envelope.
// Matching is by local element name so namespace prefixes do not
// matter.
func parseProbeMatches(envelope string) []domain.DiscoveredDevice {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(envelope); err != nil {
		log.Printf("Warning: unparseable probe response: %v", err)
		return nil
	}

	var devices []domain.DiscoveredDevice
	for _, match := range elementsByLocalName(doc.Root(), "ProbeMatch") {
		dev, ok := deviceFromMatch(match)
		if !ok {
			continue
		}
		devices = append(devices, dev)
	}
	return devices
}

func deviceFromMatch(match *etree.Element) (domain.DiscoveredDevice, bool) {
	var xaddrs, scopes string
	for _, el := range elementsByLocalName(match, "XAddrs") {
		xaddrs = strings.TrimSpace(el.Text())
		break
	}
	for _, el := range elementsByLocalName(match, "Scopes") {
		scopes = strings.TrimSpace(el.Text())
		break
	}
	if xaddrs == "" {
		return domain.DiscoveredDevice{}, false
	}

	// Devices may advertise several XAddrs. The first is the primary
	// device service endpoint.
	serviceURL := strings.Fields(xaddrs)[0]
	ip := hostFromURL(serviceURL)
	if ip == "" {
		return domain.DiscoveredDevice{}, false
	}

	dev := domain.DiscoveredDevice{
		IP:       ip,
		OnvifURL: serviceURL,
	}
	for _, scope := range strings.Fields(scopes) {
		switch {
		case strings.Contains(scope, "onvif://www.onvif.org/name/"):
			dev.Manufacturer = scopeValue(scope)
		case strings.Contains(scope, "onvif://www.onvif.org/hardware/"):
			dev.Model = scopeValue(scope)
		}
	}
	return dev, true
}

// scopeValue takes the last path segment of an ONVIF scope URI and
// strips a URL-encoded suffix, e.g.
// onvif://www.onvif.org/name/HIKVISION%20DS-2CD2043 yields HIKVISION.
func scopeValue(scope string) string {
	seg := scope[strings.LastIndex(scope, "/")+1:]
	if idx := strings.Index(seg, "%20"); idx >= 0 {
		seg = seg[:idx]
	}
	return seg
}

func elementsByLocalName(root *etree.Element, name string) []*etree.Element {
	if root == nil {
		return nil
	}
	var out []*etree.Element
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		if el.Tag == name {
			out = append(out, el)
		}
		for _, child := range el.ChildElements() {
			walk(child)
		}
	}
	walk(root)
	return out
}

func hostFromURL(rawURL string) string {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(rawURL, "https://"), "http://")
	if idx := strings.IndexAny(trimmed, ":/"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return trimmed
}

// eligibleInterface reports whether an interface should be probed: up,
// multicast-capable, not loopback, and holding an IPv4 address.
func eligibleInterface(iface net.Interface) bool {
	if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
		return false
	}
	if iface.Flags&net.FlagMulticast == 0 {
		return false
	}
	_, ok := interfaceIPv4(iface)
	return ok
}

func interfaceIPv4(iface net.Interface) (net.IP, bool) {
	addrs, err := iface.Addrs()
	if err != nil {
		return nil, false
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4, true
		}
	}
	return nil, false
}
