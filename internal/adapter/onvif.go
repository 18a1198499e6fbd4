package adapter

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	goonvif "github.com/use-go/onvif"
	"github.com/use-go/onvif/media"
	sdkmedia "github.com/use-go/onvif/sdk/media"
	xonvif "github.com/use-go/onvif/xsd/onvif"

	"github.com/lich2000117/Frigate-SimpleUI/internal/domain"
)

const soapTimeout = 5 * time.Second

// deviceDialer opens an authenticated ONVIF session. Injectable for
// tests.
type deviceDialer func(xaddr, username, password string) (onvifDevice, error)

// onvifDevice is the slice of the ONVIF SDK the negotiator needs.
type onvifDevice interface {
	getProfiles(ctx context.Context) ([]xonvif.Profile, error)
	getStreamURI(ctx context.Context, token xonvif.ReferenceToken) (string, error)
}

// Negotiator talks SOAP to a discovered device and works out which
// RTSP streams it offers and what the encoders can do.
type Negotiator struct {
	dial deviceDialer
}

// NewNegotiator creates a negotiator backed by the real ONVIF SDK.
func NewNegotiator() *Negotiator {
	return &Negotiator{dial: dialDevice}
}

// Negotiate queries a device's media profiles and returns the stream
// URLs plus accumulated capabilities. The first profile is the main
// stream and the second, when distinct, the sub-stream.
func (n *Negotiator) Negotiate(ctx context.Context, serviceURL, username, password string) (domain.DeviceStreams, domain.StreamCapabilities, error) {
	var streams domain.DeviceStreams
	var caps domain.StreamCapabilities

	xaddr, err := xaddrFromService(serviceURL)
	if err != nil {
		return streams, caps, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	dev, err := n.dial(xaddr, username, password)
	if err != nil {
		return streams, caps, fmt.Errorf("%w: connect to %s: %v", domain.ErrTransport, xaddr, err)
	}

	profiles, err := dev.getProfiles(ctx)
	if err != nil {
		return streams, caps, fmt.Errorf("%w: get profiles from %s: %v", domain.ErrTransport, xaddr, err)
	}
	if len(profiles) == 0 {
		return streams, caps, fmt.Errorf("%w: device %s reports no media profiles", domain.ErrTransport, xaddr)
	}

	for _, p := range profiles {
		accumulate(&caps, p)
	}

	mainURI, err := dev.getStreamURI(ctx, profiles[0].Token)
	if err != nil {
		return streams, caps, fmt.Errorf("%w: get stream uri from %s: %v", domain.ErrTransport, xaddr, err)
	}
	streams.MainStream = injectCredentials(mainURI, username, password)

	if len(profiles) > 1 {
		subURI, err := dev.getStreamURI(ctx, profiles[1].Token)
		if err != nil {
			// A broken second profile is common on cheap cameras.
			// Carry on with the main stream alone.
			log.Printf("Warning: sub-stream negotiation failed for %s: %v", xaddr, err)
		} else if subURI != mainURI {
			streams.SubStream = injectCredentials(subURI, username, password)
		}
	}

	log.Printf("Negotiated %s: main=%t sub=%t encoders=%v resolutions=%d",
		xaddr, streams.MainStream != "", streams.SubStream != "",
		caps.VideoEncoders, len(caps.Resolutions))
	return streams, caps, nil
}

// accumulate folds one profile's encoder configuration into the
// capability summary, keeping first-seen order and dropping duplicates.
func accumulate(caps *domain.StreamCapabilities, p xonvif.Profile) {
	if enc := string(p.VideoEncoderConfiguration.Encoding); enc != "" {
		caps.VideoEncoders = appendUnique(caps.VideoEncoders, enc)
		res := domain.Resolution{
			Width:  int(p.VideoEncoderConfiguration.Resolution.Width),
			Height: int(p.VideoEncoderConfiguration.Resolution.Height),
		}
		if res.Width > 0 && res.Height > 0 && !containsResolution(caps.Resolutions, res) {
			caps.Resolutions = append(caps.Resolutions, res)
		}
	}
	if enc := string(p.AudioEncoderConfiguration.Encoding); enc != "" {
		caps.AudioEncoders = appendUnique(caps.AudioEncoders, enc)
	}
}

// injectCredentials embeds the username and password into an rtsp://
// URI. URIs without credentials work on open cameras, so an empty
// username leaves the URI untouched.
func injectCredentials(uri, username, password string) string {
	if username == "" || !strings.HasPrefix(uri, "rtsp://") {
		return uri
	}
	rest := strings.TrimPrefix(uri, "rtsp://")
	return "rtsp://" + username + ":" + password + "@" + rest
}

// xaddrFromService reduces a device service URL to the host:port the
// SDK expects. Bare host values get a scheme so parsing works.
func xaddrFromService(serviceURL string) (string, error) {
	raw := serviceURL
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("bad service url %q", serviceURL)
	}
	return u.Host, nil
}

func appendUnique(list []string, v string) []string {
	for _, e := range list {
		if e == v {
			return list
		}
	}
	return append(list, v)
}

func containsResolution(list []domain.Resolution, r domain.Resolution) bool {
	for _, e := range list {
		if e == r {
			return true
		}
	}
	return false
}

// sdkDevice adapts the real ONVIF SDK to the onvifDevice interface.
type sdkDevice struct {
	dev *goonvif.Device
}

func dialDevice(xaddr, username, password string) (onvifDevice, error) {
	dev, err := goonvif.NewDevice(goonvif.DeviceParams{
		Xaddr:      xaddr,
		Username:   username,
		Password:   password,
		HttpClient: &http.Client{Timeout: soapTimeout},
	})
	if err != nil {
		return nil, err
	}
	return &sdkDevice{dev: dev}, nil
}

func (s *sdkDevice) getProfiles(ctx context.Context) ([]xonvif.Profile, error) {
	resp, err := sdkmedia.Call_GetProfiles(ctx, s.dev, media.GetProfiles{})
	if err != nil {
		return nil, err
	}
	return resp.Profiles, nil
}

func (s *sdkDevice) getStreamURI(ctx context.Context, token xonvif.ReferenceToken) (string, error) {
	resp, err := sdkmedia.Call_GetStreamUri(ctx, s.dev, media.GetStreamUri{
		StreamSetup: xonvif.StreamSetup{
			Stream:    xonvif.StreamType("RTP-Unicast"),
			Transport: xonvif.Transport{Protocol: "RTSP"},
		},
		ProfileToken: token,
	})
	if err != nil {
		return "", err
	}
	return string(resp.MediaUri.Uri), nil
}
