package frigate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/lich2000117/Frigate-SimpleUI/internal/domain"
)

// Go2RTC is the media-routing sidecar client, used for on-demand frames
// when testing streams and serving snapshots.
type Go2RTC struct {
	http *resty.Client
}

// NewGo2RTC builds a client for the go2rtc base URL, e.g.
// http://192.168.199.3:1984.
func NewGo2RTC(baseURL string, timeout time.Duration) *Go2RTC {
	r := resty.New()
	r.SetBaseURL(strings.TrimRight(baseURL, "/"))
	r.SetTimeout(timeout)
	return &Go2RTC{http: r}
}

// Frame fetches a single JPEG frame for a configured stream source.
// Returns the image bytes and content type.
func (g *Go2RTC) Frame(ctx context.Context, src string) ([]byte, string, error) {
	resp, err := g.http.R().
		SetContext(ctx).
		SetQueryParam("src", src).
		Get("/api/frame.jpeg")
	if err != nil {
		return nil, "", fmt.Errorf("%w: go2rtc frame: %v", domain.ErrTransport, err)
	}
	contentType := resp.Header().Get("Content-Type")
	if resp.IsError() || !strings.Contains(contentType, "image") {
		return nil, "", fmt.Errorf("%w: go2rtc returned no image for %q (status %d)", domain.ErrTransport, src, resp.StatusCode())
	}
	return resp.Body(), contentType, nil
}
