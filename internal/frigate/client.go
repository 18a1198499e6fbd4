// Package frigate talks HTTP to the NVR and its go2rtc sidecar. The
// NVR owns the authoritative configuration; this package only moves
// documents and frames, it never interprets them.
package frigate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/lich2000117/Frigate-SimpleUI/internal/domain"
)

// SaveOption selects whether the NVR restarts after accepting a config.
type SaveOption string

const (
	SaveOnly       SaveOption = "save"
	SaveAndRestart SaveOption = "restart"
)

// Client is the remote NVR API client.
type Client struct {
	http *resty.Client
}

// NewClient builds a client for the NVR base URL, e.g.
// http://192.168.199.3:5000.
func NewClient(baseURL string, timeout time.Duration) *Client {
	r := resty.New()
	r.SetBaseURL(strings.TrimRight(baseURL, "/"))
	r.SetTimeout(timeout)
	return &Client{http: r}
}

// saveResponse is the NVR's envelope for config writes.
type saveResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RawConfig fetches the authoritative configuration as raw YAML text.
func (c *Client) RawConfig(ctx context.Context) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "text/plain").
		Get("/api/config/raw")
	if err != nil {
		return nil, fmt.Errorf("%w: fetch raw config: %v", domain.ErrTransport, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: fetch raw config: status %d", domain.ErrTransport, resp.StatusCode())
	}
	return resp.Body(), nil
}

// FilteredConfig fetches the access-filtered configuration view. Only
// the detector label vocabulary is read from it.
func (c *Client) FilteredConfig(ctx context.Context) (map[string]any, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get("/api/config")
	if err != nil {
		return nil, fmt.Errorf("%w: fetch filtered config: %v", domain.ErrTransport, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: fetch filtered config: status %d", domain.ErrTransport, resp.StatusCode())
	}
	var out map[string]any
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("%w: filtered config: %v", domain.ErrParse, err)
	}
	return out, nil
}

// SaveConfig pushes a rendered document to the NVR as raw text.
func (c *Client) SaveConfig(ctx context.Context, doc []byte, opt SaveOption) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/plain").
		SetHeader("Accept", "application/json").
		SetQueryParam("save_option", string(opt)).
		SetBody(doc).
		Post("/api/config/save")
	if err != nil {
		return fmt.Errorf("%w: save config: %v", domain.ErrTransport, err)
	}

	var saved saveResponse
	if err := json.Unmarshal(resp.Body(), &saved); err == nil && saved.Message != "" {
		if !saved.Success {
			return fmt.Errorf("%w: remote rejected config: %s", domain.ErrValidation, saved.Message)
		}
		return nil
	}
	if resp.IsError() {
		return fmt.Errorf("%w: save config: status %d", domain.ErrTransport, resp.StatusCode())
	}
	return nil
}

// Ping checks that the NVR answers on its root API route.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/api/")
	if err != nil {
		return fmt.Errorf("%w: nvr unreachable: %v", domain.ErrTransport, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: nvr status %d", domain.ErrTransport, resp.StatusCode())
	}
	return nil
}

// BaseURL returns the configured NVR endpoint.
func (c *Client) BaseURL() string {
	return c.http.BaseURL
}
