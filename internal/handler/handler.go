package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/lich2000117/Frigate-SimpleUI/internal/adapter"
	"github.com/lich2000117/Frigate-SimpleUI/internal/domain"
	"github.com/lich2000117/Frigate-SimpleUI/internal/service"
)

// NetworkScanner finds ONVIF devices on the local network
type NetworkScanner interface {
	Scan(ctx context.Context) []domain.DiscoveredDevice
	Interfaces() []domain.NetworkInterface
}

// StreamNegotiator queries a device for its streams and capabilities
type StreamNegotiator interface {
	Negotiate(ctx context.Context, serviceURL, username, password string) (domain.DeviceStreams, domain.StreamCapabilities, error)
}

// StreamTester checks whether a stream is reachable
type StreamTester interface {
	Test(ctx context.Context, name, rtspURL string) adapter.TestResult
}

// Snapshotter grabs a preview frame from a camera
type Snapshotter interface {
	Snapshot(ctx context.Context, name, rtspURL string) ([]byte, string, error)
}

// Pinger checks whether the recorder is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// API handles all HTTP API requests
type API struct {
	svc        *service.ConfigService
	scanner    NetworkScanner
	negotiator StreamNegotiator
	tester     StreamTester
	snapshots  Snapshotter
	recorder   Pinger
}

// NewAPI creates the API handler
func NewAPI(svc *service.ConfigService) *API {
	return &API{svc: svc}
}

// SetScanner sets the network scanner
func (a *API) SetScanner(s NetworkScanner) { a.scanner = s }

// SetNegotiator sets the ONVIF stream negotiator
func (a *API) SetNegotiator(n StreamNegotiator) { a.negotiator = n }

// SetStreamTester sets the stream reachability tester
func (a *API) SetStreamTester(t StreamTester) { a.tester = t }

// SetSnapshotter sets the snapshot provider
func (a *API) SetSnapshotter(s Snapshotter) { a.snapshots = s }

// SetRecorder sets the recorder health check
func (a *API) SetRecorder(p Pinger) { a.recorder = p }

// StatusResponse is the envelope for mutating operations
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is returned on failures
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func writeError(w http.ResponseWriter, message string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
	}
	writeJSON(w, ErrorResponse{Error: message, Details: details}, statusFor(err))
}

// statusFor maps the error taxonomy to HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrParse), errors.Is(err, domain.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
