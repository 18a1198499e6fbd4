package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/lich2000117/Frigate-SimpleUI/internal/domain"
)

// ScanAll probes the local network for ONVIF cameras
func (a *API) ScanAll(w http.ResponseWriter, r *http.Request) {
	if a.scanner == nil {
		writeJSON(w, ErrorResponse{Error: "Scanner not configured"}, http.StatusServiceUnavailable)
		return
	}
	devices := a.scanner.Scan(r.Context())
	writeJSON(w, map[string]interface{}{
		"devices": devices,
		"count":   len(devices),
	}, http.StatusOK)
}

// ListInterfaces returns the interfaces a scan would probe
func (a *API) ListInterfaces(w http.ResponseWriter, r *http.Request) {
	if a.scanner == nil {
		writeJSON(w, ErrorResponse{Error: "Scanner not configured"}, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, a.scanner.Interfaces(), http.StatusOK)
}

// StreamsRequest asks for stream negotiation against one device
type StreamsRequest struct {
	OnvifURL string `json:"onvifUrl"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// StreamsResponse carries the negotiated streams, raw capabilities and
// the camera defaults derived from them
type StreamsResponse struct {
	Streams      domain.DeviceStreams      `json:"streams"`
	Capabilities domain.StreamCapabilities `json:"capabilities"`
	Suggested    domain.DerivedSettings    `json:"suggested"`
}

// NegotiateStreams talks ONVIF to a device and reports its streams
func (a *API) NegotiateStreams(w http.ResponseWriter, r *http.Request) {
	if a.negotiator == nil {
		writeJSON(w, ErrorResponse{Error: "Negotiator not configured"}, http.StatusServiceUnavailable)
		return
	}

	var req StreamsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, ErrorResponse{Error: "Invalid request body", Details: err.Error()}, http.StatusBadRequest)
		return
	}
	if req.OnvifURL == "" {
		writeJSON(w, ErrorResponse{Error: "onvifUrl is required"}, http.StatusBadRequest)
		return
	}

	streams, caps, err := a.negotiator.Negotiate(r.Context(), req.OnvifURL, req.Username, req.Password)
	if err != nil {
		log.Printf("Stream negotiation failed for %s: %v", req.OnvifURL, err)
		writeError(w, "Stream negotiation failed", err)
		return
	}

	writeJSON(w, StreamsResponse{
		Streams:      streams,
		Capabilities: caps,
		Suggested:    domain.DeriveStreamSettings(caps),
	}, http.StatusOK)
}
