package handler

import (
	"encoding/json"
	"net/http"

	"github.com/lich2000117/Frigate-SimpleUI/internal/domain"
)

// GetDetector returns the detector accelerator configuration
func (a *API) GetDetector(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, a.svc.DetectorConfig(), http.StatusOK)
}

// SetDetector updates the detector accelerator configuration
func (a *API) SetDetector(w http.ResponseWriter, r *http.Request) {
	var cfg domain.DetectorConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeJSON(w, ErrorResponse{Error: "Invalid request body", Details: err.Error()}, http.StatusBadRequest)
		return
	}
	if err := a.svc.SetDetectorConfig(cfg); err != nil {
		writeError(w, "Failed to update detector", err)
		return
	}
	writeJSON(w, a.svc.DetectorConfig(), http.StatusOK)
}

// ListObjects returns the trackable object vocabulary
func (a *API) ListObjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"objects": a.svc.AvailableLabels(),
	}, http.StatusOK)
}
