package handler

import (
	"encoding/json"
	"log"
	"net/http"
)

// StreamTestRequest asks for a reachability check. Name selects a
// configured camera; URL tests an arbitrary stream before it is saved.
type StreamTestRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// TestStream checks whether a stream is reachable
func (a *API) TestStream(w http.ResponseWriter, r *http.Request) {
	if a.tester == nil {
		writeJSON(w, ErrorResponse{Error: "Stream tester not configured"}, http.StatusServiceUnavailable)
		return
	}

	var req StreamTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, ErrorResponse{Error: "Invalid request body", Details: err.Error()}, http.StatusBadRequest)
		return
	}

	name, url := req.Name, req.URL
	if name != "" && url == "" {
		rec, ok := a.svc.Find(name)
		if !ok {
			writeJSON(w, ErrorResponse{Error: "Camera not found"}, http.StatusNotFound)
			return
		}
		url = rec.RtspURL
	}
	if name == "" && url == "" {
		writeJSON(w, ErrorResponse{Error: "name or url is required"}, http.StatusBadRequest)
		return
	}

	writeJSON(w, a.tester.Test(r.Context(), name, url), http.StatusOK)
}

// Snapshot returns a preview frame for a configured camera
func (a *API) Snapshot(w http.ResponseWriter, r *http.Request) {
	if a.snapshots == nil {
		writeJSON(w, ErrorResponse{Error: "Snapshots not configured"}, http.StatusServiceUnavailable)
		return
	}

	name := r.PathValue("name")
	rec, ok := a.svc.Find(name)
	if !ok {
		writeJSON(w, ErrorResponse{Error: "Camera not found"}, http.StatusNotFound)
		return
	}

	data, contentType, err := a.snapshots.Snapshot(r.Context(), rec.Name, rec.RtspURL)
	if err != nil {
		log.Printf("Snapshot for %s failed: %v", rec.Name, err)
		writeError(w, "Snapshot failed", err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}
