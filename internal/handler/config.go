package handler

import (
	"io"
	"log"
	"net/http"
)

// SaveConfig renders the working set and pushes it to the recorder.
// Appending ?restart=true asks the recorder to restart and pick the
// new config up.
func (a *API) SaveConfig(w http.ResponseWriter, r *http.Request) {
	restart := r.URL.Query().Get("restart") == "true"
	if err := a.svc.Save(r.Context(), restart); err != nil {
		log.Printf("Failed to save config: %v", err)
		writeError(w, "Failed to save config", err)
		return
	}
	msg := "Config saved"
	if restart {
		msg = "Config saved, restart requested"
	}
	writeJSON(w, StatusResponse{Success: true, Message: msg}, http.StatusOK)
}

// GetConfigYAML returns the rendered YAML without saving it
func (a *API) GetConfigYAML(w http.ResponseWriter, r *http.Request) {
	doc, err := a.svc.RenderYAML()
	if err != nil {
		log.Printf("Failed to render config: %v", err)
		writeError(w, "Failed to render config", err)
		return
	}
	w.Header().Set("Content-Type", "application/x-yaml")
	w.Write(doc)
}

// PutConfigYAML pushes caller-supplied YAML verbatim and resyncs
func (a *API) PutConfigYAML(w http.ResponseWriter, r *http.Request) {
	restart := r.URL.Query().Get("restart") == "true"
	doc, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, ErrorResponse{Error: "Failed to read request body", Details: err.Error()}, http.StatusBadRequest)
		return
	}
	if len(doc) == 0 {
		writeJSON(w, ErrorResponse{Error: "Empty config"}, http.StatusBadRequest)
		return
	}
	if err := a.svc.SaveRaw(r.Context(), doc, restart); err != nil {
		log.Printf("Failed to save raw config: %v", err)
		writeError(w, "Failed to save config", err)
		return
	}
	writeJSON(w, StatusResponse{Success: true, Message: "Config saved"}, http.StatusOK)
}

// Health reports whether the recorder is reachable
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	if a.recorder == nil {
		writeJSON(w, map[string]interface{}{"status": "ok", "frigate": "unknown"}, http.StatusOK)
		return
	}
	if err := a.recorder.Ping(r.Context()); err != nil {
		writeJSON(w, map[string]interface{}{"status": "ok", "frigate": "unreachable", "details": err.Error()}, http.StatusOK)
		return
	}
	writeJSON(w, map[string]interface{}{"status": "ok", "frigate": "ok"}, http.StatusOK)
}
