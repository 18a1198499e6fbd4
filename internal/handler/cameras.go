package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/lich2000117/Frigate-SimpleUI/internal/domain"
)

// CameraRequest carries a camera create or update. Optional fields are
// pointers so an omitted field keeps its default (or the stored value
// on update) instead of collapsing to the zero value.
type CameraRequest struct {
	Name            string `json:"name"`
	RtspURL         string `json:"rtspUrl"`
	SubStreamURL    string `json:"subStreamUrl"`
	CustomCameraURL string `json:"customCameraUrl"`

	ForceH264  *bool `json:"forceH264"`
	EnableAac  *bool `json:"enableAac"`
	EnableOpus *bool `json:"enableOpus"`

	DetectWidth    *int     `json:"detectWidth"`
	DetectHeight   *int     `json:"detectHeight"`
	DetectFPS      *int     `json:"detectFps"`
	ObjectsToTrack []string `json:"objectsToTrack"`

	RecordEnabled    *bool  `json:"recordEnabled"`
	RecordRetainDays *int   `json:"recordRetainDays"`
	RecordRetainMode string `json:"recordRetainMode"`

	MotionThreshold       *int  `json:"motionThreshold"`
	MotionContourArea     *int  `json:"motionContourArea"`
	MotionImproveContrast *bool `json:"motionImproveContrast"`

	SnapshotsEnabled     *bool `json:"snapshotsEnabled"`
	SnapshotsTimestamp   *bool `json:"snapshotsTimestamp"`
	SnapshotsBoundingBox *bool `json:"snapshotsBoundingBox"`
	SnapshotsRetain      *int  `json:"snapshotsRetainDefault"`
}

// New cameras created through the API record by default and keep a
// week of footage.
const apiDefaultRetainDays = 7

// ListCameras returns all configured cameras
func (a *API) ListCameras(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, a.svc.List(), http.StatusOK)
}

// GetCamera returns a single camera by name
func (a *API) GetCamera(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	rec, ok := a.svc.Find(name)
	if !ok {
		writeJSON(w, ErrorResponse{Error: "Camera not found"}, http.StatusNotFound)
		return
	}
	writeJSON(w, rec, http.StatusOK)
}

// UpsertCamera creates or updates a camera
func (a *API) UpsertCamera(w http.ResponseWriter, r *http.Request) {
	var req CameraRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, ErrorResponse{Error: "Invalid request body", Details: err.Error()}, http.StatusBadRequest)
		return
	}

	rec, existed := a.svc.Find(req.Name)
	if !existed {
		rec = domain.NewCameraRecord(req.Name)
		rec.RecordEnabled = true
		rec.RecordRetainDays = apiDefaultRetainDays
	}
	req.apply(&rec)

	if err := a.svc.Upsert(rec); err != nil {
		log.Printf("Failed to save camera %q: %v", req.Name, err)
		writeError(w, "Failed to save camera", err)
		return
	}

	saved, _ := a.svc.Find(req.Name)
	status := http.StatusOK
	if !existed {
		status = http.StatusCreated
	}
	writeJSON(w, saved, status)
}

// DeleteCamera removes a camera from the working set
func (a *API) DeleteCamera(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !a.svc.Remove(name) {
		writeJSON(w, ErrorResponse{Error: "Camera not found"}, http.StatusNotFound)
		return
	}
	writeJSON(w, StatusResponse{Success: true, Message: "Camera removed"}, http.StatusOK)
}

// ReloadCameras discards local state and re-reads the remote config
func (a *API) ReloadCameras(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Load(r.Context()); err != nil {
		log.Printf("Failed to reload config: %v", err)
		writeError(w, "Failed to reload config", err)
		return
	}
	writeJSON(w, a.svc.List(), http.StatusOK)
}

// apply copies the set fields onto the record, leaving omitted fields
// alone.
func (req *CameraRequest) apply(rec *domain.CameraRecord) {
	rec.Name = req.Name
	rec.RtspURL = req.RtspURL
	rec.SubStreamURL = req.SubStreamURL
	rec.CustomCameraURL = req.CustomCameraURL

	setBool(&rec.ForceH264, req.ForceH264)
	setBool(&rec.EnableAac, req.EnableAac)
	setBool(&rec.EnableOpus, req.EnableOpus)

	setInt(&rec.DetectWidth, req.DetectWidth)
	setInt(&rec.DetectHeight, req.DetectHeight)
	setInt(&rec.DetectFPS, req.DetectFPS)
	if req.ObjectsToTrack != nil {
		rec.ObjectsToTrack = append([]string(nil), req.ObjectsToTrack...)
	}

	setBool(&rec.RecordEnabled, req.RecordEnabled)
	setInt(&rec.RecordRetainDays, req.RecordRetainDays)
	if req.RecordRetainMode != "" {
		rec.RecordRetainMode = domain.RetainMode(req.RecordRetainMode)
	}

	setInt(&rec.MotionThreshold, req.MotionThreshold)
	setInt(&rec.MotionContourArea, req.MotionContourArea)
	setBool(&rec.MotionImproveContrast, req.MotionImproveContrast)

	setBool(&rec.SnapshotsEnabled, req.SnapshotsEnabled)
	setBool(&rec.SnapshotsTimestamp, req.SnapshotsTimestamp)
	setBool(&rec.SnapshotsBoundingBox, req.SnapshotsBoundingBox)
	setInt(&rec.SnapshotsRetain, req.SnapshotsRetain)
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
