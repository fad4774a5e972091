// Package webui serves the browser front end and the REST API for the studio.
// This file contains the StudioAPI organism with the REST handlers for
// generation, upscaling, history, presets, and status.
package webui

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	_ "image/jpeg"
	"image/png"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sdstudio/engine"
	"sdstudio/executor"
	"sdstudio/history"
	"sdstudio/metrics"
	"sdstudio/presets"
	"sdstudio/sdgen"

	"go.uber.org/zap"
)

// maxUploadBytes bounds the size of an uploaded source image.
const maxUploadBytes = 32 << 20

// UpscalerFactory builds an upscaler for the requested factor. It is called
// per request so a missing binary surfaces as a request error rather than a
// startup failure.
type UpscalerFactory func(scale int) (engine.Upscaler, error)

// GenerationDefaults are applied to request fields the client left unset.
type GenerationDefaults struct {
	Steps          int
	GuidanceScale  float64
	ImageSize      int
	NegativePrompt string
}

// VersionInfo contains version metadata for the status endpoint.
type VersionInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date,omitempty"`
	GitCommit string `json:"git_commit,omitempty"`
}

// StudioAPI provides the REST handlers for the studio.
//
// Endpoints:
//   - POST   /api/generate/txt2img      - text to image
//   - POST   /api/generate/img2img      - image plus text to image (multipart)
//   - POST   /api/upscale               - super-resolution (multipart)
//   - GET    /api/history               - recent history summaries
//   - GET    /api/history/{id}          - full metadata for one entry
//   - GET    /api/history/{id}/image    - full-resolution PNG
//   - GET    /api/history/{id}/thumbnail - thumbnail PNG
//   - DELETE /api/history/{id}          - remove an entry and its artifacts
//   - GET    /api/presets               - all style presets
//   - GET    /api/presets/{name}        - one preset by name
//   - GET    /api/status                - process status and loaded pipelines
//   - GET    /api/metrics               - generation counters
type StudioAPI struct {
	exec      *executor.Executor
	store     *history.Store
	engines   *engine.Registry
	upscalers UpscalerFactory
	defaults  GenerationDefaults
	version   VersionInfo
	activity  *metrics.Store
	startedAt time.Time
	log       *zap.Logger
}

// StudioAPIConfig configures the StudioAPI.
type StudioAPIConfig struct {
	Defaults    GenerationDefaults
	VersionInfo VersionInfo

	// Metrics receives a record per generation attempt. A nil value gets a
	// private store so handlers never need to check.
	Metrics *metrics.Store
}

// NewStudioAPI wires the API handlers to the executor, history store, engine
// registry, and upscaler factory.
func NewStudioAPI(
	exec *executor.Executor,
	store *history.Store,
	engines *engine.Registry,
	upscalers UpscalerFactory,
	config StudioAPIConfig,
	log *zap.Logger,
) *StudioAPI {
	if log == nil {
		log = zap.NewNop()
	}
	d := config.Defaults
	if d.Steps < 1 {
		d.Steps = 30
	}
	if d.GuidanceScale <= 0 {
		d.GuidanceScale = 7.5
	}
	if d.ImageSize < 1 {
		d.ImageSize = 512
	}

	activity := config.Metrics
	if activity == nil {
		activity = metrics.NewStore(0)
	}

	return &StudioAPI{
		exec:      exec,
		store:     store,
		engines:   engines,
		upscalers: upscalers,
		defaults:  d,
		version:   config.VersionInfo,
		activity:  activity,
		startedAt: time.Now(),
		log:       log,
	}
}

// RegisterRoutes registers all API routes on the mux.
func (api *StudioAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/generate/txt2img", api.HandleTxt2Img)
	mux.HandleFunc("/api/generate/img2img", api.HandleImg2Img)
	mux.HandleFunc("/api/upscale", api.HandleUpscale)
	mux.HandleFunc("/api/history", api.HandleHistoryList)
	mux.HandleFunc("/api/history/", api.HandleHistoryEntry)
	mux.HandleFunc("/api/presets", api.HandlePresets)
	mux.HandleFunc("/api/presets/", api.HandlePreset)
	mux.HandleFunc("/api/status", api.HandleStatus)
	mux.HandleFunc("/api/metrics", api.HandleMetrics)
}

// txt2imgRequest is the JSON body for POST /api/generate/txt2img. Seed is a
// raw string so the empty and malformed cases can be told apart from zero.
type txt2imgRequest struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt"`
	Steps          int     `json:"steps"`
	GuidanceScale  float64 `json:"guidance_scale"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Seed           string  `json:"seed"`
	Model          string  `json:"model"`
	Preset         string  `json:"preset"`
}

// generateResponse is the body returned by the generation endpoints.
type generateResponse struct {
	Metadata *sdgen.GenerationMetadata `json:"metadata"`
	Image    string                    `json:"image"`
}

// HandleTxt2Img handles POST /api/generate/txt2img.
func (api *StudioAPI) HandleTxt2Img(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req txt2imgRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes)).Decode(&req); err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	api.applyPreset(&req)

	req.Prompt = sdgen.SanitizePrompt(req.Prompt)
	if req.Prompt == "" {
		api.writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	entry, err := api.engines.Get(req.Model)
	if err != nil {
		api.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := sdgen.Txt2ImgConfig{
		Prompt:         req.Prompt,
		NegativePrompt: api.negativeOrDefault(req.NegativePrompt),
		Steps:          api.stepsOrDefault(req.Steps),
		GuidanceScale:  api.guidanceOrDefault(req.GuidanceScale),
		Width:          api.sizeOrDefault(req.Width),
		Height:         api.sizeOrDefault(req.Height),
		Seed:           api.parseSeed(req.Seed),
		Model:          entry.Name,
	}

	start := time.Now()
	img, meta, err := api.exec.Txt2Img(r.Context(), entry.Txt2Img, cfg)
	api.recordAttempt(sdgen.ModeTxt2Img, start, err)
	if err != nil {
		api.writeEngineError(w, err)
		return
	}

	api.respondWithSavedImage(w, meta, img)
}

// HandleImg2Img handles POST /api/generate/img2img. The request is multipart:
// an "image" file part plus the same fields as txt2img, with "strength" added.
func (api *StudioAPI) HandleImg2Img(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	src, ok := api.readSourceImage(w, r)
	if !ok {
		return
	}

	prompt := sdgen.SanitizePrompt(r.FormValue("prompt"))
	if prompt == "" {
		api.writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	strength, err := formFloat(r, "strength", 0.75)
	if err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid strength: "+err.Error())
		return
	}

	entry, err := api.engines.Get(r.FormValue("model"))
	if err != nil {
		api.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if entry.Img2Img == nil {
		api.writeError(w, http.StatusBadRequest, "pipeline "+entry.Name+" does not support img2img")
		return
	}

	steps, err := formInt(r, "steps", api.defaults.Steps)
	if err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid steps: "+err.Error())
		return
	}
	guidance, err := formFloat(r, "guidance_scale", api.defaults.GuidanceScale)
	if err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid guidance_scale: "+err.Error())
		return
	}
	width, err := formInt(r, "width", api.defaults.ImageSize)
	if err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid width: "+err.Error())
		return
	}
	height, err := formInt(r, "height", api.defaults.ImageSize)
	if err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid height: "+err.Error())
		return
	}

	cfg := sdgen.Img2ImgConfig{
		Prompt:         prompt,
		NegativePrompt: api.negativeOrDefault(r.FormValue("negative_prompt")),
		Strength:       strength,
		Steps:          steps,
		GuidanceScale:  guidance,
		Width:          width,
		Height:         height,
		Seed:           api.parseSeed(r.FormValue("seed")),
		Model:          entry.Name,
	}

	start := time.Now()
	img, meta, err := api.exec.Img2Img(r.Context(), entry.Img2Img, cfg, src)
	api.recordAttempt(sdgen.ModeImg2Img, start, err)
	if err != nil {
		if errors.Is(err, sdgen.ErrInvalidStrength) {
			api.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		api.writeEngineError(w, err)
		return
	}

	api.respondWithSavedImage(w, meta, img)
}

// HandleUpscale handles POST /api/upscale. The request is multipart: an
// "image" file part plus a "scale" field (2 or 4, default 2).
func (api *StudioAPI) HandleUpscale(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	src, ok := api.readSourceImage(w, r)
	if !ok {
		return
	}

	scale, err := formInt(r, "scale", 2)
	if err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid scale: "+err.Error())
		return
	}

	up, err := api.upscalers(scale)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidScale) {
			api.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		api.writeEngineError(w, err)
		return
	}

	start := time.Now()
	img, meta, err := api.exec.Upscale(r.Context(), up, src)
	api.recordAttempt(sdgen.ModeUpscale, start, err)
	if err != nil {
		api.writeEngineError(w, err)
		return
	}

	api.respondWithSavedImage(w, meta, img)
}

// HandleHistoryList handles GET /api/history.
func (api *StudioAPI) HandleHistoryList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			api.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries := api.store.List(limit)
	api.writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// HandleHistoryEntry handles /api/history/{id} and its image sub-resources.
func (api *StudioAPI) HandleHistoryEntry(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/history/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		api.writeError(w, http.StatusNotFound, "history entry not found")
		return
	}

	switch {
	case r.Method == http.MethodDelete && sub == "":
		if !api.store.Delete(id) {
			api.writeError(w, http.StatusNotFound, "history entry not found")
			return
		}
		api.writeJSON(w, http.StatusOK, map[string]any{"deleted": id})

	case r.Method == http.MethodGet && sub == "":
		meta, ok := api.store.Load(id)
		if !ok {
			api.writeError(w, http.StatusNotFound, "history entry not found")
			return
		}
		api.writeJSON(w, http.StatusOK, meta)

	case r.Method == http.MethodGet && sub == "image":
		path, found := api.store.FullImagePath(id)
		api.serveArtifact(w, r, path, found)

	case r.Method == http.MethodGet && sub == "thumbnail":
		path, found := api.store.ThumbnailPath(id)
		api.serveArtifact(w, r, path, found)

	default:
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// HandlePresets handles GET /api/presets.
func (api *StudioAPI) HandlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	api.writeJSON(w, http.StatusOK, map[string]any{"presets": presets.All()})
}

// HandlePreset handles GET /api/presets/{name}.
func (api *StudioAPI) HandlePreset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/presets/")
	p, ok := presets.Get(name)
	if !ok {
		api.writeError(w, http.StatusNotFound, "preset not found: "+name)
		return
	}
	api.writeJSON(w, http.StatusOK, p)
}

// statusResponse is the body for GET /api/status.
type statusResponse struct {
	Status        string   `json:"status"`
	Version       string   `json:"version"`
	BuildDate     string   `json:"build_date,omitempty"`
	GitCommit     string   `json:"git_commit,omitempty"`
	UptimeSecs    float64  `json:"uptime_secs"`
	Pipelines     []string `json:"pipelines"`
	UpscaleScales []int    `json:"upscale_scales"`
}

// HandleStatus handles GET /api/status.
func (api *StudioAPI) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	scales := []int{}
	for _, s := range []int{2, 4} {
		if _, err := api.upscalers(s); err == nil {
			scales = append(scales, s)
		}
	}

	api.writeJSON(w, http.StatusOK, statusResponse{
		Status:        "ok",
		Version:       api.version.Version,
		BuildDate:     api.version.BuildDate,
		GitCommit:     api.version.GitCommit,
		UptimeSecs:    time.Since(api.startedAt).Seconds(),
		Pipelines:     api.engines.Names(),
		UpscaleScales: scales,
	})
}

// HandleMetrics handles GET /api/metrics.
func (api *StudioAPI) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	api.writeJSON(w, http.StatusOK, api.activity.Snapshot())
}

// recordAttempt feeds one engine call into the activity counters. Requests
// rejected before reaching an engine are not counted.
func (api *StudioAPI) recordAttempt(mode sdgen.Mode, start time.Time, err error) {
	api.activity.Record(metrics.GenerationRecord{
		Mode:      string(mode),
		Success:   err == nil,
		Duration:  time.Since(start),
		Timestamp: time.Now(),
	})
}

// applyPreset fills request fields the client left unset from the named
// preset. The client's explicit values always win.
func (api *StudioAPI) applyPreset(req *txt2imgRequest) {
	if req.Preset == "" {
		return
	}
	p, ok := presets.Get(req.Preset)
	if !ok {
		return
	}
	if req.Prompt == "" {
		req.Prompt = p.Prompt
	}
	if req.NegativePrompt == "" {
		req.NegativePrompt = p.NegativePrompt
	}
	if req.Steps == 0 {
		req.Steps = p.Steps
	}
	if req.GuidanceScale == 0 {
		req.GuidanceScale = p.GuidanceScale
	}
	if req.Width == 0 {
		req.Width = p.Width
	}
	if req.Height == 0 {
		req.Height = p.Height
	}
}

// respondWithSavedImage persists the generation to history and writes the
// JSON response. A storage failure is logged but never fails the request; the
// client still receives the image it asked for.
func (api *StudioAPI) respondWithSavedImage(w http.ResponseWriter, meta *sdgen.GenerationMetadata, img image.Image) {
	saved, err := api.store.Save(meta, img)
	if err != nil {
		api.log.Error("history save failed", zap.Error(err))
	}
	if saved != nil {
		meta = saved
	}

	encoded, err := encodePNGBase64(img)
	if err != nil {
		api.writeError(w, http.StatusInternalServerError, "encoding image: "+err.Error())
		return
	}

	api.writeJSON(w, http.StatusOK, generateResponse{
		Metadata: meta,
		Image:    encoded,
	})
}

// readSourceImage parses the multipart form and decodes the "image" part.
// On failure it writes the error response and returns ok=false.
func (api *StudioAPI) readSourceImage(w http.ResponseWriter, r *http.Request) (image.Image, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return nil, false
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		api.writeError(w, http.StatusBadRequest, "image file is required")
		return nil, false
	}
	defer file.Close()

	src, _, err := image.Decode(file)
	if err != nil {
		api.writeError(w, http.StatusBadRequest, "undecodable image: "+err.Error())
		return nil, false
	}
	return src, true
}

// serveArtifact streams a stored PNG from disk.
func (api *StudioAPI) serveArtifact(w http.ResponseWriter, r *http.Request, path string, ok bool) {
	if !ok {
		api.writeError(w, http.StatusNotFound, "history entry not found")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}

// parseSeed resolves the raw seed string; a malformed value falls back to a
// random seed rather than failing the request.
func (api *StudioAPI) parseSeed(raw string) *uint64 {
	if seed, ok := sdgen.ResolveSeed(raw, api.log); ok {
		return &seed
	}
	return nil
}

func (api *StudioAPI) negativeOrDefault(v string) string {
	if v == "" {
		return api.defaults.NegativePrompt
	}
	return v
}

func (api *StudioAPI) stepsOrDefault(v int) int {
	if v < 1 {
		return api.defaults.Steps
	}
	return v
}

func (api *StudioAPI) guidanceOrDefault(v float64) float64 {
	if v <= 0 {
		return api.defaults.GuidanceScale
	}
	return v
}

func (api *StudioAPI) sizeOrDefault(v int) int {
	if v < 1 {
		return api.defaults.ImageSize
	}
	return v
}

// writeEngineError maps an engine failure to a 502. The inference backend is
// an upstream dependency from the server's point of view.
func (api *StudioAPI) writeEngineError(w http.ResponseWriter, err error) {
	api.log.Error("generation failed", zap.Error(err))
	api.writeError(w, http.StatusBadGateway, err.Error())
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func (api *StudioAPI) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		api.log.Warn("writing response", zap.Error(err))
	}
}

// writeError writes an error response.
func (api *StudioAPI) writeError(w http.ResponseWriter, status int, message string) {
	api.writeJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// formInt reads an optional integer form field.
func formInt(r *http.Request, key string, def int) (int, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// formFloat reads an optional float form field.
func formFloat(r *http.Request, key string, def float64) (float64, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return def, nil
	}
	return strconv.ParseFloat(raw, 64)
}

// encodePNGBase64 encodes an image as a base64 PNG string.
func encodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
