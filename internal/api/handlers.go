package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/PMacajol/Agro-MAGU/internal/anomaly"
	"github.com/PMacajol/Agro-MAGU/internal/auth"
	"github.com/PMacajol/Agro-MAGU/internal/data"
	"github.com/PMacajol/Agro-MAGU/internal/monitor"
)

const maxBodyBytes = 1 << 20

// AlertArchive is the long-term alert store. It is optional.
type AlertArchive interface {
	Recent(ctx context.Context, count int64) ([]data.AlertRecord, error)
}

type APIHandler struct {
	poller          *monitor.Poller
	sensor          monitor.SensorSource
	detector        *anomaly.Detector
	advisor         monitor.Recommender
	archive         AlertArchive
	auth            *auth.Manager
	defaultInterval time.Duration
}

func NewAPIHandler(poller *monitor.Poller, sensor monitor.SensorSource, detector *anomaly.Detector, advisor monitor.Recommender, archive AlertArchive, authManager *auth.Manager, defaultInterval time.Duration) *APIHandler {
	return &APIHandler{
		poller:          poller,
		sensor:          sensor,
		detector:        detector,
		advisor:         advisor,
		archive:         archive,
		auth:            authManager,
		defaultInterval: defaultInterval,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// limitParam reads ?limit=, treating a missing value as 0 (everything).
func limitParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New("limit must be a non-negative integer")
	}
	return n, nil
}

func (h *APIHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"monitoring": h.poller.Running(),
		"time":       time.Now().UTC().Format(time.RFC3339),
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *APIHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil || req.Username == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	role, err := h.auth.Authenticate(req.Username, req.Password)
	if err != nil {
		log.Printf("Login failed for %q: %v", req.Username, err)
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.auth.GenerateToken(req.Username, role)
	if err != nil {
		log.Printf("Token generation failed: %v", err)
		writeError(w, http.StatusServiceUnavailable, "token issuing is not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":      token,
		"token_type": "Bearer",
		"expires_in": int(h.auth.TokenTTL().Seconds()),
		"role":       role,
	})
}

func (h *APIHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.poller.Status())
}

func (h *APIHandler) HandleAlerts(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	alerts := h.poller.History(limit)
	writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts, "count": len(alerts)})
}

func (h *APIHandler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeError(w, http.StatusServiceUnavailable, "alert archive not configured")
		return
	}
	limit, err := limitParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	alerts, err := h.archive.Recent(r.Context(), int64(limit))
	if err != nil {
		log.Printf("Error reading alert archive: %v", err)
		writeError(w, http.StatusBadGateway, "alert archive unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts, "count": len(alerts)})
}

// HandleSensorLatest fetches a reading on demand and evaluates it without
// touching the alert history.
func (h *APIHandler) HandleSensorLatest(w http.ResponseWriter, r *http.Request) {
	reading := h.sensor.Fetch(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sensor_data": reading,
		"alert":       h.detector.Evaluate(reading),
		"breaches":    h.detector.Breaches(reading),
	})
}

func (h *APIHandler) HandleRecommendation(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read request body")
		return
	}
	defer r.Body.Close()

	reading, err := data.NormalizeReading(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec := h.advisor.Recommend(r.Context(), reading)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sensor_data":               reading,
		"alert":                     h.detector.Evaluate(reading),
		"fertilizer_recommendation": rec,
	})
}

type startRequest struct {
	IntervalMinutes float64 `json:"interval_minutes"`
}

func (h *APIHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	interval := h.defaultInterval
	var req startRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	if req.IntervalMinutes < 0 {
		writeError(w, http.StatusBadRequest, "interval_minutes must be positive")
		return
	}
	if req.IntervalMinutes > 0 {
		interval = time.Duration(req.IntervalMinutes * float64(time.Minute))
	}

	h.logCaller(r, "start")
	started := h.poller.Start(interval)
	writeJSON(w, http.StatusOK, map[string]interface{}{"started": started, "status": h.poller.Status()})
}

func (h *APIHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	h.logCaller(r, "stop")
	stopped := h.poller.Stop()
	writeJSON(w, http.StatusOK, map[string]interface{}{"stopped": stopped, "status": h.poller.Status()})
}

func (h *APIHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	h.logCaller(r, "run")
	result, err := h.poller.ExecuteCycle(r.Context())
	if errors.Is(err, monitor.ErrCycleInProgress) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *APIHandler) HandleTest(w http.ResponseWriter, r *http.Request) {
	h.logCaller(r, "test")
	report, err := h.poller.TestSystem(r.Context())
	switch {
	case monitor.IsNotConfigured(err):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case err != nil:
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{"error": err.Error(), "report": report})
	default:
		writeJSON(w, http.StatusOK, report)
	}
}

func (h *APIHandler) logCaller(r *http.Request, action string) {
	if p, ok := auth.FromContext(r.Context()); ok {
		log.Printf("Monitor %s requested by %s (%s)", action, p.Username, p.Method)
	}
}
