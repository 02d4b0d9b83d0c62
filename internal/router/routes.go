package router

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	json "github.com/json-iterator/go"

	"github.com/nicolasmmb/go-datacollector/internal/core"
	"github.com/nicolasmmb/go-datacollector/internal/domain"
	"github.com/nicolasmmb/go-datacollector/internal/model"
	"github.com/nicolasmmb/go-datacollector/internal/service"
	"github.com/nicolasmmb/go-datacollector/internal/worker"
)

const (
	ROUTE_DEVICE_DATA               = "POST /device-data"
	ROUTE_PREFERRED_PAYMENT_METHODS = "GET /preferred-payment-methods" // Uses query param `venmoInstalled`
	ROUTE_CONFIGURATION_GET         = "GET /configuration"
	ROUTE_CONFIGURATION_RESET       = "DELETE /configuration"
	ROUTE_HEALTH_CHECK              = "GET /health"

	HEADER_INSTALLATION_ID = "X-Installation-Id"

	maxBodyBytes = 16 << 10 // 16 KB
)

type handler struct {
	DeviceData     core.DeviceDataSubmitterInterface
	PreferredSvc   core.PreferredPaymentMethodsInterface
	ConfigSvc      core.ConfigurationServiceInterface
	HealthCheckRep core.HealthCheckRepositoryInterface
}

func NewHandler(deviceData core.DeviceDataSubmitterInterface, preferred core.PreferredPaymentMethodsInterface, configs core.ConfigurationServiceInterface, health core.HealthCheckRepositoryInterface) *handler {
	return &handler{
		DeviceData:     deviceData,
		PreferredSvc:   preferred,
		ConfigSvc:      configs,
		HealthCheckRep: health,
	}
}

func Routes(h *handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc(ROUTE_DEVICE_DATA, h.CollectDeviceData)
	mux.HandleFunc(ROUTE_PREFERRED_PAYMENT_METHODS, h.GetPreferredPaymentMethods)
	mux.HandleFunc(ROUTE_CONFIGURATION_GET, h.GetConfiguration)
	mux.HandleFunc(ROUTE_CONFIGURATION_RESET, h.ResetConfiguration)
	mux.HandleFunc(ROUTE_HEALTH_CHECK, h.HealthCheck)

	return mux
}

func (h *handler) CollectDeviceData(w http.ResponseWriter, r *http.Request) {
	tStart := time.Now()

	installationID := r.Header.Get(HEADER_INSTALLATION_ID)
	if !domain.ValidateInstallationID(installationID) {
		writeError(w, http.StatusBadRequest, "Missing or invalid "+HEADER_INSTALLATION_ID)
		return
	}

	// An empty body means the default request.
	var body model.DeviceDataRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	reply, err := h.DeviceData.Submit(r.Context(), installationID, body.ToDomain())
	if err != nil {
		switch {
		case errors.Is(err, worker.ErrQueueFull):
			writeError(w, http.StatusServiceUnavailable, "Too many device data requests")
			return
		case errors.Is(err, worker.ErrWorkerStopped):
			writeError(w, http.StatusServiceUnavailable, "Shutting down")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to collect device data")
		return
	}

	var res domain.DeviceDataResult
	select {
	case res = <-reply:
	case <-r.Context().Done():
		slog.Warn("[RT:DeviceData:Collect:01] - Client went away", "installation_id", installationID)
		return
	}

	if res.Err != nil {
		switch {
		case errors.Is(res.Err, service.ErrConfigurationUnavailable):
			writeError(w, http.StatusBadGateway, "Configuration unavailable")
		default:
			writeError(w, http.StatusServiceUnavailable, "Failed to collect device data")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, res.Data.String())

	slog.Info("[RT:DeviceData:Collect:02] - Request processed", "installation_id", installationID, "duration", time.Since(tStart))
}

func (h *handler) GetPreferredPaymentMethods(w http.ResponseWriter, r *http.Request) {
	// Anything but a valid boolean means not installed.
	venmoInstalled, _ := strconv.ParseBool(r.URL.Query().Get("venmoInstalled"))

	result := h.PreferredSvc.Fetch(r.Context(), venmoInstalled)
	writeJSON(w, http.StatusOK, model.PreferredPaymentMethodsResponse{
		PayPalPreferred: result.IsPayPalPreferred(),
		VenmoPreferred:  result.IsVenmoPreferred(),
	})
}

func (h *handler) GetConfiguration(w http.ResponseWriter, r *http.Request) {
	var res domain.ConfigurationResult
	select {
	case res = <-h.ConfigSvc.Configuration(r.Context()):
	case <-r.Context().Done():
		return
	}

	if res.Err != nil || res.Configuration == nil {
		writeError(w, http.StatusBadGateway, "Configuration unavailable")
		return
	}
	writeJSON(w, http.StatusOK, res.Configuration)
}

func (h *handler) ResetConfiguration(w http.ResponseWriter, r *http.Request) {
	if err := h.ConfigSvc.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset configuration")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.HealthCheckRep.HealthCheck(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Unhealthy")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("[RT:WriteJSON] - Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}
