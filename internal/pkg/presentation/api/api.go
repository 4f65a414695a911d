package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"

	"github.com/optdev/iot-monsys/internal/pkg/application/devicemanagement"
	"github.com/optdev/iot-monsys/internal/pkg/application/discovery"
	"github.com/optdev/iot-monsys/internal/pkg/application/ingest"
	"github.com/optdev/iot-monsys/internal/pkg/infrastructure/storage"
	"github.com/optdev/iot-monsys/internal/pkg/presentation/api/auth"
	"github.com/optdev/iot-monsys/pkg/types"
)

var tracer = otel.Tracer("iot-monsys/api")

func RegisterHandlers(ctx context.Context, router *chi.Mux, policies io.Reader, svc devicemanagement.DeviceManagement, readings ingest.ReadingStore, disc *discovery.Controller) (*chi.Mux, error) {

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	log := logging.GetFromContext(ctx)

	// Handle valid / invalid tokens.
	authenticator, err := auth.NewAuthenticator(ctx, log, policies)
	if err != nil {
		return nil, fmt.Errorf("failed to create api authenticator: %w", err)
	}

	router.Route("/api/v0", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.Route("/devices", func(r chi.Router) {
				r.Get("/", queryDevicesHandler(log, svc))
				r.Get("/{deviceID}", getDeviceDetails(log, svc))
				r.Post("/", createDeviceHandler(log, svc))
				r.Patch("/{deviceID}", patchDeviceHandler(log, svc))
			})

			r.Get("/readings", queryReadingsHandler(log, readings))

			r.Route("/discovery", func(r chi.Router) {
				r.Get("/", getDiscoveryHandler(log, disc))
				r.Post("/", setDiscoveryHandler(log, disc))
			})
		})
	})

	return router, nil
}

func writeJson(w http.ResponseWriter, statusCode int, body any) {
	b, err := json.Marshal(body)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(b)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJson(w, statusCode, map[string]string{"error": message})
}

func createDeviceHandler(log *slog.Logger, svc devicemanagement.DeviceManagement) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "create-device")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			requestLogger.Error("unable to read body", "err", err.Error())
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		var d types.Device
		err = json.Unmarshal(body, &d)
		if err != nil {
			requestLogger.Error("unable to unmarshal body", "err", err.Error())
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		err = svc.Create(ctx, d)
		if err != nil {
			if errors.Is(err, devicemanagement.ErrDeviceAlreadyExist) {
				requestLogger.Debug("device already exists", "device_id", d.DeviceID)
				writeError(w, http.StatusConflict, "device already exists")
				return
			}
			requestLogger.Error("unable to create device", "err", err.Error())
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
	}
}

func queryDevicesHandler(log *slog.Logger, svc devicemanagement.DeviceManagement) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "query-devices")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		collection, err := svc.Query(ctx, r.URL.Query())
		if err != nil {
			requestLogger.Error("unable to query devices", "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		writeJson(w, http.StatusOK, collection)
	}
}

func getDeviceDetails(log *slog.Logger, svc devicemanagement.DeviceManagement) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "get-device")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		deviceID := chi.URLParam(r, "deviceID")
		if deviceID != "" {
			requestLogger = requestLogger.With(slog.String("device_id", deviceID))
		}

		device, err := svc.GetByDeviceID(ctx, deviceID)
		if errors.Is(err, devicemanagement.ErrDeviceNotFound) {
			requestLogger.Debug("device not found")
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err != nil {
			requestLogger.Error("could not fetch data", "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		writeJson(w, http.StatusOK, device)
	}
}

func patchDeviceHandler(log *slog.Logger, svc devicemanagement.DeviceManagement) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "patch-device")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		deviceID := chi.URLParam(r, "deviceID")
		if deviceID != "" {
			requestLogger = requestLogger.With(slog.String("device_id", deviceID))
		}

		b, err := io.ReadAll(r.Body)
		if err != nil {
			requestLogger.Error("unable to read body", "err", err.Error())
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		var fields map[string]any
		err = json.Unmarshal(b, &fields)
		if err != nil {
			requestLogger.Error("unable to unmarshal body into map", "err", err.Error())
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		err = svc.Update(ctx, deviceID, fields)
		if err != nil {
			if errors.Is(err, devicemanagement.ErrDeviceNotFound) {
				requestLogger.Debug("device not found")
				w.WriteHeader(http.StatusNotFound)
				return
			}
			requestLogger.Error("unable to update device", "err", err.Error())
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
	}
}

func queryReadingsHandler(log *slog.Logger, readings ingest.ReadingStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "query-readings")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		conditions, err := readingConditionsFromQuery(r.URL.Query())
		if err != nil {
			requestLogger.Debug("invalid query parameters", "err", err.Error())
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		collection, err := readings.Query(ctx, conditions...)
		if err != nil {
			requestLogger.Error("unable to query readings", "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		writeJson(w, http.StatusOK, collection)
	}
}

func readingConditionsFromQuery(query map[string][]string) ([]storage.ConditionFunc, error) {
	conditions := []storage.ConditionFunc{}

	first := func(key string) (string, bool) {
		values, ok := query[key]
		if !ok || len(values) == 0 {
			return "", false
		}
		return values[0], true
	}

	if deviceID, ok := first("deviceId"); ok {
		conditions = append(conditions, storage.WithDeviceID(deviceID))
	}

	if sensorTypes, ok := query["type"]; ok && len(sensorTypes) > 0 {
		conditions = append(conditions, storage.WithTypes(sensorTypes))
	}

	var since, until time.Time
	if s, ok := first("since"); ok {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("'since' is not a valid timestamp")
		}
		since = t
	}
	if s, ok := first("until"); ok {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("'until' is not a valid timestamp")
		}
		until = t
	}
	if !since.IsZero() || !until.IsZero() {
		conditions = append(conditions, storage.WithTimeRange(since, until))
	}

	if s, ok := first("offset"); ok {
		offset, err := strconv.Atoi(s)
		if err != nil || offset < 0 {
			return nil, fmt.Errorf("'offset' must be a non negative integer")
		}
		conditions = append(conditions, storage.WithOffset(offset))
	}

	if s, ok := first("limit"); ok {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 1 {
			return nil, fmt.Errorf("'limit' must be a positive integer")
		}
		conditions = append(conditions, storage.WithLimit(limit))
	}

	return conditions, nil
}

func getDiscoveryHandler(log *slog.Logger, disc *discovery.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		_, span := tracer.Start(r.Context(), "get-discovery-mode")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		writeJson(w, http.StatusOK, disc.Get())
	}
}

func setDiscoveryHandler(log *slog.Logger, disc *discovery.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "set-discovery-mode")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			requestLogger.Error("unable to read body", "err", err.Error())
			writeError(w, http.StatusBadRequest, "unable to read request body")
			return
		}

		var request map[string]any
		err = json.Unmarshal(body, &request)
		if err != nil {
			requestLogger.Debug("unable to unmarshal body", "err", err.Error())
			writeError(w, http.StatusBadRequest, "request body must be a json object")
			return
		}

		enabled, ok := request["enabled"].(bool)
		if !ok {
			writeError(w, http.StatusBadRequest, "'enabled' field is required and must be a boolean")
			return
		}

		var duration time.Duration
		if millis, ok := request["duration"].(float64); ok {
			if millis <= 0 {
				writeError(w, http.StatusBadRequest, "'duration' must be a positive number of milliseconds")
				return
			}
			duration = time.Duration(millis * float64(time.Millisecond))
		}

		state := disc.Set(ctx, enabled, duration)

		requestLogger.Info("discovery mode changed", "enabled", lo.Ternary(state.Enabled, "on", "off"))

		writeJson(w, http.StatusOK, state)
	}
}
