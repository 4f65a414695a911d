package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/matryer/is"

	"github.com/optdev/iot-monsys/internal/pkg/application/devicemanagement"
	"github.com/optdev/iot-monsys/internal/pkg/application/discovery"
	"github.com/optdev/iot-monsys/internal/pkg/application/ingest"
	"github.com/optdev/iot-monsys/internal/pkg/infrastructure/storage"
	"github.com/optdev/iot-monsys/pkg/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestGetDeviceDetails(t *testing.T) {
	is := is.New(t)

	svc := &devicemanagement.DeviceManagementMock{
		GetByDeviceIDFunc: func(ctx context.Context, deviceID string) (types.Device, error) {
			return types.Device{DeviceID: deviceID, Name: "Temperature Sensor 1", Status: types.DeviceStatusActive}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v0/devices/dev-1", nil)
	req = withURLParam(req, "deviceID", "dev-1")
	res := httptest.NewRecorder()

	getDeviceDetails(discardLogger(), svc).ServeHTTP(res, req)

	is.Equal(res.Code, http.StatusOK)

	var device types.Device
	is.NoErr(json.Unmarshal(res.Body.Bytes(), &device))
	is.Equal(device.DeviceID, "dev-1")
}

func TestGetMissingDeviceReturns404(t *testing.T) {
	is := is.New(t)

	svc := &devicemanagement.DeviceManagementMock{
		GetByDeviceIDFunc: func(ctx context.Context, deviceID string) (types.Device, error) {
			return types.Device{}, devicemanagement.ErrDeviceNotFound
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v0/devices/dev-404", nil)
	req = withURLParam(req, "deviceID", "dev-404")
	res := httptest.NewRecorder()

	getDeviceDetails(discardLogger(), svc).ServeHTTP(res, req)

	is.Equal(res.Code, http.StatusNotFound)
}

func TestCreateDeviceHandler(t *testing.T) {
	is := is.New(t)

	svc := &devicemanagement.DeviceManagementMock{
		CreateFunc: func(ctx context.Context, device types.Device) error {
			return nil
		},
	}

	body := `{"deviceId":"dev-1","name":"Temperature Sensor 1","type":"temperature","status":"active"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v0/devices", strings.NewReader(body))
	res := httptest.NewRecorder()

	createDeviceHandler(discardLogger(), svc).ServeHTTP(res, req)

	is.Equal(res.Code, http.StatusCreated)
	is.Equal(len(svc.CreateCalls()), 1)
	is.Equal(svc.CreateCalls()[0].Device.DeviceID, "dev-1")
}

func TestCreateDuplicateDeviceReturns409(t *testing.T) {
	is := is.New(t)

	svc := &devicemanagement.DeviceManagementMock{
		CreateFunc: func(ctx context.Context, device types.Device) error {
			return devicemanagement.ErrDeviceAlreadyExist
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v0/devices", strings.NewReader(`{"deviceId":"dev-1"}`))
	res := httptest.NewRecorder()

	createDeviceHandler(discardLogger(), svc).ServeHTTP(res, req)

	is.Equal(res.Code, http.StatusConflict)
}

func TestPatchDeviceHandler(t *testing.T) {
	is := is.New(t)

	svc := &devicemanagement.DeviceManagementMock{
		UpdateFunc: func(ctx context.Context, deviceID string, fields map[string]any) error {
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/v0/devices/dev-1", strings.NewReader(`{"status":"maintenance"}`))
	req = withURLParam(req, "deviceID", "dev-1")
	res := httptest.NewRecorder()

	patchDeviceHandler(discardLogger(), svc).ServeHTTP(res, req)

	is.Equal(res.Code, http.StatusOK)
	is.Equal(len(svc.UpdateCalls()), 1)
	is.Equal(svc.UpdateCalls()[0].Fields["status"], "maintenance")
}

func TestQueryReadingsHandler(t *testing.T) {
	is := is.New(t)

	store := &ingest.ReadingStoreMock{
		QueryFunc: func(ctx context.Context, conditions ...storage.ConditionFunc) (types.Collection[types.Reading], error) {
			return types.Collection[types.Reading]{
				Data:       []types.Reading{{DeviceID: "dev-1", Type: "temperature", Value: 22.5, Timestamp: time.Now().UTC()}},
				Count:      1,
				TotalCount: 1,
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v0/readings?deviceId=dev-1&type=temperature", nil)
	res := httptest.NewRecorder()

	queryReadingsHandler(discardLogger(), store).ServeHTTP(res, req)

	is.Equal(res.Code, http.StatusOK)

	var collection types.Collection[types.Reading]
	is.NoErr(json.Unmarshal(res.Body.Bytes(), &collection))
	is.Equal(len(collection.Data), 1)
	is.Equal(collection.Data[0].DeviceID, "dev-1")
}

func TestQueryReadingsRejectsBadTimestamps(t *testing.T) {
	is := is.New(t)

	store := &ingest.ReadingStoreMock{}

	req := httptest.NewRequest(http.MethodGet, "/api/v0/readings?since=yesterday", nil)
	res := httptest.NewRecorder()

	queryReadingsHandler(discardLogger(), store).ServeHTTP(res, req)

	is.Equal(res.Code, http.StatusBadRequest)
	is.Equal(len(store.QueryCalls()), 0)
}

func TestGetDiscoveryHandler(t *testing.T) {
	is := is.New(t)

	disc := discovery.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v0/discovery", nil)
	res := httptest.NewRecorder()

	getDiscoveryHandler(discardLogger(), disc).ServeHTTP(res, req)

	is.Equal(res.Code, http.StatusOK)

	var state types.DiscoveryState
	is.NoErr(json.Unmarshal(res.Body.Bytes(), &state))
	is.True(!state.Enabled)
}

func TestSetDiscoveryHandlerEnables(t *testing.T) {
	is := is.New(t)

	disc := discovery.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v0/discovery", strings.NewReader(`{"enabled":true,"duration":60000}`))
	res := httptest.NewRecorder()

	setDiscoveryHandler(discardLogger(), disc).ServeHTTP(res, req)

	is.Equal(res.Code, http.StatusOK)

	// duration is milliseconds on the wire and round-trips unchanged
	var state types.DiscoveryState
	is.NoErr(json.Unmarshal(res.Body.Bytes(), &state))
	is.True(state.Enabled)
	is.Equal(state.Duration, int64(60000))

	is.True(disc.Get().Enabled)
}

func TestSetDiscoveryHandlerRequiresBooleanEnabled(t *testing.T) {
	is := is.New(t)

	disc := discovery.New()

	for _, body := range []string{`{}`, `{"enabled":"yes"}`, `[1,2,3]`} {
		req := httptest.NewRequest(http.MethodPost, "/api/v0/discovery", bytes.NewReader([]byte(body)))
		res := httptest.NewRecorder()

		setDiscoveryHandler(discardLogger(), disc).ServeHTTP(res, req)

		is.Equal(res.Code, http.StatusBadRequest)

		var response map[string]string
		is.NoErr(json.Unmarshal(res.Body.Bytes(), &response))
		is.True(response["error"] != "")
	}

	is.True(!disc.Get().Enabled)
}
