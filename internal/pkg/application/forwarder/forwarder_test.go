package forwarder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/optdev/iot-monsys/pkg/types"
)

func testReading() types.Reading {
	return types.Reading{
		DeviceID:  "dev-1",
		Type:      types.SensorTypeTemperature,
		Value:     22.5,
		Timestamp: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestForwardDeliversEventToEndpoint(t *testing.T) {
	is := is.New(t)

	received := make(chan *http.Request, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- r.Clone(context.Background())
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := New(&Config{
		Enabled:    true,
		StreamName: "iot-data-stream",
		Endpoints:  []string{srv.URL},
	})

	err := f.Forward(context.Background(), testReading())
	is.NoErr(err)

	select {
	case r := <-received:
		is.Equal(r.Header.Get("ce-type"), "iotmonsys.sensorreading")
		is.Equal(r.Header.Get("ce-partitionkey"), "dev-1")
		is.True(strings.HasPrefix(r.Header.Get("ce-id"), "dev-1:"))
	case <-time.After(time.Second):
		t.Fatal("no event was delivered")
	}
}

func TestForwardUsesTimestampDerivedKeyWhenDeviceIDIsEmpty(t *testing.T) {
	is := is.New(t)

	received := make(chan string, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- r.Header.Get("ce-partitionkey")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := New(&Config{Enabled: true, StreamName: "iot-data-stream", Endpoints: []string{srv.URL}})

	reading := testReading()
	reading.DeviceID = ""

	err := f.Forward(context.Background(), reading)
	is.NoErr(err)

	select {
	case key := <-received:
		is.True(strings.HasPrefix(key, "ts:"))
	case <-time.After(time.Second):
		t.Fatal("no event was delivered")
	}
}

func TestForwardReturnsErrorWhenEndpointIsDown(t *testing.T) {
	is := is.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	f := New(&Config{Enabled: true, StreamName: "iot-data-stream", Endpoints: []string{srv.URL}})

	err := f.Forward(context.Background(), testReading())
	is.True(err != nil)
}

func TestDisabledForwarderDiscardsEverything(t *testing.T) {
	is := is.New(t)

	f := New(&Config{Enabled: false})
	is.NoErr(f.Forward(context.Background(), testReading()))

	f = New(nil)
	is.NoErr(f.Forward(context.Background(), testReading()))
}

func TestLoadConfiguration(t *testing.T) {
	is := is.New(t)

	cfg, err := LoadConfiguration(strings.NewReader(`
enabled: true
streamName: iot-data-stream
endpoints:
  - http://localhost:8181/events
`))
	is.NoErr(err)

	is.True(cfg.Enabled)
	is.Equal(cfg.StreamName, "iot-data-stream")
	is.Equal(len(cfg.Endpoints), 1)
}
