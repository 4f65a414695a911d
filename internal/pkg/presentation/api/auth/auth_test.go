package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matryer/is"
)

const testPolicy string = `
package iotmonsys.authz

default allow := false

allow {
	input.token == "valid-token"
}
`

func testMiddleware(t *testing.T) func(http.Handler) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	middleware, err := NewAuthenticator(context.Background(), logger, strings.NewReader(testPolicy))
	if err != nil {
		t.Fatal("failed to create authenticator:", err)
	}

	return middleware
}

func protected(middleware func(http.Handler) http.Handler) http.Handler {
	return middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestRequestWithoutTokenIsRejected(t *testing.T) {
	is := is.New(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v0/devices", nil)
	res := httptest.NewRecorder()

	protected(testMiddleware(t)).ServeHTTP(res, req)

	is.Equal(res.Code, http.StatusUnauthorized)
}

func TestRequestWithInvalidTokenIsRejected(t *testing.T) {
	is := is.New(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v0/devices", nil)
	req.Header.Set("Authorization", "Bearer not-the-right-token")
	res := httptest.NewRecorder()

	protected(testMiddleware(t)).ServeHTTP(res, req)

	is.Equal(res.Code, http.StatusUnauthorized)
}

func TestRequestWithValidTokenPassesThrough(t *testing.T) {
	is := is.New(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v0/devices", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	res := httptest.NewRecorder()

	protected(testMiddleware(t)).ServeHTTP(res, req)

	is.Equal(res.Code, http.StatusNoContent)
}

func TestBrokenPolicyFailsFast(t *testing.T) {
	is := is.New(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := NewAuthenticator(context.Background(), logger, strings.NewReader("this is not rego"))
	is.True(err != nil)
}
