package server

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write(data)
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func TestGzipDecompression(t *testing.T) {
	tests := []struct {
		name     string
		compress bool
	}{
		{name: "uncompressed body", compress: false},
		{name: "gzip compressed body", compress: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := New(newTestDeps())

			body := []byte(`{"greeting":"Bonjour"}`)
			if tt.compress {
				body = gzipBytes(t, body)
			}

			req := httptest.NewRequest(http.MethodPut, "/greet/greeting", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			if tt.compress {
				req.Header.Set("Content-Encoding", "gzip")
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			require.Equal(t, http.StatusNoContent, w.Code)

			w = serve(router, http.MethodGet, "/greet/Ana", "", nil)
			assert.Equal(t, "Bonjour Ana!", message(t, w))
		})
	}
}

func TestGzipCompressedTextMapping(t *testing.T) {
	router := New(newTestDeps())

	req := httptest.NewRequest(http.MethodPost, "/greet/db/Joe", bytes.NewReader(gzipBytes(t, []byte("Servus"))))
	req.Header.Set("Content-Encoding", "gzip")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = serve(router, http.MethodGet, "/greet/Joe", "", nil)
	assert.Equal(t, "Servus Joe!", message(t, w))
}

func TestGzipResponseCompression(t *testing.T) {
	router := New(newTestDeps())

	req := httptest.NewRequest(http.MethodGet, "/greet/Joe", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	gr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	decoded, err := io.ReadAll(gr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"Hello Joe!"}`, string(decoded))
}

func TestGzipSkipsMutationResponses(t *testing.T) {
	router := New(newTestDeps())
	acceptGzip := http.Header{"Accept-Encoding": []string{"gzip"}}

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{name: "update default", method: http.MethodPut, path: "/greet/greeting", body: `{"greeting":"Hola"}`, wantStatus: http.StatusNoContent},
		{name: "create mapping", method: http.MethodPost, path: "/greet/db/Joe", body: "Howdy", wantStatus: http.StatusCreated},
		{name: "update mapping", method: http.MethodPut, path: "/greet/db/Joe", body: "Hey", wantStatus: http.StatusOK, wantBody: "Joe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, tt.method, tt.path, tt.body, acceptGzip)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Empty(t, w.Header().Get("Content-Encoding"))
			assert.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}
