package main

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasklist/internal/api"
	"github.com/phrazzld/tasklist/internal/api/shared"
)

func newTestApp(t *testing.T) *application {
	t.Helper()

	app, err := bootstrap(context.Background(), &rootOptions{}, io.Discard)
	require.NoError(t, err)
	t.Cleanup(app.cleanup)
	return app
}

func TestRouter_HealthAndTasks(t *testing.T) {
	setupCLIEnv(t)
	srv := httptest.NewServer(newTestApp(t).setupRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))

	resp, err = http.Post(srv.URL+"/api/tasks", "application/json", strings.NewReader(`{"description":"Buy milk"}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Len(t, resp.Header.Get(shared.TraceIDHeader), 32)

	var list api.TaskListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list.Tasks, 1)
	assert.Equal(t, "Buy milk", list.Tasks[0].Description)
}

func TestRouter_CORS(t *testing.T) {
	setupCLIEnv(t)
	t.Setenv("TASKLIST_SERVER_ALLOWED_ORIGINS", "https://app.example.com")
	srv := httptest.NewServer(newTestApp(t).setupRouter())
	defer srv.Close()

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/tasks", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRouter_AuthEnabled(t *testing.T) {
	setupCLIEnv(t)
	t.Setenv("TASKLIST_AUTH_JWT_SECRET", strings.Repeat("k", 40))
	app := newTestApp(t)
	require.NotNil(t, app.tokenService)

	srv := httptest.NewServer(app.setupRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/tasks")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "health stays public")

	token, err := app.tokenService.GenerateToken(context.Background(), "test", time.Hour)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/tasks", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestRunServe_GracefulShutdown(t *testing.T) {
	setupCLIEnv(t)
	port := freePort(t)
	t.Setenv("TASKLIST_SERVER_PORT", strconv.Itoa(port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() { done <- runServe(ctx, &rootOptions{}, io.Discard, ready) }()

	select {
	case <-ready:
	case err := <-done:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://127.0.0.1:" + strconv.Itoa(port) + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
