package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"odata_batch/internal/dispatch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPServer(t *testing.T) {
	conf := newMockConfig("8080", "v2", 1024)
	dispatcher := dispatch.NewDescriber()

	srv := NewHTTPServer(conf, dispatcher)
	assert.NotNil(t, srv)

	httpSrv, ok := srv.(*httpServer)
	assert.True(t, ok)
	assert.Equal(t, "8080", httpSrv.port)
	assert.Equal(t, dispatcher, httpSrv.handler.dispatcher)
	assert.Equal(t, int64(1024), httpSrv.handler.maxBodyBytes)
	assert.Equal(t, "v2", httpSrv.handler.options.PathPrefix)
	assert.True(t, httpSrv.handler.options.Strict)

	routes := make(map[string]bool)
	for _, r := range httpSrv.engine.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	assert.True(t, routes["POST /$batch"])
	assert.True(t, routes["POST /v2/$batch"])
	assert.True(t, routes["GET /health"])
}

func TestNewHTTPServer_NoPrefix(t *testing.T) {
	srv := NewHTTPServer(newMockConfig("8080", "", 1024), dispatch.NewDescriber())
	httpSrv := srv.(*httpServer)
	assert.Len(t, httpSrv.engine.Routes(), 2)
}

func TestHTTPServer_Listen(t *testing.T) {
	srv := NewHTTPServer(newMockConfig("0", "", 1024), dispatch.NewDescriber())

	listener, err := srv.Listen()
	assert.NoError(t, err)
	assert.NotNil(t, listener)
	listener.Close()
}

func TestHTTPServer_Serve(t *testing.T) {
	srv := NewHTTPServer(newMockConfig("0", "", 1024), dispatch.NewDescriber())

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	assert.NoError(t, err)

	go func() {
		time.Sleep(100 * time.Millisecond)
		listener.Close()
	}()

	err = srv.Serve(listener)
	assert.True(t, errors.Is(err, net.ErrClosed))
}

func TestHTTPServer_Serve_Success(t *testing.T) {
	srv := NewHTTPServer(newMockConfig("0", "", 1024), dispatch.NewDescriber())

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	defer listener.Close()

	go func() {
		_ = srv.Serve(listener)
	}()

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/health", port))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)
}

func TestHTTPServer_Shutdown(t *testing.T) {
	srv := NewHTTPServer(newMockConfig("0", "", 1024), dispatch.NewDescriber())

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port

	served := make(chan error, 1)
	go func() {
		served <- srv.Serve(listener)
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/health", port))
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, srv.Shutdown(ctx))

	select {
	case err = <-served:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}

	_, err = http.Get(fmt.Sprintf("http://127.0.0.1:%d/health", port))
	assert.Error(t, err)
}
