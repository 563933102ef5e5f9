package transport

import (
	"context"
	"log"
	"net"
	"net/http"

	"odata_batch/internal/config"
	"odata_batch/internal/dispatch"

	"github.com/gin-gonic/gin"
)

type httpServer struct {
	handler *batchHandler
	engine  *gin.Engine
	server  *http.Server
	port    string
}

func NewHTTPServer(conf config.Config, dispatcher dispatch.Dispatcher) Transport {
	handler := newBatchHandler(conf, dispatcher)
	engine := newRouter(conf.PathPrefix(), handler)
	return &httpServer{
		handler: handler,
		engine:  engine,
		server:  &http.Server{Handler: engine},
		port:    conf.HTTPPort(),
	}
}

func newRouter(prefix string, handler *batchHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", handler.health)
	r.POST("/$batch", handler.handle)
	if prefix != "" {
		r.POST("/"+prefix+"/$batch", handler.handle)
	}
	return r
}

func (ht *httpServer) Listen() (net.Listener, error) {
	return net.Listen("tcp", ":"+ht.port)
}

func (ht *httpServer) Serve(listener net.Listener) error {
	log.Printf("HTTP server is starting on port %s", ht.port)
	return ht.server.Serve(listener)
}

// Shutdown stops accepting connections and waits for in-flight batches to
// finish or ctx to expire. Serve then returns http.ErrServerClosed.
func (ht *httpServer) Shutdown(ctx context.Context) error {
	log.Printf("HTTP server on port %s is shutting down", ht.port)
	return ht.server.Shutdown(ctx)
}
