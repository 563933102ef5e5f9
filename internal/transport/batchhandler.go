package transport

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"odata_batch/internal/batch"
	"odata_batch/internal/batch/batcherr"
	"odata_batch/internal/config"
	"odata_batch/internal/dispatch"
	"odata_batch/internal/middleware"
	"odata_batch/internal/version"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const batchIDHeader = "X-Batch-Id"

type errorResponse struct {
	Error   string `json:"error"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type batchHandler struct {
	options             batch.Options
	maxBodyBytes        int64
	dispatcher          dispatch.Dispatcher
	responseMiddlewares []middleware.ResponseMiddleware
}

func newBatchHandler(conf config.Config, dispatcher dispatch.Dispatcher) *batchHandler {
	return &batchHandler{
		options: batch.Options{
			Strict:     conf.Strict(),
			BaseURI:    conf.BaseURI(),
			PathPrefix: conf.PathPrefix(),
			BufferSize: conf.BufferSize(),
		},
		maxBodyBytes:        conf.MaxBodyBytes(),
		dispatcher:          dispatcher,
		responseMiddlewares: []middleware.ResponseMiddleware{middleware.NewFingerprint()},
	}
}

// remoteAddr exposes an http.Request RemoteAddr as a net.Addr.
type remoteAddr string

func (a remoteAddr) Network() string { return "tcp" }
func (a remoteAddr) String() string  { return string(a) }

// responseHeader adapts http.Header to middleware.Header.
type responseHeader struct {
	http.Header
}

func (h responseHeader) Value(key string) string { return h.Get(key) }
func (h responseHeader) Remove(key string)       { h.Del(key) }

func (bh *batchHandler) respond(c *gin.Context, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to encode response: %v", err)
		status = http.StatusInternalServerError
		body = []byte(`{"error":"INTERNAL","message":"failed to encode response"}`)
	}

	rh := responseHeader{c.Writer.Header()}
	for _, mw := range bh.responseMiddlewares {
		if err = mw.HandleResponse(rh, body); err != nil {
			log.Printf("Response middleware failed: %v", err)
		}
	}
	c.Data(status, "application/json; charset=utf-8", body)
}

func (bh *batchHandler) health(c *gin.Context) {
	bh.respond(c, http.StatusOK, gin.H{
		"status":  "ok",
		"version": version.GetShortVersion(),
	})
}

func (bh *batchHandler) handle(c *gin.Context) {
	batchID := uuid.NewString()
	c.Header(batchIDHeader, batchID)

	body := http.MaxBytesReader(c.Writer, c.Request.Body, bh.maxBodyBytes)
	parts, err := batch.ParseRequest(c.GetHeader("Content-Type"), body, bh.options)
	if err != nil {
		bh.fail(c, batchID, err)
		return
	}

	if err = bh.applyRequestMiddlewares(c, parts); err != nil {
		bh.fail(c, batchID, err)
		return
	}

	result, err := bh.dispatcher.Dispatch(c.Request.Context(), batchID, parts)
	if err != nil {
		bh.fail(c, batchID, err)
		return
	}

	log.Printf("Batch %s decoded %d parts from %s", batchID, len(parts), c.Request.RemoteAddr)
	bh.respond(c, http.StatusOK, result)
}

func (bh *batchHandler) applyRequestMiddlewares(c *gin.Context, parts []*batch.Part) error {
	requestMiddlewares := []middleware.RequestMiddleware{
		middleware.NewForwardedFor(remoteAddr(c.Request.RemoteAddr)),
	}
	for _, part := range parts {
		for _, req := range part.Requests() {
			for _, mw := range requestMiddlewares {
				if err := mw.HandleRequest(req.Header); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (bh *batchHandler) fail(c *gin.Context, batchID string, err error) {
	var decodeErr *batcherr.Error
	if errors.As(err, &decodeErr) {
		log.Printf("Batch %s rejected: %v", batchID, err)
		bh.respond(c, http.StatusBadRequest, errorResponse{
			Error:   decodeErr.Reason.String(),
			Line:    decodeErr.Line,
			Message: decodeErr.Detail,
		})
		return
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		log.Printf("Batch %s exceeds %d bytes", batchID, tooLarge.Limit)
		bh.respond(c, http.StatusRequestEntityTooLarge, errorResponse{
			Error:   "REQUEST_TOO_LARGE",
			Message: err.Error(),
		})
		return
	}

	log.Printf("Batch %s failed: %v", batchID, err)
	bh.respond(c, http.StatusInternalServerError, errorResponse{
		Error:   "INTERNAL",
		Message: err.Error(),
	})
}
