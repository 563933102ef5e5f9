// Package batch decodes multipart batch bodies into the embedded requests
// they carry, grouping change requests into changesets.
package batch

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"odata_batch/internal/batch/batcherr"
	"odata_batch/internal/batch/boundary"
	"odata_batch/internal/batch/statusline"
	"odata_batch/internal/http/header"
	"odata_batch/internal/http/stream"
)

// Options controls a single decode.
type Options struct {
	// Strict requires exactly one blank line between a part's MIME headers
	// and its embedded request, and between the request headers and body.
	Strict bool
	// BaseURI is the absolute service root embedded targets resolve against.
	BaseURI string
	// PathPrefix is appended to BaseURI as further path segments.
	PathPrefix string
	// BufferSize is the line reader capacity; <= 0 selects the default.
	BufferSize int
}

// Request is one embedded HTTP request.
type Request struct {
	Method       string
	Header       *header.Collection
	Body         []byte
	BaseURI      string
	ResourcePath string
	Query        string
	RequestURI   string
	Line         int

	contentID string
}

func (r *Request) BodyReader() io.Reader {
	return bytes.NewReader(r.Body)
}

// ContentID is the Content-ID declared on the MIME part or, failing that,
// on the embedded request.
func (r *Request) ContentID() string {
	return r.contentID
}

func (r *Request) String() string {
	return fmt.Sprintf("%s %s (line %d, %d body bytes)", r.Method, r.RequestURI, r.Line, len(r.Body))
}

// Part is either a single query request or a changeset.
type Part struct {
	changeset bool
	requests  []*Request
}

func (p *Part) IsChangeset() bool {
	return p.changeset
}

func (p *Part) Requests() []*Request {
	return p.requests
}

func (p *Part) String() string {
	var sb strings.Builder
	if p.changeset {
		fmt.Fprintf(&sb, "changeset[%d]", len(p.requests))
	} else {
		sb.WriteString("request")
	}
	for _, req := range p.requests {
		sb.WriteString(" {")
		sb.WriteString(req.String())
		sb.WriteString("}")
	}
	return sb.String()
}

// Parse decodes the batch body read from r, delimited by the given top-level
// boundary. The first violation aborts the decode; no partial result is
// returned. r is not closed.
func Parse(r io.Reader, boundaryToken string, opts Options) ([]*Part, error) {
	if strings.TrimSpace(boundaryToken) == "" {
		return nil, batcherr.New(batcherr.InvalidBoundary, 0, "empty batch boundary")
	}

	resolver, err := statusline.NewResolver(opts.BaseURI, opts.PathPrefix)
	if err != nil {
		return nil, err
	}

	size := opts.BufferSize
	if size <= 0 {
		size = stream.DefaultBufferSize
	}
	reader, err := stream.NewReader(r, size)
	if err != nil {
		return nil, err
	}

	p := newParser(opts, resolver, boundaryToken)
	return p.run(reader)
}

// ParseRequest resolves the top-level boundary from the Content-Type of the
// enclosing request and decodes body with it.
func ParseRequest(contentType string, body io.Reader, opts Options) ([]*Part, error) {
	if strings.TrimSpace(contentType) == "" {
		return nil, batcherr.New(batcherr.MissingContentType, 0, "batch request has no content type")
	}
	token, err := boundary.Get(contentType, 0)
	if err != nil {
		return nil, err
	}
	return Parse(body, token, opts)
}
