package batch

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"odata_batch/internal/batch/batcherr"
	"odata_batch/internal/batch/boundary"
	"odata_batch/internal/batch/statusline"
	"odata_batch/internal/http/header"
	"odata_batch/internal/http/stream"
)

const (
	applicationHTTP = "application/http"
	binaryEncoding  = "binary"

	headerContentType             = "Content-Type"
	headerContentTransferEncoding = "Content-Transfer-Encoding"
	headerContentID               = "Content-ID"
	headerContentLength           = "Content-Length"
	headerHost                    = "Host"
)

type frameState int

const (
	statePreamble frameState = iota
	stateEncapsulation
	stateEpilog
)

// frame tracks one boundary level. The outer frame is the batch itself; at
// most one changeset frame sits above it.
type frame struct {
	delimiter string
	close     string
	state     frameState
	lines     []stream.Line
	openLine  int
	changeset *Part
	aliases   map[string]string
}

func newFrame(boundaryToken string, changeset *Part) *frame {
	f := &frame{
		delimiter: "--" + boundaryToken,
		close:     "--" + boundaryToken + "--",
		changeset: changeset,
	}
	if changeset != nil {
		f.aliases = make(map[string]string)
	}
	return f
}

type parser struct {
	strict   bool
	resolver *statusline.Resolver
	stack    []*frame
	parts    []*Part
	lastLine int
}

func newParser(opts Options, resolver *statusline.Resolver, boundaryToken string) *parser {
	return &parser{
		strict:   opts.Strict,
		resolver: resolver,
		stack:    []*frame{newFrame(boundaryToken, nil)},
	}
}

func (p *parser) top() *frame {
	return p.stack[len(p.stack)-1]
}

func (p *parser) inChangeset() bool {
	return len(p.stack) > 1
}

func (p *parser) run(reader *stream.Reader) ([]*Part, error) {
	for {
		line, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read batch body: %w", err)
		}
		p.lastLine = line.Number
		if err = p.feed(line); err != nil {
			return nil, err
		}
	}

	if p.top().state != stateEpilog {
		return nil, batcherr.New(batcherr.MissingCloseDelimiter, p.lastLine, "closing delimiter %q not found", p.top().close)
	}
	return p.parts, nil
}

// feed advances the top frame by one line.
func (p *parser) feed(line stream.Line) error {
	f := p.top()
	text := boundary.RemoveEndingCRLF(line).Text

	switch {
	case f.state == stateEpilog:
		return nil
	case text == f.delimiter:
		if f.state == stateEncapsulation {
			if err := p.complete(f); err != nil {
				return err
			}
		}
		f.state = stateEncapsulation
		f.lines = nil
		f.openLine = line.Number
	case text == f.close:
		if f.state == stateEncapsulation {
			if err := p.complete(f); err != nil {
				return err
			}
		}
		f.state = stateEpilog
		f.lines = nil
	case f.state == stateEncapsulation:
		f.lines = append(f.lines, line)
	}
	return nil
}

// complete handles an encapsulation once its closing delimiter is seen. The
// terminator of its last line belongs to that delimiter.
func (p *parser) complete(f *frame) error {
	lines := f.lines
	if len(lines) == 0 {
		return batcherr.New(batcherr.InvalidContent, f.openLine, "empty body part")
	}
	last := lines[len(lines)-1]
	lines[len(lines)-1] = stream.NewLine(boundary.TrimTerminator(last.Text), last.Number)

	mimeHeaders, n := header.Parse(lines)
	if !mimeHeaders.Has(headerContentType) {
		return batcherr.New(batcherr.MissingContentType, lines[0].Number, "body part has no %s", headerContentType)
	}
	ctField, _ := mimeHeaders.Field(headerContentType)
	contentType := mimeHeaders.Value(headerContentType)

	switch boundary.MediaType(contentType) {
	case boundary.MultipartMixed:
		if p.inChangeset() {
			return batcherr.New(batcherr.InvalidContentType, ctField.Line, "changesets cannot be nested")
		}
		return p.changeset(contentType, ctField.Line, lines[n:], lines[len(lines)-1].Number)
	case applicationHTTP:
		req, err := p.request(mimeHeaders, lines, n)
		if err != nil {
			return err
		}
		if cs := f.changeset; cs != nil {
			cs.requests = append(cs.requests, req)
		} else {
			p.parts = append(p.parts, &Part{requests: []*Request{req}})
		}
		return nil
	default:
		return batcherr.New(batcherr.InvalidContentType, ctField.Line, "unsupported body part content type %q", contentType)
	}
}

// changeset decodes the content of a multipart/mixed body part in its own
// frame.
func (p *parser) changeset(contentType string, lineNumber int, content []stream.Line, endLine int) error {
	token, err := boundary.Get(contentType, lineNumber)
	if err != nil {
		return err
	}

	part := &Part{changeset: true}
	inner := newFrame(token, part)
	p.stack = append(p.stack, inner)
	defer func() {
		p.stack = p.stack[:len(p.stack)-1]
	}()

	for _, line := range content {
		if err = p.feed(line); err != nil {
			return err
		}
	}
	if inner.state != stateEpilog {
		return batcherr.New(batcherr.MissingCloseDelimiter, endLine, "closing delimiter %q not found", inner.close)
	}

	p.parts = append(p.parts, part)
	return nil
}

func isBlank(line stream.Line) bool {
	return strings.TrimSpace(line.Text) == ""
}

// skipMessageSeparator consumes the blank line between a part's MIME headers
// and its embedded request.
func (p *parser) skipMessageSeparator(rest []stream.Line, at int) ([]stream.Line, error) {
	if !p.strict {
		for len(rest) > 0 && isBlank(rest[0]) {
			rest = rest[1:]
		}
		return rest, nil
	}

	if len(rest) == 0 || !isBlank(rest[0]) {
		if len(rest) > 0 {
			at = rest[0].Number
		}
		return nil, batcherr.New(batcherr.MissingBlankLine, at, "expected blank line after body part headers")
	}
	rest = rest[1:]
	if len(rest) > 0 && isBlank(rest[0]) {
		return nil, batcherr.New(batcherr.MissingBlankLine, rest[0].Number, "expected exactly one blank line after body part headers")
	}
	return rest, nil
}

// skipBodySeparator consumes the blank line between the embedded request
// headers and its body. Further blank lines are body content.
func (p *parser) skipBodySeparator(rest []stream.Line, at int) ([]stream.Line, error) {
	if len(rest) > 0 && isBlank(rest[0]) {
		return rest[1:], nil
	}
	if !p.strict {
		return rest, nil
	}
	if len(rest) > 0 {
		at = rest[0].Number
	}
	return nil, batcherr.New(batcherr.MissingBlankLine, at, "expected blank line after request headers")
}
