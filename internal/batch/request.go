package batch

import (
	"strconv"
	"strings"

	"odata_batch/internal/batch/batcherr"
	"odata_batch/internal/batch/statusline"
	"odata_batch/internal/http/header"
	"odata_batch/internal/http/stream"
)

var forbiddenHeaders = []string{
	"Authorization",
	"Expect",
	"From",
	"Max-Forwards",
	"Range",
	"TE",
}

var changesetMethods = map[string]bool{
	"POST":   true,
	"PUT":    true,
	"DELETE": true,
	"PATCH":  true,
	"MERGE":  true,
}

func validateTransferEncoding(mimeHeaders *header.Collection, at int) error {
	field, ok := mimeHeaders.Field(headerContentTransferEncoding)
	if !ok {
		return batcherr.New(batcherr.MissingContentTransferEncoding, at, "body part has no %s", headerContentTransferEncoding)
	}
	if value := mimeHeaders.Value(headerContentTransferEncoding); !strings.EqualFold(value, binaryEncoding) {
		return batcherr.New(batcherr.InvalidContentTransferEncoding, field.Line,
			"%s must be %s, got %q", headerContentTransferEncoding, binaryEncoding, value)
	}
	return nil
}

func (p *parser) validateMethod(sl statusline.StatusLine) error {
	if p.inChangeset() {
		if !changesetMethods[sl.Method] {
			return batcherr.New(batcherr.InvalidChangesetMethod, sl.Line, "method %s is not allowed in a changeset", sl.Method)
		}
		return nil
	}
	if sl.Method != "GET" {
		return batcherr.New(batcherr.InvalidQueryOperationMethod, sl.Line, "method %s is not allowed outside a changeset", sl.Method)
	}
	return nil
}

func validateHeaders(headers *header.Collection) error {
	for _, name := range forbiddenHeaders {
		if field, ok := headers.Field(name); ok {
			return batcherr.New(batcherr.ForbiddenHeader, field.Line, "header %s is not allowed on an embedded request", field.Name)
		}
	}
	return nil
}

// bodyOf joins the body lines and applies Content-Length. A shorter body than
// declared is kept as is; a negative length means no limit.
func bodyOf(lines []stream.Line, headers *header.Collection) ([]byte, error) {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line.Text)
	}
	body := []byte(sb.String())

	field, ok := headers.Field(headerContentLength)
	if !ok {
		return body, nil
	}
	raw := strings.TrimSpace(headers.Value(headerContentLength))
	length, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, batcherr.New(batcherr.InvalidHeader, field.Line, "invalid %s %q", headerContentLength, raw)
	}
	if length >= 0 && length < int64(len(body)) {
		body = body[:length]
	}
	return body, nil
}

// request builds the embedded request of an application/http body part.
// lines holds the whole part, the first n of which are its MIME headers.
func (p *parser) request(mimeHeaders *header.Collection, lines []stream.Line, n int) (*Request, error) {
	at := lines[0].Number
	if n > 0 {
		at = lines[n-1].Number
	}
	if err := validateTransferEncoding(mimeHeaders, at); err != nil {
		return nil, err
	}

	rest, err := p.skipMessageSeparator(lines[n:], at)
	if err != nil {
		return nil, err
	}
	if len(rest) == 0 {
		return nil, batcherr.New(batcherr.InvalidContent, at, "body part has no embedded request")
	}

	sl, err := statusline.Parse(rest[0])
	if err != nil {
		return nil, err
	}
	if err = p.validateMethod(sl); err != nil {
		return nil, err
	}

	headers, consumed := header.Parse(rest[1:])
	if err = validateHeaders(headers); err != nil {
		return nil, err
	}

	at = sl.Line
	if consumed > 0 {
		at = rest[consumed].Number
	}
	bodyLines, err := p.skipBodySeparator(rest[1+consumed:], at)
	if err != nil {
		return nil, err
	}
	body, err := bodyOf(bodyLines, headers)
	if err != nil {
		return nil, err
	}

	target, err := p.resolver.Resolve(sl.Target, headers.Value(headerHost), sl.Line)
	if err != nil {
		return nil, err
	}

	contentID := mimeHeaders.Value(headerContentID)
	if contentID == "" {
		contentID = headers.Value(headerContentID)
	}

	if aliases := p.top().aliases; aliases != nil {
		target = p.dereference(target, aliases)
		if contentID != "" {
			aliases[contentID] = target.ResourcePath
		}
	}

	return &Request{
		Method:       sl.Method,
		Header:       headers,
		Body:         body,
		BaseURI:      target.BaseURI,
		ResourcePath: target.ResourcePath,
		Query:        target.Query,
		RequestURI:   target.RequestURI,
		Line:         sl.Line,
		contentID:    contentID,
	}, nil
}

// dereference replaces a leading $<content-id> segment with the resource
// path registered for that Content-ID earlier in the same changeset.
func (p *parser) dereference(target statusline.Target, aliases map[string]string) statusline.Target {
	path := target.ResourcePath
	if !strings.HasPrefix(path, "/$") {
		return target
	}
	segment := path[2:]
	rest := ""
	if idx := strings.IndexByte(segment, '/'); idx >= 0 {
		segment, rest = segment[:idx], segment[idx:]
	}
	resolved, ok := aliases[segment]
	if !ok {
		return target
	}
	return p.resolver.Target(resolved+rest, target.Query)
}
