package boundary

import (
	"strings"

	"odata_batch/internal/batch/batcherr"
	"odata_batch/internal/http/stream"
)

const (
	MultipartMixed = "multipart/mixed"
	maxBoundaryLen = 70
	boundaryParam  = "boundary"
	quote          = '"'
	tspecials      = "()<>@,;:\\\"/[]?="
	bcharsnospace  = "'()+_,-./:=?"
)

// MediaType returns the lower-cased type/subtype of a Content-Type value,
// parameters stripped.
func MediaType(contentType string) string {
	if idx := strings.IndexByte(contentType, ';'); idx >= 0 {
		contentType = contentType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// splitParams splits the parameter section of a Content-Type value at
// semicolons outside quoted strings.
func splitParams(contentType string) []string {
	var (
		params  []string
		start   int
		quoted  bool
		escaped bool
	)
	for i := 0; i < len(contentType); i++ {
		c := contentType[i]
		switch {
		case escaped:
			escaped = false
		case quoted && c == '\\':
			escaped = true
		case c == quote:
			quoted = !quoted
		case !quoted && c == ';':
			params = append(params, contentType[start:i])
			start = i + 1
		}
	}
	params = append(params, contentType[start:])
	return params[1:]
}

func isBChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == ' ':
		return true
	}
	return strings.IndexByte(bcharsnospace, c) >= 0
}

func isQuotedBoundary(value string) bool {
	if value == "" || len(value) > maxBoundaryLen || value[len(value)-1] == ' ' {
		return false
	}
	for i := 0; i < len(value); i++ {
		if !isBChar(value[i]) {
			return false
		}
	}
	return true
}

func isTokenBoundary(value string) bool {
	if value == "" || len(value) > maxBoundaryLen {
		return false
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c <= ' ' || c >= 0x7f || strings.IndexByte(tspecials, c) >= 0 {
			return false
		}
	}
	return true
}

// Get extracts the boundary token from a multipart/mixed Content-Type value.
func Get(contentType string, lineNumber int) (string, error) {
	if MediaType(contentType) != MultipartMixed {
		return "", batcherr.New(batcherr.InvalidContentType, lineNumber,
			"expected %s, got %q", MultipartMixed, contentType)
	}

	for _, param := range splitParams(contentType) {
		eq := strings.IndexByte(param, '=')
		if eq < 0 {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(param[:eq]), boundaryParam) {
			continue
		}

		raw := strings.TrimSpace(param[eq+1:])
		if len(raw) >= 2 && raw[0] == quote && raw[len(raw)-1] == quote {
			value := raw[1 : len(raw)-1]
			if strings.TrimSpace(value) == "" || !isQuotedBoundary(value) {
				return "", batcherr.New(batcherr.InvalidBoundary, lineNumber, "invalid boundary %s", raw)
			}
			return value, nil
		}
		if !isTokenBoundary(raw) {
			return "", batcherr.New(batcherr.InvalidBoundary, lineNumber, "invalid boundary %q", raw)
		}
		return raw, nil
	}

	return "", batcherr.New(batcherr.MissingBoundaryDelimiter, lineNumber,
		"no boundary parameter in %q", contentType)
}

func isTerminator(c byte) bool {
	return c == '\r' || c == '\n'
}

// RemoveEndingCRLF strips the final line terminator of a line. When the
// terminator closes the text, horizontal whitespace around it is trimmed too;
// a terminator followed by other text is cut out on its own.
func RemoveEndingCRLF(line stream.Line) stream.Line {
	text := line.Text

	end := len(text)
	for end > 0 && (text[end-1] == ' ' || text[end-1] == '\t') {
		end--
	}
	if end > 0 && isTerminator(text[end-1]) {
		cut := end - 1
		if text[cut] == '\n' && cut > 0 && text[cut-1] == '\r' {
			cut--
		}
		return stream.NewLine(strings.TrimRight(text[:cut], " \t"), line.Number)
	}

	last := strings.LastIndexAny(text, "\r\n")
	if last < 0 {
		return line
	}
	start := last
	if text[last] == '\n' && last > 0 && text[last-1] == '\r' {
		start--
	}
	return stream.NewLine(text[:start]+text[last+1:], line.Number)
}

// TrimTerminator removes exactly one trailing CR, LF or CRLF and nothing else.
func TrimTerminator(text string) string {
	if strings.HasSuffix(text, "\r\n") {
		return text[:len(text)-2]
	}
	if strings.HasSuffix(text, "\n") || strings.HasSuffix(text, "\r") {
		return text[:len(text)-1]
	}
	return text
}
