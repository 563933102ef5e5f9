package statusline

import (
	"regexp"
	"strings"

	"odata_batch/internal/batch/batcherr"
	"odata_batch/internal/batch/boundary"
	"odata_batch/internal/http/stream"
)

var httpVersion = regexp.MustCompile(`^HTTP/\d\.\d$`)

// StatusLine is the "METHOD target HTTP-version" line opening an embedded
// request.
type StatusLine struct {
	Method  string
	Target  string
	Version string
	Line    int
}

func Parse(line stream.Line) (StatusLine, error) {
	text := boundary.RemoveEndingCRLF(line).Text

	tokens := strings.Split(text, " ")
	if len(tokens) != 3 || tokens[0] == "" || tokens[1] == "" || tokens[2] == "" {
		return StatusLine{}, batcherr.New(batcherr.InvalidStatusLine, line.Number,
			"expected METHOD target HTTP-version, got %q", text)
	}

	if !httpVersion.MatchString(tokens[2]) {
		return StatusLine{}, batcherr.New(batcherr.InvalidHTTPVersion, line.Number,
			"invalid http version %q", tokens[2])
	}

	return StatusLine{
		Method:  tokens[0],
		Target:  tokens[1],
		Version: tokens[2],
		Line:    line.Number,
	}, nil
}
