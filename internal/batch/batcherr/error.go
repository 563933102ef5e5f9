package batcherr

import (
	"errors"
	"fmt"
)

// Reason classifies why a batch body was rejected.
type Reason int

const (
	ReasonNone Reason = iota
	InvalidContentType
	MissingContentType
	MissingBoundaryDelimiter
	InvalidBoundary
	MissingContentTransferEncoding
	InvalidContentTransferEncoding
	InvalidStatusLine
	InvalidHTTPVersion
	InvalidQueryOperationMethod
	InvalidChangesetMethod
	InvalidURI
	InvalidBaseURI
	MissingBlankLine
	MissingCloseDelimiter
	InvalidContent
	InvalidHeader
	ForbiddenHeader
)

func (r Reason) String() string {
	switch r {
	case InvalidContentType:
		return "INVALID_CONTENT_TYPE"
	case MissingContentType:
		return "MISSING_CONTENT_TYPE"
	case MissingBoundaryDelimiter:
		return "MISSING_BOUNDARY_DELIMITER"
	case InvalidBoundary:
		return "INVALID_BOUNDARY"
	case MissingContentTransferEncoding:
		return "MISSING_CONTENT_TRANSFER_ENCODING"
	case InvalidContentTransferEncoding:
		return "INVALID_CONTENT_TRANSFER_ENCODING"
	case InvalidStatusLine:
		return "INVALID_STATUS_LINE"
	case InvalidHTTPVersion:
		return "INVALID_HTTP_VERSION"
	case InvalidQueryOperationMethod:
		return "INVALID_QUERY_OPERATION_METHOD"
	case InvalidChangesetMethod:
		return "INVALID_CHANGESET_METHOD"
	case InvalidURI:
		return "INVALID_URI"
	case InvalidBaseURI:
		return "INVALID_BASE_URI"
	case MissingBlankLine:
		return "MISSING_BLANK_LINE"
	case MissingCloseDelimiter:
		return "MISSING_CLOSE_DELIMITER"
	case InvalidContent:
		return "INVALID_CONTENT"
	case InvalidHeader:
		return "INVALID_HEADER"
	case ForbiddenHeader:
		return "FORBIDDEN_HEADER"
	}
	return "NONE"
}

// Error is a rejected batch body. Line is the 1-based source line that
// triggered the failure, or 0 when no line is involved.
type Error struct {
	Reason Reason
	Line   int
	Detail string
}

func New(reason Reason, line int, format string, args ...interface{}) *Error {
	return &Error{
		Reason: reason,
		Line:   line,
		Detail: fmt.Sprintf(format, args...),
	}
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s (line %d)", e.Reason, e.Line)
	}
	return fmt.Sprintf("%s (line %d): %s", e.Reason, e.Line, e.Detail)
}

// Is matches another *Error with the same reason, so a bare
// &Error{Reason: r} works as a target for errors.Is.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Reason == e.Reason
}

// ReasonOf unwraps err looking for a batch error.
func ReasonOf(err error) (Reason, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason, true
	}
	return ReasonNone, false
}

func Is(err error, reason Reason) bool {
	r, ok := ReasonOf(err)
	return ok && r == reason
}
